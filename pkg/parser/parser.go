package parser

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/sequent"
	"github.com/vito/cheqed/pkg/syntax"
)

// SyntaxError is returned when input does not match the grammar.
type SyntaxError struct {
	Pos    Position
	Msg    string
	Source string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
}

// loosest accepts every infix operator.
const loosest = math.MaxInt

// Parser turns text into type-inferred terms according to a Syntax. A
// Parser holds no per-parse state and may be shared.
type Parser struct {
	syntax *syntax.Syntax
}

// New creates a parser for the given syntax.
func New(s *syntax.Syntax) *Parser {
	return &Parser{syntax: s}
}

// Syntax returns the syntax the parser was built from.
func (p *Parser) Syntax() *syntax.Syntax {
	return p.syntax
}

// Parse parses a single term.
func (p *Parser) Parse(text string) (qterm.Term, error) {
	st, err := p.start(text)
	if err != nil {
		return nil, err
	}
	t, err := st.term(loosest)
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokEOF); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseType parses a type expression. Schematic variables like ?a are
// scoped to the call.
func (p *Parser) ParseType(text string) (qtype.Type, error) {
	st, err := p.start(text)
	if err != nil {
		return nil, err
	}
	t, err := st.typ()
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokEOF); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseSequent parses "a, b |- c, d". Either side may be empty.
func (p *Parser) ParseSequent(text string) (*sequent.Sequent, error) {
	st, err := p.start(text)
	if err != nil {
		return nil, err
	}
	left, err := st.termList(tokTurnstile)
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokTurnstile); err != nil {
		return nil, err
	}
	right, err := st.termList(tokEOF)
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokEOF); err != nil {
		return nil, err
	}
	return sequent.New(left, right)
}

func (p *Parser) start(text string) (*state, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	return &state{
		syntax:  p.syntax,
		source:  text,
		toks:    toks,
		typeVar: map[string]qtype.Var{},
	}, nil
}

// state is the cursor of a single parse.
type state struct {
	syntax  *syntax.Syntax
	source  string
	toks    []token
	pos     int
	typeVar map[string]qtype.Var
}

func (st *state) peek() token {
	return st.toks[st.pos]
}

func (st *state) peekAt(n int) token {
	if st.pos+n >= len(st.toks) {
		return st.toks[len(st.toks)-1]
	}
	return st.toks[st.pos+n]
}

func (st *state) next() token {
	tok := st.toks[st.pos]
	if tok.kind != tokEOF {
		st.pos++
	}
	return tok
}

func (st *state) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf(format, args...), Source: st.source}
}

func (st *state) unexpected(tok token) error {
	if tok.kind == tokEOF {
		return st.errorf(tok, "unexpected end of input")
	}
	return st.errorf(tok, "unexpected %q", tok.text)
}

func (st *state) expect(kind tokenKind) error {
	tok := st.peek()
	if tok.kind != kind {
		if tok.kind == tokEOF {
			return st.errorf(tok, "expected %s, got end of input", kind)
		}
		return st.errorf(tok, "expected %s, got %q", kind, tok.text)
	}
	st.next()
	return nil
}

// at attaches the position of tok to a term construction failure.
func (st *state) at(tok token) func(qterm.Term, error) (qterm.Term, error) {
	return func(t qterm.Term, err error) (qterm.Term, error) {
		if err != nil {
			return nil, errors.Wrapf(err, "at %s", tok.pos)
		}
		return t, nil
	}
}

// word returns the reserved word named by tok, if any. Set builder
// constants are not reserved; their names read as the constant.
func (st *state) word(tok token) (syntax.Word, bool) {
	if tok.kind != tokIdent {
		return nil, false
	}
	w, ok := st.syntax.Lookup(tok.text)
	if !ok {
		return nil, false
	}
	if _, ok := w.(syntax.SetBuilder); ok {
		return nil, false
	}
	return w, true
}

// constant returns a copy of a declared constant whose type variables are
// fresh, so that separate occurrences of a polymorphic constant are typed
// independently.
func constant(c *qterm.Constant) *qterm.Constant {
	return qterm.NewConstant(c.Name, qtype.Instantiate(c.QType))
}

// term parses a term whose infix operators all have a precedence below
// limit. Smaller precedences bind tighter.
func (st *state) term(limit int) (qterm.Term, error) {
	left, err := st.prefix()
	if err != nil {
		return nil, err
	}

	nonassoc := -1
	for {
		tok := st.peek()

		if tok.kind == tokLParen && syntax.ApplicationPrecedence < limit {
			st.next()
			args, err := st.termList(tokRParen)
			if err != nil {
				return nil, err
			}
			if err := st.expect(tokRParen); err != nil {
				return nil, err
			}
			left, err = st.at(tok)(qterm.Apply(left, args...))
			if err != nil {
				return nil, err
			}
			continue
		}

		w, ok := st.word(tok)
		if !ok {
			return left, nil
		}
		op, ok := w.(syntax.Operator)
		if !ok || op.Arity != 2 || op.Precedence >= limit {
			return left, nil
		}
		if op.Precedence == nonassoc {
			return nil, st.errorf(tok, "operator %s is not associative", op.Constant.Name)
		}
		st.next()

		rhsLimit := op.Precedence
		if op.Assoc == syntax.Right {
			rhsLimit++
		}
		right, err := st.term(rhsLimit)
		if err != nil {
			return nil, err
		}
		left, err = st.at(tok)(qterm.BinaryOp(constant(op.Constant), left, right))
		if err != nil {
			return nil, err
		}

		if op.Assoc == syntax.NonAssoc {
			nonassoc = op.Precedence
		} else {
			nonassoc = -1
		}
	}
}

func (st *state) prefix() (qterm.Term, error) {
	tok := st.peek()
	switch tok.kind {
	case tokIdent:
		w, ok := st.word(tok)
		if !ok {
			if sb, ok := st.syntax.Lookup(tok.text); ok {
				st.next()
				return constant(sb.(syntax.SetBuilder).Constant), nil
			}
			return st.atom()
		}
		switch x := w.(type) {
		case syntax.Operator:
			if x.Arity != 1 {
				return nil, st.errorf(tok, "infix operator %s used as a prefix", tok.text)
			}
			st.next()
			limit := x.Precedence
			if x.Assoc == syntax.Right {
				limit++
			}
			operand, err := st.term(limit)
			if err != nil {
				return nil, err
			}
			return st.at(tok)(qterm.UnaryOp(constant(x.Constant), operand))
		case syntax.Binder:
			st.next()
			bound, err := st.atom()
			if err != nil {
				return nil, err
			}
			body, err := st.term(loosest)
			if err != nil {
				return nil, err
			}
			return st.at(tok)(qterm.Binder(constant(x.Constant), bound, body))
		default:
			return nil, st.errorf(tok, "type %s used as a term", tok.text)
		}

	case tokLParen:
		if c, ok := st.prefixConstant(); ok {
			return c, nil
		}
		st.next()
		t, err := st.term(loosest)
		if err != nil {
			return nil, err
		}
		if err := st.expect(tokRParen); err != nil {
			return nil, err
		}
		return t, nil

	case tokBackslash:
		st.next()
		bound, err := st.atom()
		if err != nil {
			return nil, err
		}
		body, err := st.term(syntax.LambdaPrecedence)
		if err != nil {
			return nil, err
		}
		return st.at(tok)(qterm.NewAbstraction(bound, body))

	case tokDot:
		st.next()
		return st.term(syntax.DotPrecedence)

	case tokLBrace:
		return st.setBuilder()

	default:
		return nil, st.unexpected(tok)
	}
}

// prefixConstant parses "(word)", naming an operator or binder constant on
// its own.
func (st *state) prefixConstant() (qterm.Term, bool) {
	w, ok := st.word(st.peekAt(1))
	if !ok || st.peekAt(2).kind != tokRParen {
		return nil, false
	}
	var c *qterm.Constant
	switch x := w.(type) {
	case syntax.Operator:
		c = x.Constant
	case syntax.Binder:
		c = x.Constant
	default:
		return nil, false
	}
	st.pos += 3
	return constant(c), true
}

// atom parses "name" or "name:type" as a variable.
func (st *state) atom() (*qterm.Variable, error) {
	tok := st.peek()
	if tok.kind != tokIdent {
		return nil, st.unexpected(tok)
	}
	if _, reserved := st.syntax.Lookup(tok.text); reserved {
		return nil, st.errorf(tok, "%s is reserved and cannot name a variable", tok.text)
	}
	st.next()

	if st.peek().kind != tokColon {
		return qterm.NewVariable(tok.text, qtype.Fresh()), nil
	}
	st.next()
	t, err := st.typ()
	if err != nil {
		return nil, err
	}
	return qterm.NewVariable(tok.text, t), nil
}

// setBuilder parses "{x in X | phi}" for the declared set builder whose
// member operator is used.
func (st *state) setBuilder() (qterm.Term, error) {
	open := st.next()
	bound, err := st.atom()
	if err != nil {
		return nil, err
	}

	member := st.peek()
	var sb *syntax.SetBuilder
	for _, cand := range st.syntax.SetBuilders() {
		if cand.Member == member.text {
			sb = &cand
			break
		}
	}
	if sb == nil {
		return nil, st.errorf(member, "expected a set membership operator")
	}
	st.next()

	set, err := st.term(loosest)
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokBar); err != nil {
		return nil, err
	}
	body, err := st.term(loosest)
	if err != nil {
		return nil, err
	}
	if err := st.expect(tokRBrace); err != nil {
		return nil, err
	}

	abs, err := st.at(open)(qterm.NewAbstraction(bound, body))
	if err != nil {
		return nil, err
	}
	return st.at(open)(qterm.Apply(constant(sb.Constant), set, abs))
}

// termList parses comma-separated terms up to, not including, end.
func (st *state) termList(end tokenKind) ([]qterm.Term, error) {
	var terms []qterm.Term
	if st.peek().kind == end {
		return terms, nil
	}
	for {
		t, err := st.term(loosest)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
		if st.peek().kind != tokComma {
			return terms, nil
		}
		st.next()
	}
}

// typ parses "a -> b" right-associatively.
func (st *state) typ() (qtype.Type, error) {
	arg, err := st.atomicType()
	if err != nil {
		return nil, err
	}
	if st.peek().kind != tokArrow {
		return arg, nil
	}
	st.next()
	result, err := st.typ()
	if err != nil {
		return nil, err
	}
	return qtype.Fun(arg, result), nil
}

func (st *state) atomicType() (qtype.Type, error) {
	tok := st.next()
	switch tok.kind {
	case tokIdent:
		t, ok := st.syntax.Type(tok.text)
		if !ok {
			return nil, st.errorf(tok, "unknown type %s", tok.text)
		}
		return t.Type, nil
	case tokQuestion:
		name := st.next()
		if name.kind != tokIdent {
			return nil, st.unexpected(name)
		}
		v, ok := st.typeVar[name.text]
		if !ok {
			v = qtype.Fresh()
			st.typeVar[name.text] = v
		}
		return v, nil
	case tokLParen:
		t, err := st.typ()
		if err != nil {
			return nil, err
		}
		if err := st.expect(tokRParen); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, st.unexpected(tok)
	}
}
