package syntax

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
)

// Assoc is an operator associativity.
type Assoc string

const (
	Left     Assoc = "left"
	Right    Assoc = "right"
	NonAssoc Assoc = "nonassoc"
)

// ParseAssoc validates an associativity name.
func ParseAssoc(s string) (Assoc, error) {
	switch a := Assoc(s); a {
	case Left, Right, NonAssoc:
		return a, nil
	default:
		return "", fmt.Errorf("unknown associativity %q", s)
	}
}

// Word is a reserved word of the concrete syntax.
type Word interface {
	WordName() string
}

// Type declares an atomic type name usable in type annotations.
type Type struct {
	Name string
	Type qtype.Type
}

func (t Type) WordName() string { return t.Name }

// Operator declares a prefix (arity 1) or infix (arity 2) operator.
type Operator struct {
	Constant   *qterm.Constant
	Arity      int
	Assoc      Assoc
	Precedence int
}

func (o Operator) WordName() string { return o.Constant.Name }

// Binder declares a constant taking an abstraction, written
// "binder x . body".
type Binder struct {
	Constant *qterm.Constant
}

func (b Binder) WordName() string { return b.Constant.Name }

// SetBuilder declares the "{x in X | phi}" form, standing for
// Constant(X, \x . phi). Member names the infix membership operator used as
// the separator; it must also be declared as an Operator.
type SetBuilder struct {
	Constant *qterm.Constant
	Member   string
}

func (s SetBuilder) WordName() string { return s.Constant.Name }

// Fixed precedences of the built-in tokens. Smaller numbers bind tighter.
const (
	DotPrecedence         = 5000
	LambdaPrecedence      = 4900
	ArrowPrecedence       = 4800
	ApplicationPrecedence = 0
)

// Level is one row of the precedence table.
type Level struct {
	Precedence int
	Assoc      Assoc
	Tokens     []string
}

// Syntax is the word table and precedence table of one theory.
type Syntax struct {
	words  []Word
	byName map[string]Word
	levels []Level
}

// PrecedenceConfigError is returned when tokens sharing a precedence level
// disagree on associativity.
type PrecedenceConfigError struct {
	Precedence int
	Tokens     [2]string
	Assocs     [2]Assoc
}

func (e *PrecedenceConfigError) Error() string {
	return fmt.Sprintf(
		"tokens at the same precedence level must have the same associativity: %s and %s have precedence %d but associativities %s and %s",
		e.Tokens[0], e.Tokens[1], e.Precedence, e.Assocs[0], e.Assocs[1])
}

type entry struct {
	prec  int
	assoc Assoc
	token string
}

// New builds a syntax from declarations. Later words replace earlier words
// of the same name.
func New(words ...Word) (*Syntax, error) {
	s := &Syntax{byName: map[string]Word{}}
	for _, w := range words {
		if _, dup := s.byName[w.WordName()]; dup {
			s.words = slices.DeleteFunc(s.words, func(o Word) bool {
				return o.WordName() == w.WordName()
			})
		}
		s.words = append(s.words, w)
		s.byName[w.WordName()] = w
	}

	entries := []entry{
		{DotPrecedence, NonAssoc, "."},
		{LambdaPrecedence, NonAssoc, "\\"},
		{ArrowPrecedence, Right, "->"},
		{ApplicationPrecedence, NonAssoc, "("},
		{ApplicationPrecedence, NonAssoc, ")"},
	}
	for _, op := range s.Operators() {
		entries = append(entries, entry{op.Precedence, op.Assoc, op.Constant.Name})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return cmp.Compare(b.prec, a.prec)
	})

	for _, e := range entries {
		if n := len(s.levels); n > 0 && s.levels[n-1].Precedence == e.prec {
			lvl := &s.levels[n-1]
			if lvl.Assoc != e.assoc {
				return nil, &PrecedenceConfigError{
					Precedence: e.prec,
					Tokens:     [2]string{lvl.Tokens[0], e.token},
					Assocs:     [2]Assoc{lvl.Assoc, e.assoc},
				}
			}
			lvl.Tokens = append(lvl.Tokens, e.token)
			continue
		}
		s.levels = append(s.levels, Level{Precedence: e.prec, Assoc: e.assoc, Tokens: []string{e.token}})
	}

	for _, sb := range s.SetBuilders() {
		if op, ok := s.Operator(sb.Member); !ok || op.Arity != 2 {
			return nil, fmt.Errorf("set builder %s: %q is not a binary operator", sb.Constant.Name, sb.Member)
		}
	}

	return s, nil
}

// Words returns every declaration in declaration order.
func (s *Syntax) Words() []Word {
	return s.words
}

// Lookup finds the word with the given name.
func (s *Syntax) Lookup(name string) (Word, bool) {
	w, ok := s.byName[name]
	return w, ok
}

// Operator finds an operator declaration by name.
func (s *Syntax) Operator(name string) (Operator, bool) {
	op, ok := s.byName[name].(Operator)
	return op, ok
}

// Binder finds a binder declaration by name.
func (s *Syntax) Binder(name string) (Binder, bool) {
	b, ok := s.byName[name].(Binder)
	return b, ok
}

// Type finds a type declaration by name.
func (s *Syntax) Type(name string) (Type, bool) {
	t, ok := s.byName[name].(Type)
	return t, ok
}

func (s *Syntax) Operators() []Operator { return filter[Operator](s.words) }

func (s *Syntax) Binders() []Binder { return filter[Binder](s.words) }

func (s *Syntax) Types() []Type { return filter[Type](s.words) }

func (s *Syntax) SetBuilders() []SetBuilder { return filter[SetBuilder](s.words) }

// Levels returns the precedence table, loosest level first.
func (s *Syntax) Levels() []Level {
	return s.levels
}

func (s *Syntax) String() string {
	var b strings.Builder
	for _, lvl := range s.levels {
		fmt.Fprintf(&b, "%5d %-8s %s\n", lvl.Precedence, lvl.Assoc, strings.Join(lvl.Tokens, " "))
	}
	return b.String()
}

func filter[W Word](words []Word) []W {
	var out []W
	for _, w := range words {
		if x, ok := w.(W); ok {
			out = append(out, x)
		}
	}
	return out
}
