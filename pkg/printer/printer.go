package printer

import (
	"fmt"
	"strings"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/sequent"
	"github.com/vito/cheqed/pkg/syntax"
)

// form is one way of writing a combination, tried in declaration order.
type form struct {
	pattern qterm.Term
	render  func(p *Printer, m qterm.Bindings) string
}

// Printer renders terms in the concrete syntax accepted by the parser for
// the same Syntax.
type Printer struct {
	syntax *syntax.Syntax
	forms  []form
}

// New builds a printer. Each operator, binder and set builder becomes a
// pattern that combinations are matched against.
func New(s *syntax.Syntax) (*Printer, error) {
	p := &Printer{syntax: s}

	fresh := func(name string) *qterm.Variable {
		return qterm.NewVariable(name, qtype.Fresh())
	}

	for _, op := range s.Operators() {
		name := op.Constant.Name
		switch op.Arity {
		case 1:
			pat, err := qterm.UnaryOp(op.Constant, fresh("a"))
			if err != nil {
				return nil, fmt.Errorf("operator %s: %w", name, err)
			}
			p.forms = append(p.forms, form{pat, func(p *Printer, m qterm.Bindings) string {
				return fmt.Sprintf("(%s %s)", name, p.Term(m["a"]))
			}})
		case 2:
			pat, err := qterm.BinaryOp(op.Constant, fresh("a"), fresh("b"))
			if err != nil {
				return nil, fmt.Errorf("operator %s: %w", name, err)
			}
			p.forms = append(p.forms, form{pat, func(p *Printer, m qterm.Bindings) string {
				return fmt.Sprintf("(%s %s %s)", p.Term(m["a"]), name, p.Term(m["b"]))
			}})
		default:
			return nil, fmt.Errorf("operator %s: unsupported arity %d", name, op.Arity)
		}
	}

	for _, b := range s.Binders() {
		name := b.Constant.Name
		pat, err := qterm.Binder(b.Constant, fresh("a"), fresh("b"))
		if err != nil {
			return nil, fmt.Errorf("binder %s: %w", name, err)
		}
		p.forms = append(p.forms, form{pat, func(p *Printer, m qterm.Bindings) string {
			return fmt.Sprintf("(%s %s . %s)", name, p.Term(m["a"]), p.Term(m["b"]))
		}})
	}

	for _, sb := range s.SetBuilders() {
		member := sb.Member
		abs, err := qterm.NewAbstraction(fresh("x"), fresh("phi"))
		if err != nil {
			return nil, err
		}
		pat, err := qterm.Apply(sb.Constant, fresh("X"), abs)
		if err != nil {
			return nil, fmt.Errorf("set builder %s: %w", sb.Constant.Name, err)
		}
		p.forms = append(p.forms, form{pat, func(p *Printer, m qterm.Bindings) string {
			return fmt.Sprintf("{%s %s %s | %s}", p.Term(m["x"]), member, p.Term(m["X"]), p.Term(m["phi"]))
		}})
	}

	return p, nil
}

// Term renders t. Operator and binder forms are always parenthesized, so
// the output reparses to an equal term regardless of precedence.
func (p *Printer) Term(t qterm.Term) string {
	switch x := t.(type) {
	case *qterm.Constant:
		if w, ok := p.syntax.Lookup(x.Name); ok {
			switch w.(type) {
			case syntax.Operator, syntax.Binder:
				return "(" + x.Name + ")"
			}
		}
		return x.Name
	case *qterm.Variable:
		return x.Name
	case *qterm.Abstraction:
		return fmt.Sprintf("(\\%s.%s)", p.Term(x.Bound), p.Term(x.Body))
	case *qterm.Combination:
		for _, f := range p.forms {
			m, err := qterm.Match(f.pattern, t)
			if err != nil {
				continue
			}
			return f.render(p, m)
		}
		op, args := qterm.Uncurry(t)
		strs := make([]string, len(args))
		for i, arg := range args {
			strs[i] = p.Term(arg)
		}
		return fmt.Sprintf("%s(%s)", p.Term(op), strings.Join(strs, ", "))
	default:
		return fmt.Sprint(t)
	}
}

// TermList renders terms separated by commas.
func (p *Printer) TermList(ts []qterm.Term) string {
	strs := make([]string, len(ts))
	for i, t := range ts {
		strs[i] = p.Term(t)
	}
	return strings.Join(strs, ", ")
}

// Sequent renders "left |- right".
func (p *Printer) Sequent(s *sequent.Sequent) string {
	return fmt.Sprintf("%s |- %s", p.TermList(s.Left), p.TermList(s.Right))
}

// Type renders a type with right-associative arrows and no redundant
// parentheses.
func Type(t qtype.Type) string {
	switch x := t.(type) {
	case *qtype.Function:
		arg := Type(x.Arg)
		if qtype.IsFun(x.Arg) {
			arg = "(" + arg + ")"
		}
		return arg + "->" + Type(x.Result)
	default:
		return t.String()
	}
}

// Typed renders an atom with its type annotation, as in "x:obj".
func Typed(t qterm.Term) string {
	return qterm.Name(t) + ":" + Type(t.Type())
}
