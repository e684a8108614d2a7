package plan

import (
	"strconv"
	"strings"

	"github.com/vito/cheqed/pkg/qterm"
)

// TermPrinter renders terms in re-parseable concrete syntax.
type TermPrinter interface {
	Term(qterm.Term) string
}

// ArgKind is the declared kind of a rule argument.
type ArgKind string

const (
	IntArg    ArgKind = "int"
	StringArg ArgKind = "string"
	TermArg   ArgKind = "term"
)

// Arg is one argument of a rule invocation.
type Arg struct {
	Kind   ArgKind
	Int    int
	String string
	Term   qterm.Term
}

func Int(i int) Arg { return Arg{Kind: IntArg, Int: i} }

func String(s string) Arg { return Arg{Kind: StringArg, String: s} }

func Term(t qterm.Term) Arg { return Arg{Kind: TermArg, Term: t} }

// Display renders the argument as it appears in plan text: integers as
// literals, strings quoted, terms back-quoted.
func (a Arg) Display(tp TermPrinter) string {
	switch a.Kind {
	case IntArg:
		return strconv.Itoa(a.Int)
	case StringArg:
		return strconv.Quote(a.String)
	case TermArg:
		return "`" + tp.Term(a.Term) + "`"
	default:
		return "?"
	}
}

// Call is the display form of a rule invocation, "name(arg, ...)".
type Call struct {
	Name string
	Args []Arg
}

func (c Call) Display(tp TermPrinter) string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.Display(tp)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}
