// Package rules implements the inference rules of the sequent calculus:
// structural and logical primitives, the compound tactics built from them,
// and the registry the plan interpreter resolves rule names against.
package rules

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

// Definition is a theory equation "name = value". The defined atom is a
// constant when it was declared as one, otherwise a variable.
type Definition struct {
	Name     string
	Atom     qterm.Term
	Value    qterm.Term
	Equation qterm.Term
}

// Theory is what rules need from a loaded environment.
type Theory interface {
	// Pattern parses a match pattern such as "a or b". Results may be
	// shared between calls.
	Pattern(text string) (qterm.Term, error)
	Definition(name string) (*Definition, bool)
	Axiom(name string) (qterm.Term, bool)
}

// NotApplicableError is returned when a rule's pattern does not match the
// goal or one of its side conditions does not hold.
type NotApplicableError struct {
	Rule   string
	Reason string
	Err    error
}

func (e *NotApplicableError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Rule == "" {
		return "rule does not apply: " + msg
	}
	return fmt.Sprintf("%s does not apply: %s", e.Rule, msg)
}

func (e *NotApplicableError) Unwrap() error {
	return e.Err
}

func notApplicable(format string, args ...any) error {
	return &NotApplicableError{Reason: fmt.Sprintf(format, args...)}
}

// Builder constructs rule plans against a theory.
type Builder struct {
	th Theory
}

// For returns a builder for rules over th.
func For(th Theory) Builder {
	return Builder{th: th}
}

// rule wraps a goal transform as a primitive plan, naming it in any
// NotApplicableError it returns.
func (b Builder) rule(name string, args []plan.Arg, apply func(*sequent.Sequent) ([]*sequent.Sequent, error)) *plan.Rule {
	return &plan.Rule{
		Call: plan.Call{Name: name, Args: args},
		Apply: func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
			subgoals, err := apply(goal)
			if err != nil {
				return nil, named(name, err)
			}
			return subgoals, nil
		},
	}
}

// compound wraps a goal-dependent expansion as a compound plan.
func (b Builder) compound(name string, args []plan.Arg, expand func(*sequent.Sequent) (plan.Plan, error)) *plan.Compound {
	return &plan.Compound{
		Call: plan.Call{Name: name, Args: args},
		Expand: func(goal *sequent.Sequent) (plan.Plan, error) {
			p, err := expand(goal)
			if err != nil {
				return nil, named(name, err)
			}
			return p, nil
		},
	}
}

func named(name string, err error) error {
	var na *NotApplicableError
	if errors.As(err, &na) && na.Rule == "" {
		na.Rule = name
	}
	return err
}

// match matches the formula at index on one side of the goal.
func (b Builder) match(terms qterm.Terms, side string, index int, pattern string) (qterm.Bindings, error) {
	if index >= len(terms) {
		return nil, notApplicable("no formula at %s position %d", side, index)
	}
	p, err := b.th.Pattern(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "pattern %q", pattern)
	}
	m, err := qterm.Match(p, terms[index])
	if err != nil {
		return nil, &NotApplicableError{
			Reason: fmt.Sprintf("%s is not of the form %s", terms[index], pattern),
			Err:    err,
		}
	}
	return m, nil
}

func (b Builder) matchLeft(goal *sequent.Sequent, index int, pattern string) (qterm.Bindings, error) {
	return b.match(goal.Left, "left", index, pattern)
}

func (b Builder) matchRight(goal *sequent.Sequent, index int, pattern string) (qterm.Bindings, error) {
	return b.match(goal.Right, "right", index, pattern)
}

// cons prepends terms to a copy of rest.
func cons(rest []qterm.Term, terms ...qterm.Term) []qterm.Term {
	out := make([]qterm.Term, 0, len(terms)+len(rest))
	out = append(out, terms...)
	return append(out, rest...)
}

func one(left, right []qterm.Term) ([]*sequent.Sequent, error) {
	s, err := sequent.New(left, right)
	if err != nil {
		return nil, err
	}
	return []*sequent.Sequent{s}, nil
}
