package qterm

import (
	"errors"
	"fmt"

	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/unification"
)

// Bindings maps pattern variable names to the subterms they matched.
type Bindings map[string]Term

// matchNode is a cell in the matcher's unifier: either a pattern variable,
// the only kind of node that can be bound, or a fixed subterm.
type matchNode struct {
	pattern string
	term    Term
}

func (n matchNode) String() string {
	if n.term == nil {
		return n.pattern
	}
	return n.term.String()
}

// Match matches term against pattern in one direction: variables of the
// pattern bind to subterms of term, everything else must agree. Constants
// must have the same name and unifiable types. A pattern variable occurring
// twice must match equal subterms.
func Match(pattern, term Term) (Bindings, error) {
	u := unification.New(
		func(n matchNode) bool { return n.term == nil },
		// subterms never contain pattern variables
		func(v, t matchNode) bool { return false },
		func(n matchNode) string {
			if n.term == nil {
				return "?" + n.pattern
			}
			return n.term.Key()
		},
	)

	var names []string
	var walk func(p, t Term) error
	walk = func(p, t Term) error {
		switch px := p.(type) {
		case *Variable:
			if !qtype.CanUnify(px.QType, t.Type()) {
				return &MatchError{Pattern: p, Term: t, Msg: "incompatible types"}
			}
			if err := u.Unify(matchNode{pattern: px.Name}, matchNode{term: t}); err != nil {
				var uerr *unification.Error[matchNode]
				if errors.As(err, &uerr) {
					return &MatchError{
						Pattern: p,
						Term:    t,
						Msg:     fmt.Sprintf("%s is already bound to %s", px.Name, uerr.A),
					}
				}
				return err
			}
			names = append(names, px.Name)
			return nil
		case *Constant:
			tc, ok := t.(*Constant)
			if !ok || tc.Name != px.Name || !qtype.CanUnify(px.QType, tc.QType) {
				return &MatchError{Pattern: p, Term: t}
			}
			return nil
		case *Combination:
			tc, ok := t.(*Combination)
			if !ok {
				return &MatchError{Pattern: p, Term: t}
			}
			if err := walk(px.Operator, tc.Operator); err != nil {
				return err
			}
			return walk(px.Operand, tc.Operand)
		case *Abstraction:
			ta, ok := t.(*Abstraction)
			if !ok {
				return &MatchError{Pattern: p, Term: t}
			}
			if err := walk(px.Bound, ta.Bound); err != nil {
				return err
			}
			return walk(px.Body, ta.Body)
		default:
			return &MatchError{Pattern: p, Term: t}
		}
	}

	if err := walk(pattern, term); err != nil {
		return nil, err
	}

	bindings := Bindings{}
	for _, name := range names {
		bindings[name] = u.Representative(matchNode{pattern: name}).term
	}
	return bindings, nil
}
