package qterm

import (
	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/qtype"
)

// SubstituteType rewrites every type annotation in t with fn. The same
// rewrite applies to operator and operand alike, so combinations stay well
// typed without re-running inference.
func SubstituteType(t Term, fn func(qtype.Type) qtype.Type) Term {
	switch x := t.(type) {
	case *Constant:
		return &Constant{Name: x.Name, QType: fn(x.QType)}
	case *Variable:
		return &Variable{Name: x.Name, QType: fn(x.QType)}
	case *Combination:
		return &Combination{
			Operator: SubstituteType(x.Operator, fn),
			Operand:  SubstituteType(x.Operand, fn),
		}
	case *Abstraction:
		return &Abstraction{
			Bound: SubstituteType(x.Bound, fn).(*Variable),
			Body:  SubstituteType(x.Body, fn),
		}
	default:
		return t
	}
}

// ApplyTypes rewrites every type in t with the unifier's current solution.
func ApplyTypes(t Term, tu *qtype.Unifier) Term {
	if tu.Empty() {
		return t
	}
	return SubstituteType(t, tu.Apply)
}

// UnifyTypes makes every free variable sharing a name share a type across
// all of the given terms, then rewrites each term with the solution.
func UnifyTypes(terms ...Term) ([]Term, error) {
	byName := map[string][]qtype.Type{}
	var order []string
	for _, t := range terms {
		for _, v := range FreeVariables(t).Sorted() {
			if _, seen := byName[v.Name]; !seen {
				order = append(order, v.Name)
			}
			byName[v.Name] = append(byName[v.Name], v.QType)
		}
	}

	tu := qtype.NewUnifier()
	for _, name := range order {
		types := byName[name]
		if len(types) < 2 {
			continue
		}
		if err := tu.UnifyMany(types); err != nil {
			return nil, errors.Wrapf(err, "conflicting types for %s", name)
		}
	}

	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = ApplyTypes(t, tu)
	}
	return out, nil
}
