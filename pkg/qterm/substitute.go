package qterm

import (
	"strconv"
)

// Substitute replaces every free occurrence of the atom pattern in t with
// value. Bound variables are renamed where value would otherwise be
// captured, and any redex created by the replacement is reduced.
func Substitute(t, value, pattern Term) (Term, error) {
	switch x := t.(type) {
	case *Constant, *Variable:
		if t.Eq(pattern) {
			return value, nil
		}
		return t, nil

	case *Combination:
		op, err := Substitute(x.Operator, value, pattern)
		if err != nil {
			return nil, err
		}
		arg, err := Substitute(x.Operand, value, pattern)
		if err != nil {
			return nil, err
		}
		comb, err := NewCombination(op, arg)
		if err != nil {
			return nil, err
		}
		return BetaReduce(comb)

	case *Abstraction:
		// pattern is shadowed below this binder
		if FreeVariables(pattern).Contains(x.Bound) {
			return t, nil
		}

		bound, body := x.Bound, x.Body
		valueNames := FreeVariables(value).Names()
		if valueNames[bound.Name] {
			taken := map[string]bool{}
			for _, atom := range Atoms(body) {
				taken[Name(atom)] = true
			}
			for name := range valueNames {
				taken[name] = true
			}
			fresh := NewVariable(freshName(bound.Name, taken), bound.QType)
			renamed, err := Substitute(body, fresh, bound)
			if err != nil {
				return nil, err
			}
			bound, body = fresh, renamed
		}

		body, err := Substitute(body, value, pattern)
		if err != nil {
			return nil, err
		}
		return NewAbstraction(bound, body)

	default:
		return t, nil
	}
}

func freshName(base string, taken map[string]bool) string {
	name := base
	for i := 1; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	return name
}

// BetaReduce reduces t if it is an abstraction applied to an operand.
func BetaReduce(t Term) (Term, error) {
	comb, ok := t.(*Combination)
	if !ok {
		return t, nil
	}
	abs, ok := comb.Operator.(*Abstraction)
	if !ok {
		return t, nil
	}
	return Substitute(abs.Body, comb.Operand, abs.Bound)
}
