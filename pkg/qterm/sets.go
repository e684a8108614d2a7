package qterm

import (
	"slices"
)

// VarSet is a set of variables keyed by their canonical key, so x:obj and
// x:bool are distinct members.
type VarSet map[string]*Variable

func (vs VarSet) Add(v *Variable) {
	vs[v.Key()] = v
}

func (vs VarSet) Contains(v *Variable) bool {
	_, ok := vs[v.Key()]
	return ok
}

// Names returns the set of variable names.
func (vs VarSet) Names() map[string]bool {
	names := make(map[string]bool, len(vs))
	for _, v := range vs {
		names[v.Name] = true
	}
	return names
}

// Sorted returns the members ordered by key.
func (vs VarSet) Sorted() []*Variable {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*Variable, len(keys))
	for i, k := range keys {
		out[i] = vs[k]
	}
	return out
}

// FreeVariables returns the variables of t not bound by an enclosing
// abstraction.
func FreeVariables(t Term) VarSet {
	vs := VarSet{}
	collectFree(t, vs)
	return vs
}

func collectFree(t Term, into VarSet) {
	switch x := t.(type) {
	case *Constant:
	case *Variable:
		into.Add(x)
	case *Combination:
		collectFree(x.Operator, into)
		collectFree(x.Operand, into)
	case *Abstraction:
		body := FreeVariables(x.Body)
		delete(body, x.Bound.Key())
		for k, v := range body {
			into[k] = v
		}
	}
}

// Atoms returns every constant and variable occurring in t, bound or not.
func Atoms(t Term) map[string]Term {
	atoms := map[string]Term{}
	var walk func(Term)
	walk = func(t Term) {
		switch x := t.(type) {
		case *Constant, *Variable:
			atoms[t.Key()] = t
		case *Combination:
			walk(x.Operator)
			walk(x.Operand)
		case *Abstraction:
			walk(x.Bound)
			walk(x.Body)
		}
	}
	walk(t)
	return atoms
}
