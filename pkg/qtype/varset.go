package qtype

import "slices"

// VarSet represents a set of type variables
type VarSet map[Var]bool

// NewVarSet creates a new VarSet
func NewVarSet(vs ...Var) VarSet {
	set := make(VarSet)
	for _, v := range vs {
		set[v] = true
	}
	return set
}

// Union returns the union of two VarSets
func (vs VarSet) Union(other VarSet) VarSet {
	result := make(VarSet, len(vs)+len(other))
	for v := range vs {
		result[v] = true
	}
	for v := range other {
		result[v] = true
	}
	return result
}

// Contains checks if a type variable is in the set
func (vs VarSet) Contains(v Var) bool {
	return vs[v]
}

// ToSlice returns the variables in ascending order
func (vs VarSet) ToSlice() []Var {
	result := make([]Var, 0, len(vs))
	for v := range vs {
		result = append(result, v)
	}
	slices.Sort(result)
	return result
}
