package sequent

import (
	"slices"

	"github.com/vito/cheqed/pkg/qterm"
)

// Sequent is a pair of ordered term lists read as "the conjunction of Left
// entails the disjunction of Right". Sequents are immutable: rules build new
// ones.
type Sequent struct {
	Left  qterm.Terms
	Right qterm.Terms
}

// New builds a sequent, unifying the types of same-named free variables
// across both sides. A variable used at two incompatible types is a
// *qtype.TypeMismatch.
func New(left, right []qterm.Term) (*Sequent, error) {
	all := make([]qterm.Term, 0, len(left)+len(right))
	all = append(all, left...)
	all = append(all, right...)
	if len(all) > 1 {
		var err error
		all, err = qterm.UnifyTypes(all...)
		if err != nil {
			return nil, err
		}
	}
	return &Sequent{
		Left:  slices.Clip(qterm.Terms(all[:len(left)])),
		Right: slices.Clip(qterm.Terms(all[len(left):])),
	}, nil
}

// Must is New for terms known to be consistent.
func Must(left, right []qterm.Term) *Sequent {
	s, err := New(left, right)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sequent) Eq(other *Sequent) bool {
	return s.Left.Eq(other.Left) && s.Right.Eq(other.Right)
}

// FreeVariables returns the free variables of every term on either side.
func (s *Sequent) FreeVariables() qterm.VarSet {
	vs := qterm.VarSet{}
	for _, t := range slices.Concat(s.Left, s.Right) {
		for k, v := range qterm.FreeVariables(t) {
			vs[k] = v
		}
	}
	return vs
}

// WithLeft returns a sequent with the same right side.
func (s *Sequent) WithLeft(left ...qterm.Term) (*Sequent, error) {
	return New(left, s.Right)
}

// WithRight returns a sequent with the same left side.
func (s *Sequent) WithRight(right ...qterm.Term) (*Sequent, error) {
	return New(s.Left, right)
}

func (s *Sequent) String() string {
	return s.Left.String() + " |- " + s.Right.String()
}

// Eq compares two lists of sequents pairwise.
func Eq(a, b []*Sequent) bool {
	return slices.EqualFunc(a, b, (*Sequent).Eq)
}
