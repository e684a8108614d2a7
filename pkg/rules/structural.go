package rules

import (
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

// permute moves the term at index to the front.
func permute(ts []qterm.Term, index int) ([]qterm.Term, error) {
	if index < 0 || index >= len(ts) {
		return nil, notApplicable("no formula at position %d", index)
	}
	out := make([]qterm.Term, 0, len(ts))
	out = append(out, ts[index])
	out = append(out, ts[:index]...)
	return append(out, ts[index+1:]...), nil
}

// contract duplicates the first term.
func contract(ts []qterm.Term) ([]qterm.Term, error) {
	if len(ts) == 0 {
		return nil, notApplicable("nothing to contract")
	}
	return cons(ts, ts[0]), nil
}

// weaken drops the first term.
func weaken(ts []qterm.Term) ([]qterm.Term, error) {
	if len(ts) == 0 {
		return nil, notApplicable("nothing to weaken")
	}
	return cons(ts[1:]), nil
}

func (b Builder) LeftPermutation(index int) plan.Plan {
	return b.rule("left_permutation", []plan.Arg{plan.Int(index)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		left, err := permute(goal.Left, index)
		if err != nil {
			return nil, err
		}
		return one(left, goal.Right)
	})
}

func (b Builder) RightPermutation(index int) plan.Plan {
	return b.rule("right_permutation", []plan.Arg{plan.Int(index)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		right, err := permute(goal.Right, index)
		if err != nil {
			return nil, err
		}
		return one(goal.Left, right)
	})
}

func (b Builder) LeftContraction() plan.Plan {
	return b.rule("left_contraction", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		left, err := contract(goal.Left)
		if err != nil {
			return nil, err
		}
		return one(left, goal.Right)
	})
}

func (b Builder) RightContraction() plan.Plan {
	return b.rule("right_contraction", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		right, err := contract(goal.Right)
		if err != nil {
			return nil, err
		}
		return one(goal.Left, right)
	})
}

func (b Builder) LeftWeakening() plan.Plan {
	return b.rule("left_weakening", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		left, err := weaken(goal.Left)
		if err != nil {
			return nil, err
		}
		return one(left, goal.Right)
	})
}

func (b Builder) RightWeakening() plan.Plan {
	return b.rule("right_weakening", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		right, err := weaken(goal.Right)
		if err != nil {
			return nil, err
		}
		return one(goal.Left, right)
	})
}
