package rules

import (
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

func fixed(p plan.Plan) func(*sequent.Sequent) (plan.Plan, error) {
	return func(*sequent.Sequent) (plan.Plan, error) { return p, nil }
}

// Qed closes a goal with any formula on both sides.
func (b Builder) Qed() plan.Plan {
	return b.compound("qed", nil, func(goal *sequent.Sequent) (plan.Plan, error) {
		for i, l := range goal.Left {
			for j, r := range goal.Right {
				if l.Eq(r) {
					return plan.Sequence(
						b.LeftPermutation(i),
						b.RightPermutation(j),
						b.Axiom(),
					), nil
				}
			}
		}
		return nil, notApplicable("no formula appears on both sides")
	})
}

func (b Builder) LeftConjunction() plan.Plan {
	return b.compound("left_conjunction", nil, fixed(plan.Sequence(
		b.LeftExpand("and"),
		b.LeftNegation(),
		b.RightDisjunction(),
		b.RightNegation(),
		b.RightNegation(),
		b.LeftPermutation(1),
	)))
}

func (b Builder) RightConjunction() plan.Plan {
	return b.compound("right_conjunction", nil, fixed(plan.Sequence(
		b.RightExpand("and"),
		b.RightNegation(),
		plan.NewBranch(b.LeftDisjunction(),
			b.LeftNegation(),
			b.LeftNegation()),
	)))
}

func (b Builder) LeftImplication() plan.Plan {
	return b.compound("left_implication", nil, fixed(plan.Sequence(
		b.LeftExpand("implies"),
		plan.NewBranch(b.LeftDisjunction(),
			b.LeftNegation(),
			b.Noop()),
	)))
}

func (b Builder) RightImplication() plan.Plan {
	return b.compound("right_implication", nil, fixed(plan.Sequence(
		b.RightExpand("implies"),
		b.RightDisjunction(),
		b.RightNegation(),
	)))
}

func (b Builder) RightBidirectional() plan.Plan {
	return b.compound("right_bidirectional", nil, fixed(plan.Sequence(
		b.RightExpand("iff"),
		plan.NewBranch(b.RightConjunction(),
			b.RightImplication(),
			b.RightImplication()),
	)))
}

func (b Builder) LeftBidirectional() plan.Plan {
	return b.compound("left_bidirectional", nil, fixed(plan.Sequence(
		b.LeftExpand("iff"),
		b.LeftConjunction(),
		plan.NewBranch(b.LeftImplication(),
			plan.NewBranch(b.LeftImplication(),
				b.RightPermutation(1),
				b.Axiom()),
			plan.Sequence(
				b.LeftPermutation(1),
				plan.NewBranch(b.LeftImplication(),
					b.Axiom(),
					b.Noop()))),
	)))
}

// RightExistential proves an existential on the right by exhibiting the
// witness.
func (b Builder) RightExistential(witness qterm.Term) plan.Plan {
	return b.compound("right_existential", []plan.Arg{plan.Term(witness)}, fixed(plan.Sequence(
		b.RightContraction(),
		b.RightExpand("exists"),
		b.RightNegation(),
		b.LeftUniversal(witness),
		b.LeftNegation(),
		b.LeftWeakening(),
	)))
}

// LeftExistential uses an existential on the left, naming its object with
// the witness variable.
func (b Builder) LeftExistential(witness qterm.Term) plan.Plan {
	return b.compound("left_existential", []plan.Arg{plan.Term(witness)}, fixed(plan.Sequence(
		b.LeftExpand("exists"),
		b.LeftNegation(),
		b.RightUniversal(witness),
		b.RightNegation(),
	)))
}

func (b Builder) ExcludedMiddle() plan.Plan {
	return b.compound("excluded_middle", nil, fixed(plan.Sequence(
		b.RightDisjunction(),
		b.RightPermutation(1),
		b.RightNegation(),
		b.Axiom(),
	)))
}
