package rules

import (
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

// instantiate cuts in the leading left universal for witness and drops the
// universal afterwards.
func (b Builder) instantiate(witness qterm.Term) []plan.Plan {
	return []plan.Plan{
		b.LeftUniversal(witness),
		b.LeftPermutation(1),
		b.LeftWeakening(),
	}
}

func (b Builder) sequence(groups ...[]plan.Plan) plan.Plan {
	var plans []plan.Plan
	for _, g := range groups {
		plans = append(plans, g...)
	}
	return plan.Sequence(plans...)
}

// RightExtension proves "a = b" by extensionality, with witness as the
// member variable.
func (b Builder) RightExtension(witness qterm.Term) plan.Plan {
	return b.compound("right_extension", []plan.Arg{plan.Term(witness)}, func(goal *sequent.Sequent) (plan.Plan, error) {
		m, err := b.matchRight(goal, 0, "a = b")
		if err != nil {
			return nil, err
		}
		return b.sequence(
			[]plan.Plan{b.TheoremCut("set.extensionality")},
			b.instantiate(m["a"]),
			b.instantiate(m["b"]),
			b.instantiate(witness),
			[]plan.Plan{plan.NewBranch(b.LeftImplication(),
				b.RightBidirectional(),
				b.Axiom())},
		), nil
	})
}

func (b Builder) LeftSubset(witness qterm.Term) plan.Plan {
	return b.compound("left_subset", []plan.Arg{plan.Term(witness)}, fixed(b.sequence(
		[]plan.Plan{b.LeftExpand("subset")},
		b.instantiate(witness),
		[]plan.Plan{b.LeftImplication()},
	)))
}

func (b Builder) RightSubset(witness qterm.Term) plan.Plan {
	return b.compound("right_subset", []plan.Arg{plan.Term(witness)}, fixed(plan.Sequence(
		b.RightExpand("subset"),
		b.RightUniversal(witness),
		b.RightImplication(),
	)))
}

func (b Builder) LeftPowerset() plan.Plan {
	return b.compound("left_powerset", nil, func(goal *sequent.Sequent) (plan.Plan, error) {
		m, err := b.matchLeft(goal, 0, "a in powerset(b)")
		if err != nil {
			return nil, err
		}
		return b.sequence(
			[]plan.Plan{b.TheoremCut("set.powerset")},
			b.instantiate(m["b"]),
			b.instantiate(m["a"]),
			[]plan.Plan{plan.NewBranch(b.LeftBidirectional(),
				b.Axiom(),
				b.LeftWeakening())},
		), nil
	})
}

func (b Builder) RightPowerset() plan.Plan {
	return b.compound("right_powerset", nil, func(goal *sequent.Sequent) (plan.Plan, error) {
		m, err := b.matchRight(goal, 0, "a in powerset(b)")
		if err != nil {
			return nil, err
		}
		return b.sequence(
			[]plan.Plan{b.TheoremCut("set.powerset")},
			b.instantiate(m["b"]),
			b.instantiate(m["a"]),
			[]plan.Plan{plan.NewBranch(b.LeftBidirectional(),
				b.RightWeakening(),
				b.Axiom())},
		), nil
	})
}

// separation instantiates the separation schema for "x in separation(X, phi)".
func (b Builder) separation(m qterm.Bindings) [][]plan.Plan {
	return [][]plan.Plan{
		{
			b.TheoremCut("set.separation"),
			b.LeftSchema(m["phi"]),
			b.LeftPermutation(1),
			b.LeftWeakening(),
		},
		b.instantiate(m["X"]),
		b.instantiate(m["x"]),
	}
}

func (b Builder) RightSeparation() plan.Plan {
	return b.compound("right_separation", nil, func(goal *sequent.Sequent) (plan.Plan, error) {
		m, err := b.matchRight(goal, 0, "x in separation(X, phi)")
		if err != nil {
			return nil, err
		}
		return b.sequence(append(b.separation(m),
			[]plan.Plan{plan.NewBranch(b.LeftBidirectional(),
				plan.Sequence(
					b.RightWeakening(),
					b.RightPermutation(1),
					b.RightWeakening(),
					b.RightNegation(),
					plan.NewBranch(b.LeftDisjunction(),
						b.LeftNegation(),
						b.LeftNegation())),
				b.Axiom())},
		)...), nil
	})
}

func (b Builder) LeftSeparation() plan.Plan {
	return b.compound("left_separation", nil, func(goal *sequent.Sequent) (plan.Plan, error) {
		m, err := b.matchLeft(goal, 0, "x in separation(X, phi)")
		if err != nil {
			return nil, err
		}
		return b.sequence(append(b.separation(m),
			[]plan.Plan{plan.NewBranch(b.LeftBidirectional(),
				b.Axiom(),
				plan.Sequence(
					b.LeftWeakening(),
					b.LeftPermutation(1),
					b.LeftWeakening(),
					b.LeftNegation(),
					b.RightDisjunction(),
					b.RightNegation(),
					b.RightNegation(),
					b.LeftPermutation(1)))},
		)...), nil
	})
}
