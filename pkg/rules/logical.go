package rules

import (
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

// Noop leaves the goal unchanged.
func (b Builder) Noop() plan.Plan {
	return b.rule("noop", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		return []*sequent.Sequent{goal}, nil
	})
}

// Axiom closes a goal whose first formulas on both sides are equal.
func (b Builder) Axiom() plan.Plan {
	return b.rule("axiom", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		if len(goal.Left) == 0 || len(goal.Right) == 0 {
			return nil, notApplicable("both sides need a formula")
		}
		if !goal.Left[0].Eq(goal.Right[0]) {
			return nil, notApplicable("%s is not the same as %s", goal.Left[0], goal.Right[0])
		}
		return nil, nil
	})
}

// Cut splits on the witness formula: prove it, then use it.
func (b Builder) Cut(witness qterm.Term) plan.Plan {
	return b.rule("cut", []plan.Arg{plan.Term(witness)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		prove, err := sequent.New(goal.Left, cons(goal.Right, witness))
		if err != nil {
			return nil, err
		}
		use, err := sequent.New(cons(goal.Left, witness), goal.Right)
		if err != nil {
			return nil, err
		}
		return []*sequent.Sequent{prove, use}, nil
	})
}

func (b Builder) LeftNegation() plan.Plan {
	return b.rule("left_negation", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "not a")
		if err != nil {
			return nil, err
		}
		return one(goal.Left[1:], cons(goal.Right, m["a"]))
	})
}

func (b Builder) RightNegation() plan.Plan {
	return b.rule("right_negation", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchRight(goal, 0, "not a")
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left, m["a"]), goal.Right[1:])
	})
}

func (b Builder) LeftDisjunction() plan.Plan {
	return b.rule("left_disjunction", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "a or b")
		if err != nil {
			return nil, err
		}
		first, err := sequent.New(cons(goal.Left[1:], m["a"]), goal.Right)
		if err != nil {
			return nil, err
		}
		second, err := sequent.New(cons(goal.Left[1:], m["b"]), goal.Right)
		if err != nil {
			return nil, err
		}
		return []*sequent.Sequent{first, second}, nil
	})
}

func (b Builder) RightDisjunction() plan.Plan {
	return b.rule("right_disjunction", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchRight(goal, 0, "a or b")
		if err != nil {
			return nil, err
		}
		return one(goal.Left, cons(goal.Right[1:], m["a"], m["b"]))
	})
}

// LeftUniversal instantiates the leading universal on the left with the
// witness, keeping the universal itself.
func (b Builder) LeftUniversal(witness qterm.Term) plan.Plan {
	return b.rule("left_universal", []plan.Arg{plan.Term(witness)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "for_all x . phi")
		if err != nil {
			return nil, err
		}
		inst, err := qterm.Substitute(m["phi"], witness, m["x"])
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left, inst), goal.Right)
	})
}

// RightUniversal replaces the bound variable of the leading universal on
// the right with the witness, which must be a variable not free anywhere
// in the goal.
func (b Builder) RightUniversal(witness qterm.Term) plan.Plan {
	return b.rule("right_universal", []plan.Arg{plan.Term(witness)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchRight(goal, 0, "for_all x . phi")
		if err != nil {
			return nil, err
		}
		v, ok := witness.(*qterm.Variable)
		if !ok {
			return nil, notApplicable("witness %s is not a variable", witness)
		}
		if goal.FreeVariables().Names()[v.Name] {
			return nil, notApplicable("cannot use %s as a witness in %s", witness, goal.Right[0])
		}
		inst, err := qterm.Substitute(m["phi"], witness, m["x"])
		if err != nil {
			return nil, err
		}
		return one(goal.Left, cons(goal.Right[1:], inst))
	})
}

// LeftSchema instantiates the leading schema on the left with the witness
// predicate.
func (b Builder) LeftSchema(witness qterm.Term) plan.Plan {
	return b.rule("left_schema", []plan.Arg{plan.Term(witness)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "schema phi . psi")
		if err != nil {
			return nil, err
		}
		inst, err := qterm.Substitute(m["psi"], witness, m["phi"])
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left, inst), goal.Right)
	})
}

// LeftSubstitution rewrites the first left formula with the equation in
// the second.
func (b Builder) LeftSubstitution() plan.Plan {
	return b.rule("left_substitution", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 1, "a = b")
		if err != nil {
			return nil, err
		}
		rewritten, err := qterm.Substitute(goal.Left[0], m["b"], m["a"])
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left[1:], rewritten), goal.Right)
	})
}

// RightSubstitution rewrites the first right formula with the equation
// first on the left.
func (b Builder) RightSubstitution() plan.Plan {
	return b.rule("right_substitution", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "a = b")
		if err != nil {
			return nil, err
		}
		if len(goal.Right) == 0 {
			return nil, notApplicable("no formula on the right")
		}
		rewritten, err := qterm.Substitute(goal.Right[0], m["b"], m["a"])
		if err != nil {
			return nil, err
		}
		return one(goal.Left, cons(goal.Right[1:], rewritten))
	})
}

// flip rebuilds "a = b" as "b = a" with the same equality constant.
func flip(eq qterm.Term, m qterm.Bindings) (qterm.Term, error) {
	equals := eq.(*qterm.Combination).Operator.(*qterm.Combination).Operator
	return qterm.BinaryOp(equals, m["b"], m["a"])
}

func (b Builder) LeftSymmetry() plan.Plan {
	return b.rule("left_symmetry", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchLeft(goal, 0, "a = b")
		if err != nil {
			return nil, err
		}
		flipped, err := flip(goal.Left[0], m)
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left[1:], flipped), goal.Right)
	})
}

func (b Builder) RightSymmetry() plan.Plan {
	return b.rule("right_symmetry", nil, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		m, err := b.matchRight(goal, 0, "a = b")
		if err != nil {
			return nil, err
		}
		flipped, err := flip(goal.Right[0], m)
		if err != nil {
			return nil, err
		}
		return one(goal.Left, cons(goal.Right[1:], flipped))
	})
}

// TheoremCut adds the named axiom to the left.
func (b Builder) TheoremCut(name string) plan.Plan {
	return b.rule("theorem_cut", []plan.Arg{plan.String(name)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		ax, ok := b.th.Axiom(name)
		if !ok {
			return nil, notApplicable("no axiom named %s", name)
		}
		return one(cons(goal.Left, ax), goal.Right)
	})
}

// LeftExpand unfolds the named definition in the first left formula.
func (b Builder) LeftExpand(name string) plan.Plan {
	return b.rule("left_expand", []plan.Arg{plan.String(name)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		if len(goal.Left) == 0 {
			return nil, notApplicable("no formula on the left")
		}
		unfolded, err := b.unfold(goal.Left[0], name)
		if err != nil {
			return nil, err
		}
		return one(cons(goal.Left[1:], unfolded), goal.Right)
	})
}

// RightExpand unfolds the named definition in the first right formula.
func (b Builder) RightExpand(name string) plan.Plan {
	return b.rule("right_expand", []plan.Arg{plan.String(name)}, func(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
		if len(goal.Right) == 0 {
			return nil, notApplicable("no formula on the right")
		}
		unfolded, err := b.unfold(goal.Right[0], name)
		if err != nil {
			return nil, err
		}
		return one(goal.Left, cons(goal.Right[1:], unfolded))
	})
}

// unfold replaces every free occurrence of the defined constant with its value,
// beta-reducing as it goes.
func (b Builder) unfold(t qterm.Term, name string) (qterm.Term, error) {
	def, ok := b.th.Definition(name)
	if !ok {
		return nil, notApplicable("no definition of %s", name)
	}
	found := false
	for _, atom := range qterm.Atoms(t) {
		if qterm.Name(atom) != def.Name {
			continue
		}
		unfolded, err := qterm.Substitute(t, def.Value, atom)
		if err != nil {
			return nil, err
		}
		// bound occurrences are left alone
		if !unfolded.Eq(t) {
			found = true
		}
		t = unfolded
	}
	if !found {
		return nil, notApplicable("%s does not occur in %s", name, t)
	}
	return t, nil
}
