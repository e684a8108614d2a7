package plan

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/sequent"
)

// Plan is a partially or fully built backward proof. Plans are immutable
// trees; Replace and Normalize build new ones.
type Plan interface {
	// Subgoals returns the goals left open after applying the plan to goal.
	Subgoals(goal *sequent.Sequent) ([]*sequent.Sequent, error)
	// Normalize pads every open subgoal with a fresh Assumption.
	Normalize(goal *sequent.Sequent) (Plan, error)
	// Assumptions returns the open leaves in left-to-right order.
	Assumptions() []*Assumption
	// Replace substitutes sub for the assumption with the same identity.
	Replace(a *Assumption, sub Plan) Plan
	// Step evaluates the plan against goal for display.
	Step(goal *sequent.Sequent) (*Step, error)
	// Display renders the plan in the text form read by the plan
	// interpreter.
	Display(tp TermPrinter) string
}

// ProofStructureError is returned when a branch does not supply exactly one
// sub-plan per subgoal of its head.
type ProofStructureError struct {
	Head     string
	Subgoals int
	Branches int
}

func (e *ProofStructureError) Error() string {
	return fmt.Sprintf("branch error: %s produces %d subgoals but %d branches were given",
		e.Head, e.Subgoals, e.Branches)
}

// Step is a plan evaluated against a goal: the goal, the rule applied to
// it, a step per resulting subgoal, and for compounds the step of their
// expansion.
type Step struct {
	Goal          *sequent.Sequent
	Plan          Plan
	Justification []*Step
	Expansion     *Step
}

var assumptionIDs atomic.Int64

// Assumption is an open goal. Its identity is its id.
type Assumption struct {
	ID int64
}

// NewAssumption returns an assumption with an id never used before.
func NewAssumption() *Assumption {
	return &Assumption{ID: assumptionIDs.Add(1)}
}

func (a *Assumption) Subgoals(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	return []*sequent.Sequent{goal}, nil
}

func (a *Assumption) Normalize(*sequent.Sequent) (Plan, error) { return a, nil }

func (a *Assumption) Assumptions() []*Assumption { return []*Assumption{a} }

func (a *Assumption) Replace(target *Assumption, sub Plan) Plan {
	if a.ID == target.ID {
		return sub
	}
	return a
}

func (a *Assumption) Step(goal *sequent.Sequent) (*Step, error) {
	return &Step{Goal: goal, Plan: a}, nil
}

func (a *Assumption) Display(TermPrinter) string { return "assumption()" }

// Rule is a primitive inference: a direct transform of a goal into its
// subgoals. No subgoals closes the goal.
type Rule struct {
	Call  Call
	Apply func(goal *sequent.Sequent) ([]*sequent.Sequent, error)
}

func (r *Rule) Subgoals(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	return r.Apply(goal)
}

func (r *Rule) Normalize(goal *sequent.Sequent) (Plan, error) {
	return pad(r, goal)
}

func (r *Rule) Assumptions() []*Assumption { return nil }

func (r *Rule) Replace(*Assumption, Plan) Plan { return r }

func (r *Rule) Step(goal *sequent.Sequent) (*Step, error) {
	return &Step{Goal: goal, Plan: r}, nil
}

func (r *Rule) Display(tp TermPrinter) string { return r.Call.Display(tp) }

// Compound is a tactic that expands into a sub-plan depending on the goal.
type Compound struct {
	Call   Call
	Expand func(goal *sequent.Sequent) (Plan, error)
}

func (c *Compound) Subgoals(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	expansion, err := c.Expand(goal)
	if err != nil {
		return nil, err
	}
	return expansion.Subgoals(goal)
}

func (c *Compound) Normalize(goal *sequent.Sequent) (Plan, error) {
	return pad(c, goal)
}

func (c *Compound) Assumptions() []*Assumption { return nil }

func (c *Compound) Replace(*Assumption, Plan) Plan { return c }

func (c *Compound) Step(goal *sequent.Sequent) (*Step, error) {
	expansion, err := c.Expand(goal)
	if err != nil {
		return nil, err
	}
	inner, err := expansion.Step(goal)
	if err != nil {
		return nil, err
	}
	return &Step{Goal: goal, Plan: c, Expansion: inner}, nil
}

func (c *Compound) Display(tp TermPrinter) string { return c.Call.Display(tp) }

// pad wraps p in a branch with one fresh assumption per subgoal, unless it
// closes the goal.
func pad(p Plan, goal *sequent.Sequent) (Plan, error) {
	subgoals, err := p.Subgoals(goal)
	if err != nil {
		return nil, err
	}
	if len(subgoals) == 0 {
		return p, nil
	}
	branches := make([]Plan, len(subgoals))
	for i := range branches {
		branches[i] = NewAssumption()
	}
	return &Branch{First: p, Branches: branches}, nil
}

// Branch applies First, then one sub-plan per subgoal it produces.
type Branch struct {
	First    Plan
	Branches []Plan
}

// NewBranch builds a branch.
func NewBranch(first Plan, branches ...Plan) *Branch {
	return &Branch{First: first, Branches: branches}
}

// Sequence chains plans that each produce a single subgoal:
// Sequence(a, b, c) is NewBranch(a, NewBranch(b, c)).
func Sequence(plans ...Plan) Plan {
	if len(plans) == 1 {
		return plans[0]
	}
	return NewBranch(plans[0], Sequence(plans[1:]...))
}

// split applies First and pairs each subgoal with its branch.
func (b *Branch) split(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	subgoals, err := b.First.Subgoals(goal)
	if err != nil {
		return nil, err
	}
	if len(subgoals) != len(b.Branches) {
		return nil, &ProofStructureError{
			Head:     b.First.Display(rawPrinter{}),
			Subgoals: len(subgoals),
			Branches: len(b.Branches),
		}
	}
	return subgoals, nil
}

func (b *Branch) Subgoals(goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	subgoals, err := b.split(goal)
	if err != nil {
		return nil, err
	}
	var open []*sequent.Sequent
	for i, branch := range b.Branches {
		sub, err := branch.Subgoals(subgoals[i])
		if err != nil {
			return nil, err
		}
		open = append(open, sub...)
	}
	return open, nil
}

func (b *Branch) Normalize(goal *sequent.Sequent) (Plan, error) {
	subgoals, err := b.split(goal)
	if err != nil {
		return nil, err
	}
	branches := make([]Plan, len(b.Branches))
	for i, branch := range b.Branches {
		branches[i], err = branch.Normalize(subgoals[i])
		if err != nil {
			return nil, err
		}
	}
	return &Branch{First: b.First, Branches: branches}, nil
}

func (b *Branch) Assumptions() []*Assumption {
	var as []*Assumption
	for _, branch := range b.Branches {
		as = append(as, branch.Assumptions()...)
	}
	return as
}

func (b *Branch) Replace(a *Assumption, sub Plan) Plan {
	branches := make([]Plan, len(b.Branches))
	for i, branch := range b.Branches {
		branches[i] = branch.Replace(a, sub)
	}
	return &Branch{First: b.First, Branches: branches}
}

func (b *Branch) Step(goal *sequent.Sequent) (*Step, error) {
	subgoals, err := b.split(goal)
	if err != nil {
		return nil, err
	}
	step, err := b.First.Step(goal)
	if err != nil {
		return nil, err
	}
	for i, branch := range b.Branches {
		sub, err := branch.Step(subgoals[i])
		if err != nil {
			return nil, err
		}
		step.Justification = append(step.Justification, sub)
	}
	return step, nil
}

func (b *Branch) Display(tp TermPrinter) string {
	parts := make([]string, 0, len(b.Branches)+1)
	parts = append(parts, b.First.Display(tp))
	for _, branch := range b.Branches {
		parts = append(parts, branch.Display(tp))
	}
	return "branch(" + strings.Join(parts, ", ") + ")"
}

// rawPrinter renders terms with their debug form, for error messages.
type rawPrinter struct{}

func (rawPrinter) Term(t qterm.Term) string { return t.String() }
