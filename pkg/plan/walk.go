package plan

import (
	"github.com/vito/cheqed/pkg/sequent"
)

// Walker receives the nodes of a plan in proof order.
type Walker interface {
	Emit(p Plan)
	BeginBranch()
	EndBranch()
}

// Walk visits the plan head-first. A branch with a single continuation is
// followed in line; multi-way branches are bracketed per branch.
func Walk(p Plan, w Walker) {
	for {
		b, ok := p.(*Branch)
		if !ok {
			w.Emit(p)
			return
		}
		Walk(b.First, w)
		if len(b.Branches) == 1 {
			p = b.Branches[0]
			continue
		}
		for _, branch := range b.Branches {
			w.BeginBranch()
			Walk(branch, w)
			w.EndBranch()
		}
		return
	}
}

// TraceWalker receives each atomic plan together with the goal it is
// applied to.
type TraceWalker interface {
	EmitStep(p Plan, goal *sequent.Sequent)
	BeginBranch()
	EndBranch()
}

// Trace applies the plan to goal, reporting every atomic step, and returns
// the open subgoals.
func Trace(p Plan, goal *sequent.Sequent, w TraceWalker) ([]*sequent.Sequent, error) {
	b, ok := p.(*Branch)
	if !ok {
		w.EmitStep(p, goal)
		return p.Subgoals(goal)
	}

	subgoals, err := Trace(b.First, goal, w)
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

	if len(b.Branches) == 1 {
		return Trace(b.Branches[0], subgoals[0], w)
	}

	var open []*sequent.Sequent
	for i, branch := range b.Branches {
		w.BeginBranch()
		sub, err := Trace(branch, subgoals[i], w)
		w.EndBranch()
		if err != nil {
			return nil, err
		}
		open = append(open, sub...)
	}
	return open, nil
}

// Line is one row of a flattened plan.
type Line struct {
	Plan   Plan
	Indent int
}

// Flatten lists the atomic plans with their branch depth. Single-way
// branches do not indent.
func Flatten(p Plan) []Line {
	f := &flattener{}
	Walk(p, f)
	return f.lines
}

type flattener struct {
	lines []Line
	depth int
}

func (f *flattener) Emit(p Plan) {
	f.lines = append(f.lines, Line{Plan: p, Indent: f.depth})
}

func (f *flattener) BeginBranch() { f.depth++ }

func (f *flattener) EndBranch() { f.depth-- }

// Limb is a run of plans applied in sequence, followed by the limbs of a
// multi-way branch, if any.
type Limb struct {
	Steps    []Plan
	Branches []Limb
}

// Compress collapses single-way branches into runs.
func Compress(p Plan) Limb {
	var limb Limb
	for {
		b, ok := p.(*Branch)
		if !ok {
			limb.Steps = append(limb.Steps, p)
			return limb
		}
		if _, forks := b.First.(*Branch); forks {
			// a branching head stays opaque
			limb.Steps = append(limb.Steps, p)
			return limb
		}
		limb.Steps = append(limb.Steps, b.First)
		if len(b.Branches) == 1 {
			p = b.Branches[0]
			continue
		}
		for _, branch := range b.Branches {
			limb.Branches = append(limb.Branches, Compress(branch))
		}
		return limb
	}
}
