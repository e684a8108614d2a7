package cheqed

import (
	"fmt"
	"strings"

	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/sequent"
)

// TraceLine is one atomic plan applied to its goal.
type TraceLine struct {
	Depth int
	Goal  *sequent.Sequent
	Plan  plan.Plan
}

// Trace is the record of running a plan against a goal.
type Trace struct {
	Lines []TraceLine
	Open  []*sequent.Sequent
}

// Complete reports whether the plan closed every goal.
func (tr *Trace) Complete() bool {
	return len(tr.Open) == 0
}

type tracer struct {
	depth int
	lines []TraceLine
}

func (t *tracer) EmitStep(p plan.Plan, goal *sequent.Sequent) {
	t.lines = append(t.lines, TraceLine{Depth: t.depth, Goal: goal, Plan: p})
}

func (t *tracer) BeginBranch() { t.depth++ }

func (t *tracer) EndBranch() { t.depth-- }

// Trace runs p against goal, recording every step.
func (env *Environment) Trace(p plan.Plan, goal *sequent.Sequent) (*Trace, error) {
	t := &tracer{}
	open, err := plan.Trace(p, goal, t)
	if err != nil {
		return nil, err
	}
	return &Trace{Lines: t.lines, Open: open}, nil
}

// RenderTrace lays a trace out as text, one goal and its rule per step,
// indenting the branches of multi-way rules.
func (env *Environment) RenderTrace(tr *Trace) string {
	var b strings.Builder
	for _, line := range tr.Lines {
		indent := strings.Repeat("  ", line.Depth)
		fmt.Fprintf(&b, "%s%s\n", indent, env.PrintSequent(line.Goal))
		if _, open := line.Plan.(*plan.Assumption); open {
			fmt.Fprintf(&b, "%s  ?\n", indent)
		} else {
			fmt.Fprintf(&b, "%s  by %s\n", indent, env.PrintProof(line.Plan))
		}
	}
	if tr.Complete() {
		b.WriteString("qed\n")
	} else {
		fmt.Fprintf(&b, "%d open:\n", len(tr.Open))
		for _, goal := range tr.Open {
			fmt.Fprintf(&b, "  %s\n", env.PrintSequent(goal))
		}
	}
	return b.String()
}

// RenderStep lays out an evaluated plan including what its compound rules
// expanded to.
func (env *Environment) RenderStep(step *plan.Step) string {
	var b strings.Builder
	env.renderStep(&b, step, 0)
	return b.String()
}

func (env *Environment) renderStep(b *strings.Builder, step *plan.Step, depth int) {
	indent := strings.Repeat("  ", depth)
	if _, open := step.Plan.(*plan.Assumption); open {
		fmt.Fprintf(b, "%s%s  ?\n", indent, env.PrintSequent(step.Goal))
		return
	}
	fmt.Fprintf(b, "%s%s  by %s\n", indent, env.PrintSequent(step.Goal), env.PrintProof(step.Plan))
	if step.Expansion != nil {
		fmt.Fprintf(b, "%s  = {\n", indent)
		env.renderStep(b, step.Expansion, depth+2)
		fmt.Fprintf(b, "%s  }\n", indent)
	}
	next := depth
	if len(step.Justification) > 1 {
		next++
	}
	for _, sub := range step.Justification {
		env.renderStep(b, sub, next)
	}
}

// Compact renders the plan with runs of single-goal rules joined by
// semicolons and multi-way branches in braces.
func (env *Environment) Compact(p plan.Plan) string {
	var b strings.Builder
	env.compact(&b, plan.Compress(p))
	return b.String()
}

func (env *Environment) compact(b *strings.Builder, limb plan.Limb) {
	for i, p := range limb.Steps {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(env.PrintProof(p))
	}
	for _, branch := range limb.Branches {
		b.WriteString(" { ")
		env.compact(b, branch)
		b.WriteString(" }")
	}
}

// Outline renders the plan alone, one atomic rule per line.
func (env *Environment) Outline(p plan.Plan) string {
	var b strings.Builder
	for _, line := range plan.Flatten(p) {
		fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", line.Indent), env.PrintProof(line.Plan))
	}
	return b.String()
}
