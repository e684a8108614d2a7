package plan_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/sequent"
)

type debugPrinter struct{}

func (debugPrinter) Term(t qterm.Term) string { return t.String() }

var goal = sequent.Must(nil, []qterm.Term{qterm.NewVariable("p", qtype.Bool())})

func rule(name string, n int) *plan.Rule {
	return &plan.Rule{
		Call: plan.Call{Name: name},
		Apply: func(g *sequent.Sequent) ([]*sequent.Sequent, error) {
			out := make([]*sequent.Sequent, n)
			for i := range out {
				out[i] = g
			}
			return out, nil
		},
	}
}

var (
	closes = rule("closes", 0)
	keeps  = rule("keeps", 1)
	splits = rule("splits", 2)
)

func TestAssumption(t *testing.T) {
	a := plan.NewAssumption()
	b := plan.NewAssumption()
	assert.NotEqual(t, a.ID, b.ID)

	subgoals, err := a.Subgoals(goal)
	require.NoError(t, err)
	assert.True(t, sequent.Eq([]*sequent.Sequent{goal}, subgoals))

	assert.Same(t, keeps, a.Replace(a, keeps))
	assert.Same(t, a, a.Replace(b, keeps))
}

func TestBranchCountMismatch(t *testing.T) {
	bad := plan.NewBranch(splits, closes)

	_, err := bad.Subgoals(goal)
	var pse *plan.ProofStructureError
	require.True(t, errors.As(err, &pse))
	assert.Equal(t, 2, pse.Subgoals)
	assert.Equal(t, 1, pse.Branches)

	_, err = bad.Normalize(goal)
	require.True(t, errors.As(err, &pse))

	_, err = bad.Step(goal)
	require.True(t, errors.As(err, &pse))
}

func TestNormalize(t *testing.T) {
	n, err := splits.Normalize(goal)
	require.NoError(t, err)
	b, ok := n.(*plan.Branch)
	require.True(t, ok)
	assert.Len(t, b.Branches, 2)
	assert.Len(t, n.Assumptions(), 2)

	closed, err := closes.Normalize(goal)
	require.NoError(t, err)
	assert.Same(t, closes, closed)
	assert.Empty(t, closed.Assumptions())
}

func TestReplaceIdentity(t *testing.T) {
	n, err := splits.Normalize(goal)
	require.NoError(t, err)
	as := n.Assumptions()

	replaced := n.Replace(as[0], closes)
	subgoals, err := replaced.Subgoals(goal)
	require.NoError(t, err)
	assert.Len(t, subgoals, 1)

	remaining := replaced.Assumptions()
	require.Len(t, remaining, 1)
	assert.Equal(t, as[1].ID, remaining[0].ID)

	// the original is untouched
	assert.Len(t, n.Assumptions(), 2)
}

func TestSequence(t *testing.T) {
	assert.Same(t, keeps, plan.Sequence(keeps))

	seq := plan.Sequence(keeps, keeps, closes)
	subgoals, err := seq.Subgoals(goal)
	require.NoError(t, err)
	assert.Empty(t, subgoals)
	assert.Equal(t, "branch(keeps(), branch(keeps(), closes()))", seq.Display(debugPrinter{}))
}

func TestCompound(t *testing.T) {
	c := &plan.Compound{
		Call: plan.Call{Name: "twice", Args: []plan.Arg{plan.Int(2), plan.String("x")}},
		Expand: func(*sequent.Sequent) (plan.Plan, error) {
			return plan.NewBranch(splits, closes, keeps), nil
		},
	}
	assert.Equal(t, `twice(2, "x")`, c.Display(debugPrinter{}))

	subgoals, err := c.Subgoals(goal)
	require.NoError(t, err)
	assert.Len(t, subgoals, 1)

	step, err := c.Step(goal)
	require.NoError(t, err)
	require.NotNil(t, step.Expansion)
	assert.Same(t, splits, step.Expansion.Plan)
	assert.Len(t, step.Expansion.Justification, 2)

	n, err := c.Normalize(goal)
	require.NoError(t, err)
	assert.Len(t, n.Assumptions(), 1)
}

func TestTermArgDisplay(t *testing.T) {
	arg := plan.Term(qterm.NewVariable("w", qtype.Obj()))
	assert.Equal(t, "`w:obj`", arg.Display(debugPrinter{}))

	call := plan.Call{Name: "left_universal", Args: []plan.Arg{arg, plan.Int(2), plan.String("set.powerset")}}
	assert.Equal(t, "left_universal(`w:obj`, 2, \"set.powerset\")", call.Display(debugPrinter{}))
}

type recorder struct {
	events []string
}

func (r *recorder) Emit(p plan.Plan) { r.events = append(r.events, p.Display(debugPrinter{})) }

func (r *recorder) EmitStep(p plan.Plan, _ *sequent.Sequent) {
	r.Emit(p)
}

func (r *recorder) BeginBranch() { r.events = append(r.events, "{") }

func (r *recorder) EndBranch() { r.events = append(r.events, "}") }

func TestWalkAndFlatten(t *testing.T) {
	p := plan.Sequence(keeps, plan.NewBranch(splits, closes, plan.Sequence(keeps, closes)))

	r := &recorder{}
	plan.Walk(p, r)
	assert.Equal(t, []string{
		"keeps()", "splits()",
		"{", "closes()", "}",
		"{", "keeps()", "closes()", "}",
	}, r.events)

	var indents []int
	for _, line := range plan.Flatten(p) {
		indents = append(indents, line.Indent)
	}
	assert.Equal(t, []int{0, 0, 1, 1, 1}, indents)

	tr := &recorder{}
	open, err := plan.Trace(p, goal, tr)
	require.NoError(t, err)
	assert.Empty(t, open)
	assert.Equal(t, r.events, tr.events)
}

func TestCompress(t *testing.T) {
	p := plan.Sequence(keeps, plan.NewBranch(splits, closes, plan.Sequence(keeps, closes)))
	limb := plan.Compress(p)
	require.Len(t, limb.Steps, 2)
	require.Len(t, limb.Branches, 2)
	assert.Len(t, limb.Branches[0].Steps, 1)
	assert.Len(t, limb.Branches[1].Steps, 2)
}
