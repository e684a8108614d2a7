package cheqed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vito/cheqed/pkg/plan"
)

// Script is a file of proofs checked against one set of theories.
//
//	theories: [logic]
//	proofs:
//	  - name: excluded middle
//	    goal: "|- a or not a"
//	    plan: excluded_middle()
//	  - name: stepwise
//	    goal: "|- not not a implies a"
//	    steps:
//	      - right_implication()
//	      - left_negation()
//	      - right_negation()
//	      - axiom()
type Script struct {
	Path     string   `yaml:"-"`
	Theories []string `yaml:"theories,omitempty"`
	Proofs   []Proof  `yaml:"proofs"`
}

// Proof is a goal with either a whole plan or a list of rules applied one
// at a time to the first open goal.
type Proof struct {
	Name  string   `yaml:"name"`
	Goal  string   `yaml:"goal"`
	Plan  string   `yaml:"plan,omitempty"`
	Steps []string `yaml:"steps,omitempty"`
	// Open is the number of goals the proof is expected to leave open.
	Open int `yaml:"open,omitempty"`
}

// ReadScript reads a proof script from a YAML file.
func ReadScript(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var script Script
	if err := yaml.Unmarshal(src, &script); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	script.Path = path
	return &script, nil
}

// Result is the outcome of checking one proof.
type Result struct {
	Script string
	Proof  string
	Plan   plan.Plan
	Trace  *Trace
	Err    error
}

// OK reports whether the proof checked.
func (r *Result) OK() bool {
	return r.Err == nil
}

// IncompleteError is returned for a proof that leaves a different number
// of goals open than it declares.
type IncompleteError struct {
	Expected int
	Open     []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d goals left open, expected %d", len(e.Open), e.Expected)
}

// Check checks one proof against env.
func (env *Environment) Check(proof Proof) *Result {
	res := &Result{Proof: proof.Name}
	res.Plan, res.Trace, res.Err = env.check(proof)
	return res
}

func (env *Environment) check(proof Proof) (plan.Plan, *Trace, error) {
	goal, err := env.ParseSequent(proof.Goal)
	if err != nil {
		return nil, nil, errors.Wrap(err, "goal")
	}

	var p plan.Plan
	switch {
	case proof.Plan != "" && len(proof.Steps) > 0:
		return nil, nil, errors.New("give either a plan or steps, not both")
	case proof.Plan != "":
		p, err = env.Evaluate(proof.Plan)
		if err != nil {
			return nil, nil, err
		}
	default:
		p = env.Start(goal)
		for i, step := range proof.Steps {
			p, err = env.Advance(p, goal, 0, step)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "step %d", i+1)
			}
		}
	}

	tr, err := env.Trace(p, goal)
	if err != nil {
		return p, nil, err
	}
	if len(tr.Open) != proof.Open {
		open := make([]string, len(tr.Open))
		for i, g := range tr.Open {
			open[i] = env.PrintSequent(g)
		}
		return p, tr, &IncompleteError{Expected: proof.Open, Open: open}
	}
	return p, tr, nil
}

// CheckScripts checks every proof of every script concurrently. Scripts
// without theories of their own use defaults. Results are in script
// order, then proof order.
func CheckScripts(ctx context.Context, cache *Cache, defaults []string, scripts ...*Script) ([]*Result, error) {
	envs := make([]*Environment, len(scripts))
	var offsets []int
	total := 0
	for i, s := range scripts {
		theories := s.Theories
		if len(theories) == 0 {
			theories = defaults
		}
		env, err := cache.Get(theories...)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", s.Path)
		}
		envs[i] = env
		offsets = append(offsets, total)
		total += len(s.Proofs)
	}
	results := make([]*Result, total)

	eg, ctx := errgroup.WithContext(ctx)
	for si, script := range scripts {
		env := envs[si]
		for pi, proof := range script.Proofs {
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				res := env.Check(proof)
				res.Script = script.Path
				slog.Debug("checked proof", "script", script.Path, "proof", proof.Name, "ok", res.OK())
				results[offsets[si]+pi] = res
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
