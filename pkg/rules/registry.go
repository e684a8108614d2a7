package rules

import (
	"fmt"
	"slices"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/sequent"
)

// Kind classifies registered rules.
type Kind string

const (
	Primitive   Kind = "primitive"
	Compound    Kind = "compound"
	Placeholder Kind = "placeholder"
)

// ArgSpec names and types one rule argument.
type ArgSpec struct {
	Name string
	Kind plan.ArgKind
}

// Descriptor is a registry entry: how to build a rule from arguments and
// how to tell whether it applies to a goal.
type Descriptor struct {
	Name string
	Kind Kind
	Args []ArgSpec
	// Theory names the theory whose declarations the rule relies on.
	Theory string
	Doc    string

	Build func(b Builder, args []plan.Arg) plan.Plan
	// Applicable overrides the default test. When nil, a rule without
	// arguments applies if building and applying it succeeds, and a rule
	// with arguments never does.
	Applicable func(b Builder, goal *sequent.Sequent) (bool, error)
}

// ArgumentError is returned for a rule invoked with the wrong arguments.
type ArgumentError struct {
	Rule string
	Msg  string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Msg)
}

// Signature renders the descriptor as "name(arg:kind, ...)".
func (d *Descriptor) Signature() string {
	sig := d.Name + "("
	for i, arg := range d.Args {
		if i > 0 {
			sig += ", "
		}
		sig += arg.Name + ":" + string(arg.Kind)
	}
	return sig + ")"
}

// Instantiate checks the arguments against the descriptor and builds the
// rule.
func (d *Descriptor) Instantiate(th Theory, args ...plan.Arg) (plan.Plan, error) {
	if len(args) != len(d.Args) {
		return nil, &ArgumentError{
			Rule: d.Name,
			Msg:  fmt.Sprintf("expected %d arguments, got %d", len(d.Args), len(args)),
		}
	}
	for i, spec := range d.Args {
		if args[i].Kind != spec.Kind {
			return nil, &ArgumentError{
				Rule: d.Name,
				Msg:  fmt.Sprintf("argument %s must be a %s, got a %s", spec.Name, spec.Kind, args[i].Kind),
			}
		}
	}
	return d.Build(For(th), args), nil
}

// ApplicableTo reports whether the rule applies to goal. Failures to
// apply are false; anything else is returned.
func (d *Descriptor) ApplicableTo(th Theory, goal *sequent.Sequent) (bool, error) {
	b := For(th)
	if d.Applicable != nil {
		return d.Applicable(b, goal)
	}
	if len(d.Args) > 0 {
		return false, nil
	}
	_, err := d.Build(b, nil).Subgoals(goal)
	return succeeded(err)
}

// Registry is the ordered table of rules of an environment.
type Registry struct {
	order  []*Descriptor
	byName map[string]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Descriptor{}}
}

// Register adds d, replacing any rule of the same name in place.
func (r *Registry) Register(d *Descriptor) {
	name := strcase.ToSnake(d.Name)
	if old, ok := r.byName[name]; ok {
		r.order[slices.Index(r.order, old)] = d
	} else {
		r.order = append(r.order, d)
	}
	r.byName[name] = d
}

// Lookup finds a rule by name; "leftNegation" and "LeftNegation" find
// left_negation.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[strcase.ToSnake(name)]
	return d, ok
}

// All returns the rules in registration order.
func (r *Registry) All() []*Descriptor {
	return slices.Clone(r.order)
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.order)
}

// Standard returns the built-in rules of the named theories, in a fixed
// order.
func Standard(theories ...string) *Registry {
	r := NewRegistry()
	for _, d := range builtins {
		if d.Theory == "" || slices.Contains(theories, d.Theory) {
			r.Register(d)
		}
	}
	return r
}

// succeeded turns the failure of a rule to apply into false. Proof
// structure errors and anything unexpected are returned.
func succeeded(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var (
		na *NotApplicableError
		tm *qtype.TypeMismatch
		me *qterm.MatchError
		be *qterm.BindError
	)
	switch {
	case errors.As(err, &na), errors.As(err, &tm), errors.As(err, &me), errors.As(err, &be):
		return false, nil
	default:
		return false, err
	}
}

func never(Builder, *sequent.Sequent) (bool, error) { return false, nil }

// matches applies when the formula at the front of a side has the form of
// pattern.
func matches(side, pattern string) func(Builder, *sequent.Sequent) (bool, error) {
	return func(b Builder, goal *sequent.Sequent) (bool, error) {
		var err error
		if side == "left" {
			_, err = b.matchLeft(goal, 0, pattern)
		} else {
			_, err = b.matchRight(goal, 0, pattern)
		}
		return succeeded(err)
	}
}

func noArgs(f func(Builder) plan.Plan) func(Builder, []plan.Arg) plan.Plan {
	return func(b Builder, _ []plan.Arg) plan.Plan { return f(b) }
}

func termArg(f func(Builder, qterm.Term) plan.Plan) func(Builder, []plan.Arg) plan.Plan {
	return func(b Builder, args []plan.Arg) plan.Plan { return f(b, args[0].Term) }
}

func intArg(f func(Builder, int) plan.Plan) func(Builder, []plan.Arg) plan.Plan {
	return func(b Builder, args []plan.Arg) plan.Plan { return f(b, args[0].Int) }
}

func stringArg(f func(Builder, string) plan.Plan) func(Builder, []plan.Arg) plan.Plan {
	return func(b Builder, args []plan.Arg) plan.Plan { return f(b, args[0].String) }
}

var (
	witnessArg = []ArgSpec{{Name: "witness", Kind: plan.TermArg}}
	indexArg   = []ArgSpec{{Name: "index", Kind: plan.IntArg}}
	nameArg    = []ArgSpec{{Name: "name", Kind: plan.StringArg}}
)

var builtins = []*Descriptor{
	{
		Name: "assumption", Kind: Placeholder,
		Doc:        "An open goal.",
		Build:      func(Builder, []plan.Arg) plan.Plan { return plan.NewAssumption() },
		Applicable: never,
	},

	// structural
	{Name: "left_permutation", Kind: Primitive, Args: indexArg, Build: intArg(Builder.LeftPermutation), Applicable: never,
		Doc: "Move the left formula at index to the front."},
	{Name: "right_permutation", Kind: Primitive, Args: indexArg, Build: intArg(Builder.RightPermutation), Applicable: never,
		Doc: "Move the right formula at index to the front."},
	{Name: "left_contraction", Kind: Primitive, Build: noArgs(Builder.LeftContraction), Applicable: never,
		Doc: "Duplicate the first left formula."},
	{Name: "right_contraction", Kind: Primitive, Build: noArgs(Builder.RightContraction), Applicable: never,
		Doc: "Duplicate the first right formula."},
	{Name: "left_weakening", Kind: Primitive, Build: noArgs(Builder.LeftWeakening), Applicable: never,
		Doc: "Drop the first left formula."},
	{Name: "right_weakening", Kind: Primitive, Build: noArgs(Builder.RightWeakening), Applicable: never,
		Doc: "Drop the first right formula."},

	// logical
	{Name: "noop", Kind: Primitive, Build: noArgs(Builder.Noop), Applicable: never,
		Doc: "Leave the goal as it is."},
	{Name: "axiom", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.Axiom),
		Doc: "Close a goal whose first formulas agree."},
	{Name: "cut", Kind: Primitive, Theory: "logic", Args: witnessArg, Build: termArg(Builder.Cut),
		Doc: "Prove the witness, then assume it."},
	{Name: "left_negation", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.LeftNegation),
		Doc: "not a on the left becomes a on the right."},
	{Name: "right_negation", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.RightNegation),
		Doc: "not a on the right becomes a on the left."},
	{Name: "left_disjunction", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.LeftDisjunction),
		Doc: "Split on a or b on the left."},
	{Name: "right_disjunction", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.RightDisjunction),
		Doc: "a or b on the right becomes a, b."},
	{Name: "left_universal", Kind: Primitive, Theory: "logic", Args: witnessArg, Build: termArg(Builder.LeftUniversal),
		Applicable: matches("left", "for_all x . phi"),
		Doc:        "Instantiate a universal on the left."},
	{Name: "right_universal", Kind: Primitive, Theory: "logic", Args: witnessArg, Build: termArg(Builder.RightUniversal),
		Applicable: matches("right", "for_all x . phi"),
		Doc:        "Prove a universal on the right for a fresh variable."},
	{Name: "left_schema", Kind: Primitive, Theory: "logic", Args: witnessArg, Build: termArg(Builder.LeftSchema),
		Applicable: matches("left", "schema phi . psi"),
		Doc:        "Instantiate a schema on the left with a predicate."},
	{Name: "left_substitution", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.LeftSubstitution),
		Doc: "Rewrite the first left formula with the equation after it."},
	{Name: "right_substitution", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.RightSubstitution),
		Doc: "Rewrite the first right formula with the first left equation."},
	{Name: "left_symmetry", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.LeftSymmetry),
		Doc: "Flip an equation on the left."},
	{Name: "right_symmetry", Kind: Primitive, Theory: "logic", Build: noArgs(Builder.RightSymmetry),
		Doc: "Flip an equation on the right."},
	{Name: "theorem_cut", Kind: Primitive, Theory: "logic", Args: nameArg, Build: stringArg(Builder.TheoremCut),
		Doc: "Assume a named axiom."},
	{Name: "left_expand", Kind: Primitive, Theory: "logic", Args: nameArg, Build: stringArg(Builder.LeftExpand),
		Doc: "Unfold a definition in the first left formula."},
	{Name: "right_expand", Kind: Primitive, Theory: "logic", Args: nameArg, Build: stringArg(Builder.RightExpand),
		Doc: "Unfold a definition in the first right formula."},

	// compounds
	{Name: "qed", Kind: Compound, Theory: "logic", Build: noArgs(Builder.Qed),
		Doc: "Close a goal with a formula on both sides."},
	{Name: "left_conjunction", Kind: Compound, Theory: "logic", Build: noArgs(Builder.LeftConjunction),
		Doc: "a and b on the left becomes a, b."},
	{Name: "right_conjunction", Kind: Compound, Theory: "logic", Build: noArgs(Builder.RightConjunction),
		Doc: "Prove a and b on the right separately."},
	{Name: "left_implication", Kind: Compound, Theory: "logic", Build: noArgs(Builder.LeftImplication),
		Doc: "Use a implies b on the left: prove a, then assume b."},
	{Name: "right_implication", Kind: Compound, Theory: "logic", Build: noArgs(Builder.RightImplication),
		Doc: "Prove a implies b by assuming a."},
	{Name: "left_bidirectional", Kind: Compound, Theory: "logic", Build: noArgs(Builder.LeftBidirectional),
		Doc: "Use a iff b on the left."},
	{Name: "right_bidirectional", Kind: Compound, Theory: "logic", Build: noArgs(Builder.RightBidirectional),
		Doc: "Prove a iff b in both directions."},
	{Name: "left_existential", Kind: Compound, Theory: "logic", Args: witnessArg, Build: termArg(Builder.LeftExistential),
		Applicable: matches("left", "exists x . phi"),
		Doc:        "Name the object of an existential on the left."},
	{Name: "right_existential", Kind: Compound, Theory: "logic", Args: witnessArg, Build: termArg(Builder.RightExistential),
		Applicable: matches("right", "exists x . phi"),
		Doc:        "Prove an existential on the right with a witness."},
	{Name: "excluded_middle", Kind: Compound, Theory: "logic", Build: noArgs(Builder.ExcludedMiddle),
		Doc: "Prove a or not a."},

	// set theory
	{Name: "right_extension", Kind: Compound, Theory: "set", Args: witnessArg, Build: termArg(Builder.RightExtension),
		Applicable: matches("right", "a = b"),
		Doc:        "Prove two sets equal by extensionality."},
	{Name: "left_subset", Kind: Compound, Theory: "set", Args: witnessArg, Build: termArg(Builder.LeftSubset),
		Applicable: matches("left", "a subset b"),
		Doc:        "Use a subset b on the left for a member."},
	{Name: "right_subset", Kind: Compound, Theory: "set", Args: witnessArg, Build: termArg(Builder.RightSubset),
		Applicable: matches("right", "a subset b"),
		Doc:        "Prove a subset b for a fresh member."},
	{Name: "left_powerset", Kind: Compound, Theory: "set", Build: noArgs(Builder.LeftPowerset),
		Doc: "a in powerset(b) on the left becomes a subset b."},
	{Name: "right_powerset", Kind: Compound, Theory: "set", Build: noArgs(Builder.RightPowerset),
		Doc: "Prove a in powerset(b) by proving a subset b."},
	{Name: "left_separation", Kind: Compound, Theory: "set", Build: noArgs(Builder.LeftSeparation),
		Doc: "Membership in a separation on the left."},
	{Name: "right_separation", Kind: Compound, Theory: "set", Build: noArgs(Builder.RightSeparation),
		Doc: "Prove membership in a separation."},
}
