// Package cheqed assembles theories into an Environment: the parser and
// printer for their syntax, their definitions and axioms, and the rules
// that apply to them.
package cheqed

import (
	"fmt"
	"log/slog"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/parser"
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/printer"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/rules"
	"github.com/vito/cheqed/pkg/sequent"
	"github.com/vito/cheqed/pkg/syntax"
)

// DefaultTheories are loaded when nothing else is configured.
var DefaultTheories = []string{"logic", "set"}

// patternCacheSize bounds the parsed rule patterns kept per environment.
const patternCacheSize = 256

// DefinitionError is returned for a definition not of the form
// "name = value".
type DefinitionError struct {
	Text string
	Msg  string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid definition %q: %s", e.Text, e.Msg)
}

// Axiom is a named theory axiom.
type Axiom struct {
	Name    string
	Formula qterm.Term
}

// Environment is a loaded set of theories. It is read-only once built and
// safe to share.
type Environment struct {
	theories    []string
	syntax      *syntax.Syntax
	parser      *parser.Parser
	printer     *printer.Printer
	constants   []*qterm.Constant
	definitions []*rules.Definition
	axioms      []Axiom
	registry    *rules.Registry
	patterns    *lru.Cache[string, qterm.Term]
}

var _ rules.Theory = (*Environment)(nil)

// Load builds an environment from the built-in theories.
func Load(theories ...string) (*Environment, error) {
	return NewLoader().Load(theories...)
}

// Load builds an environment from the named theories.
func (l *Loader) Load(theories ...string) (*Environment, error) {
	decls, err := l.Declarations(theories...)
	if err != nil {
		return nil, err
	}
	return New(decls)
}

// New builds an environment from declarations.
func New(decls *Declarations) (*Environment, error) {
	logger := slog.With("theories", decls.Theories)

	words := []syntax.Word{
		syntax.Type{Name: "obj", Type: qtype.Obj()},
		syntax.Type{Name: "bool", Type: qtype.Bool()},
	}
	for _, name := range decls.Types {
		words = append(words, syntax.Type{Name: name, Type: qtype.Const(name)})
	}

	// constant signatures are read with a parser that only knows types
	bootSyntax, err := syntax.New(words...)
	if err != nil {
		return nil, err
	}
	boot := parser.New(bootSyntax)

	env := &Environment{
		theories: decls.Theories,
	}
	byName := map[string]*qterm.Constant{}
	for _, sig := range decls.Constants {
		atom, err := boot.Parse(sig)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s", sig)
		}
		var c *qterm.Constant
		switch x := atom.(type) {
		case *qterm.Variable:
			c = qterm.NewConstant(x.Name, x.QType)
		case *qterm.Constant:
			c = x
		default:
			return nil, errors.Errorf("constant %s: expected name:type", sig)
		}
		if _, dup := byName[c.Name]; !dup {
			env.constants = append(env.constants, c)
		}
		byName[c.Name] = c
	}
	lookup := func(kind, name string) (*qterm.Constant, error) {
		c, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("%s %s is not a declared constant", kind, name)
		}
		return c, nil
	}

	for _, op := range decls.Operators {
		c, err := lookup("operator", op.Name)
		if err != nil {
			return nil, err
		}
		assoc, err := syntax.ParseAssoc(op.Assoc)
		if err != nil {
			return nil, errors.Wrapf(err, "operator %s", op.Name)
		}
		words = append(words, syntax.Operator{Constant: c, Arity: op.Arity, Assoc: assoc, Precedence: op.Precedence})
	}
	for _, name := range decls.Binders {
		c, err := lookup("binder", name)
		if err != nil {
			return nil, err
		}
		words = append(words, syntax.Binder{Constant: c})
	}
	for _, sb := range decls.SetBuilders {
		c, err := lookup("set builder", sb.Constant)
		if err != nil {
			return nil, err
		}
		words = append(words, syntax.SetBuilder{Constant: c, Member: sb.Member})
	}

	env.syntax, err = syntax.New(words...)
	if err != nil {
		return nil, err
	}
	env.parser = parser.New(env.syntax)
	env.printer, err = printer.New(env.syntax)
	if err != nil {
		return nil, err
	}
	env.patterns, err = lru.New[string, qterm.Term](patternCacheSize)
	if err != nil {
		return nil, err
	}

	for _, text := range decls.Definitions {
		def, err := env.definition(text)
		if err != nil {
			return nil, err
		}
		env.definitions = append(env.definitions, def)
	}

	for _, ax := range decls.Axioms {
		formula, err := env.parser.Parse(ax.Formula)
		if err != nil {
			return nil, errors.Wrapf(err, "axiom %s", ax.Name)
		}
		env.axioms = append(env.axioms, Axiom{Name: ax.Name, Formula: formula})
	}

	env.registry = rules.Standard(decls.Theories...)

	logger.Debug("loaded environment",
		"constants", len(env.constants),
		"definitions", len(env.definitions),
		"axioms", len(env.axioms),
		"rules", env.registry.Len())

	return env, nil
}

// definition parses "name = value".
func (env *Environment) definition(text string) (*rules.Definition, error) {
	eqn, err := env.parser.Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "definition %q", text)
	}
	op, args := qterm.Uncurry(eqn)
	if qterm.Name(op) != "=" || len(args) != 2 {
		return nil, &DefinitionError{Text: text, Msg: "expected name = value"}
	}
	if _, ok := op.(*qterm.Constant); !ok {
		return nil, &DefinitionError{Text: text, Msg: "= is not the equality constant"}
	}
	if !qterm.IsAtom(args[0]) {
		return nil, &DefinitionError{Text: text, Msg: "left-hand side must be a name"}
	}
	return &rules.Definition{
		Name:     qterm.Name(args[0]),
		Atom:     args[0],
		Value:    args[1],
		Equation: eqn,
	}, nil
}

// Theories returns the names the environment was loaded from.
func (env *Environment) Theories() []string { return slices.Clone(env.theories) }

func (env *Environment) Syntax() *syntax.Syntax { return env.syntax }

func (env *Environment) Parse(text string) (qterm.Term, error) {
	return env.parser.Parse(text)
}

func (env *Environment) ParseType(text string) (qtype.Type, error) {
	return env.parser.ParseType(text)
}

// ParseSequent parses "a, b |- c".
func (env *Environment) ParseSequent(text string) (*sequent.Sequent, error) {
	return env.parser.ParseSequent(text)
}

func (env *Environment) PrintTerm(t qterm.Term) string {
	return env.printer.Term(t)
}

func (env *Environment) PrintSequent(s *sequent.Sequent) string {
	return env.printer.Sequent(s)
}

// PrintProof renders a plan in the text form Evaluate reads back.
func (env *Environment) PrintProof(p plan.Plan) string {
	return p.Display(env.printer)
}

// Pattern parses a rule pattern, caching the result.
func (env *Environment) Pattern(text string) (qterm.Term, error) {
	if t, ok := env.patterns.Get(text); ok {
		return t, nil
	}
	t, err := env.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	env.patterns.Add(text, t)
	return t, nil
}

func (env *Environment) Definition(name string) (*rules.Definition, bool) {
	for _, d := range env.definitions {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

func (env *Environment) Axiom(name string) (qterm.Term, bool) {
	for _, ax := range env.axioms {
		if ax.Name == name {
			return ax.Formula, true
		}
	}
	return nil, false
}

func (env *Environment) Constants() []*qterm.Constant { return slices.Clone(env.constants) }

func (env *Environment) Definitions() []*rules.Definition { return slices.Clone(env.definitions) }

func (env *Environment) Axioms() []Axiom { return slices.Clone(env.axioms) }

func (env *Environment) Rules() []*rules.Descriptor { return env.registry.All() }

// Rule looks up a rule by name.
func (env *Environment) Rule(name string) (*rules.Descriptor, bool) {
	return env.registry.Lookup(name)
}

// ApplicableRules lists the rules that apply to goal, in registry order.
// A rule failing to apply is not an error; a malformed proof is.
func (env *Environment) ApplicableRules(goal *sequent.Sequent) ([]*rules.Descriptor, error) {
	var applicable []*rules.Descriptor
	for _, d := range env.registry.All() {
		ok, err := d.ApplicableTo(env, goal)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %s", d.Name)
		}
		if ok {
			applicable = append(applicable, d)
		}
	}
	slog.Debug("applicable rules", "goal", env.PrintSequent(goal), "count", len(applicable))
	return applicable, nil
}

// Start returns the plan of a goal nothing has been done to.
func (env *Environment) Start(*sequent.Sequent) plan.Plan {
	return plan.NewAssumption()
}

// AssumptionError is returned when advancing a plan at an open goal it
// does not have.
type AssumptionError struct {
	Index int
	Open  int
}

func (e *AssumptionError) Error() string {
	return fmt.Sprintf("no open goal %d; the plan has %d", e.Index, e.Open)
}

// Advance replaces the k-th open goal of p with the rule in ruleText and
// normalizes the result against goal.
func (env *Environment) Advance(p plan.Plan, goal *sequent.Sequent, k int, ruleText string) (plan.Plan, error) {
	open := p.Assumptions()
	if k < 0 || k >= len(open) {
		return nil, &AssumptionError{Index: k, Open: len(open)}
	}
	sub, err := env.Evaluate(ruleText)
	if err != nil {
		return nil, err
	}
	next, err := p.Replace(open[k], sub).Normalize(goal)
	if err != nil {
		return nil, err
	}
	slog.Debug("advanced plan", "assumption", open[k].ID, "rule", ruleText, "open", len(next.Assumptions()))
	return next, nil
}

// Subgoals returns the goals p leaves open.
func (env *Environment) Subgoals(p plan.Plan, goal *sequent.Sequent) ([]*sequent.Sequent, error) {
	return p.Subgoals(goal)
}
