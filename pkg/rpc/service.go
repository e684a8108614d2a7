// Package rpc serves an Environment over JSON-RPC 2.0. Plans travel in
// their text form, with assumption() marking open goals, so the service
// keeps no state between requests.
package rpc

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/cheqed"
	"github.com/vito/cheqed/pkg/parser"
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/printer"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/rules"
	"github.com/vito/cheqed/pkg/sequent"
)

// Error codes beyond the JSON-RPC reserved range.
const (
	NotApplicable  jrpc2.Code = -32001
	ProofStructure jrpc2.Code = -32002
)

// Service answers requests against environments from a cache.
type Service struct {
	cache    *cheqed.Cache
	theories []string
}

// NewService creates a service that loads theories for requests that do
// not name their own.
func NewService(cache *cheqed.Cache, theories []string) *Service {
	return &Service{cache: cache, theories: theories}
}

// Assigner maps method names to handlers.
func (s *Service) Assigner() handler.Map {
	return handler.Map{
		"parse":            s.handleParse,
		"print_term":       s.handlePrintTerm,
		"print_proof":      s.handlePrintProof,
		"evaluate":         s.handleEvaluate,
		"rules":            s.handleRules,
		"applicable_rules": s.handleApplicableRules,
		"start":            s.handleStart,
		"advance":          s.handleAdvance,
		"trace":            s.handleTrace,
		"theory":           s.handleTheory,
	}
}

// Env selects the theories of a request.
type Env struct {
	Theories []string `json:"theories,omitempty"`
}

func (s *Service) env(e Env) (*cheqed.Environment, error) {
	theories := e.Theories
	if len(theories) == 0 {
		theories = s.theories
	}
	env, err := s.cache.Get(theories...)
	if err != nil {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "loading theories: %v", err)
	}
	return env, nil
}

// request unmarshals the parameters of req into params.
func request(req *jrpc2.Request, params any) error {
	if !req.HasParams() {
		return jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}
	return req.UnmarshalParams(params)
}

// failure converts the errors of the proof engine into JSON-RPC errors.
func failure(err error) error {
	var (
		se  *parser.SyntaxError
		ee  *cheqed.EvalError
		ae  *cheqed.AssumptionError
		na  *rules.NotApplicableError
		pse *plan.ProofStructureError
	)
	switch {
	case errors.As(err, &se), errors.As(err, &ee), errors.As(err, &ae):
		return jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
	case errors.As(err, &na):
		return jrpc2.Errorf(NotApplicable, "%v", err)
	case errors.As(err, &pse):
		return jrpc2.Errorf(ProofStructure, "%v", err)
	default:
		return err
	}
}

type ParseParams struct {
	Env
	Text string `json:"text"`
	// Sequent parses "a |- b" instead of a single term.
	Sequent bool `json:"sequent,omitempty"`
}

type ParseResult struct {
	Text string `json:"text"`
	// Free lists the free variables with their inferred types.
	Free []string `json:"free"`
}

func (s *Service) handleParse(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params ParseParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, err := s.env(params.Env)
	if err != nil {
		return nil, err
	}

	var (
		text string
		vars qterm.VarSet
	)
	if params.Sequent {
		seq, err := env.ParseSequent(params.Text)
		if err != nil {
			return nil, failure(err)
		}
		text, vars = env.PrintSequent(seq), seq.FreeVariables()
	} else {
		term, err := env.Parse(params.Text)
		if err != nil {
			return nil, failure(err)
		}
		text, vars = env.PrintTerm(term), qterm.FreeVariables(term)
	}

	res := &ParseResult{Text: text, Free: []string{}}
	for _, v := range vars.Sorted() {
		res.Free = append(res.Free, printer.Typed(v))
	}
	return res, nil
}

type TextParams struct {
	Env
	Text string `json:"text"`
}

// handlePrintTerm reads a term and prints it in canonical form.
func (s *Service) handlePrintTerm(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params TextParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, err := s.env(params.Env)
	if err != nil {
		return nil, err
	}
	term, err := env.Parse(params.Text)
	if err != nil {
		return nil, failure(err)
	}
	return env.PrintTerm(term), nil
}

// handlePrintProof reads plan text and prints it in canonical form.
func (s *Service) handlePrintProof(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params TextParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, err := s.env(params.Env)
	if err != nil {
		return nil, err
	}
	p, err := env.Evaluate(params.Text)
	if err != nil {
		return nil, failure(err)
	}
	return env.PrintProof(p), nil
}

type EvaluateParams struct {
	Env
	Plan string `json:"plan"`
}

type PlanResult struct {
	Plan string `json:"plan"`
	// Outline is the plan one atomic rule per line.
	Outline string `json:"outline"`
}

func (s *Service) handleEvaluate(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params EvaluateParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, err := s.env(params.Env)
	if err != nil {
		return nil, err
	}
	p, err := env.Evaluate(params.Plan)
	if err != nil {
		return nil, failure(err)
	}
	return &PlanResult{Plan: env.PrintProof(p), Outline: env.Outline(p)}, nil
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Signature string `json:"signature"`
	Theory    string `json:"theory,omitempty"`
	Doc       string `json:"doc,omitempty"`
}

func ruleInfos(ds []*rules.Descriptor) []RuleInfo {
	infos := make([]RuleInfo, len(ds))
	for i, d := range ds {
		infos[i] = RuleInfo{
			Name:      d.Name,
			Kind:      string(d.Kind),
			Signature: d.Signature(),
			Theory:    d.Theory,
			Doc:       d.Doc,
		}
	}
	return infos
}

func (s *Service) handleRules(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params Env
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}
	env, err := s.env(params)
	if err != nil {
		return nil, err
	}
	return ruleInfos(env.Rules()), nil
}

type GoalParams struct {
	Env
	Goal string `json:"goal"`
}

func (s *Service) handleApplicableRules(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params GoalParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, goal, err := s.goal(params)
	if err != nil {
		return nil, err
	}
	applicable, err := env.ApplicableRules(goal)
	if err != nil {
		return nil, failure(err)
	}
	return ruleInfos(applicable), nil
}

func (s *Service) goal(params GoalParams) (*cheqed.Environment, *sequent.Sequent, error) {
	env, err := s.env(params.Env)
	if err != nil {
		return nil, nil, err
	}
	goal, err := env.ParseSequent(params.Goal)
	if err != nil {
		return nil, nil, failure(err)
	}
	return env, goal, nil
}

// ProofState is a plan together with the goals it leaves open.
type ProofState struct {
	Plan string   `json:"plan"`
	Open []string `json:"open"`
}

func state(env *cheqed.Environment, p plan.Plan, goal *sequent.Sequent) (*ProofState, error) {
	open, err := env.Subgoals(p, goal)
	if err != nil {
		return nil, failure(err)
	}
	st := &ProofState{Plan: env.PrintProof(p), Open: []string{}}
	for _, g := range open {
		st.Open = append(st.Open, env.PrintSequent(g))
	}
	return st, nil
}

func (s *Service) handleStart(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params GoalParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, goal, err := s.goal(params)
	if err != nil {
		return nil, err
	}
	return state(env, env.Start(goal), goal)
}

type AdvanceParams struct {
	GoalParams
	Plan  string `json:"plan"`
	Index int    `json:"index"`
	Rule  string `json:"rule"`
}

func (s *Service) handleAdvance(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params AdvanceParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, goal, err := s.goal(params.GoalParams)
	if err != nil {
		return nil, err
	}
	p, err := env.Evaluate(params.Plan)
	if err != nil {
		return nil, failure(err)
	}
	next, err := env.Advance(p, goal, params.Index, params.Rule)
	if err != nil {
		return nil, failure(err)
	}
	slog.DebugContext(ctx, "advanced", "goal", params.Goal, "rule", params.Rule)
	return state(env, next, goal)
}

type TraceParams struct {
	GoalParams
	Plan string `json:"plan"`
}

type TraceLine struct {
	Depth int    `json:"depth"`
	Goal  string `json:"goal"`
	Rule  string `json:"rule"`
}

type TraceResult struct {
	Lines    []TraceLine `json:"lines"`
	Open     []string    `json:"open"`
	Complete bool        `json:"complete"`
	Text     string      `json:"text"`
}

func (s *Service) handleTrace(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params TraceParams
	if err := request(req, &params); err != nil {
		return nil, err
	}
	env, goal, err := s.goal(params.GoalParams)
	if err != nil {
		return nil, err
	}
	p, err := env.Evaluate(params.Plan)
	if err != nil {
		return nil, failure(err)
	}
	tr, err := env.Trace(p, goal)
	if err != nil {
		return nil, failure(err)
	}

	res := &TraceResult{
		Lines:    []TraceLine{},
		Open:     []string{},
		Complete: tr.Complete(),
		Text:     env.RenderTrace(tr),
	}
	for _, line := range tr.Lines {
		res.Lines = append(res.Lines, TraceLine{
			Depth: line.Depth,
			Goal:  env.PrintSequent(line.Goal),
			Rule:  env.PrintProof(line.Plan),
		})
	}
	for _, g := range tr.Open {
		res.Open = append(res.Open, env.PrintSequent(g))
	}
	return res, nil
}

// TheoryResult lists the declarations of the loaded theories.
type TheoryResult struct {
	Theories    []string          `json:"theories"`
	Constants   map[string]string `json:"constants"`
	Definitions map[string]string `json:"definitions"`
	Axioms      map[string]string `json:"axioms"`
}

func (s *Service) handleTheory(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params Env
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}
	env, err := s.env(params)
	if err != nil {
		return nil, err
	}

	res := &TheoryResult{
		Theories:    env.Theories(),
		Constants:   map[string]string{},
		Definitions: map[string]string{},
		Axioms:      map[string]string{},
	}
	for _, c := range env.Constants() {
		res.Constants[c.Name] = printer.Type(c.QType)
	}
	for _, d := range env.Definitions() {
		res.Definitions[d.Name] = env.PrintTerm(d.Value)
	}
	for _, ax := range env.Axioms() {
		res.Axioms[ax.Name] = env.PrintTerm(ax.Formula)
	}
	return res, nil
}
