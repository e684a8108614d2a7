package cheqed

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/pkg/errors"

	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/rules"
)

// EvalError is returned for plan text that does not describe a plan.
type EvalError struct {
	Pos scanner.Position
	Msg string
	Err error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan error at %d:%d: %s: %s", e.Pos.Line, e.Pos.Column, e.Msg, e.Err)
	}
	return fmt.Sprintf("plan error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Evaluate reads plan text such as
//
//	branch(left_disjunction(), axiom(), right_universal(`x`))
//
// Arguments are integers, "strings", `terms`, or nested rule calls;
// branch and sequence combine plans.
func (env *Environment) Evaluate(text string) (plan.Plan, error) {
	ev := &evaluator{env: env}
	ev.s.Init(strings.NewReader(text))
	ev.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings | scanner.ScanRawStrings
	ev.s.Error = func(s *scanner.Scanner, msg string) {
		if ev.err == nil {
			ev.err = &EvalError{Pos: s.Pos(), Msg: msg}
		}
	}
	ev.next()

	p, err := ev.call()
	if err != nil {
		return nil, err
	}
	if ev.tok != scanner.EOF {
		return nil, ev.errorf("unexpected %s after plan", ev.s.TokenText())
	}
	if ev.err != nil {
		return nil, ev.err
	}
	slog.Debug("evaluated plan", "text", text)
	return p, nil
}

type evaluator struct {
	env *Environment
	s   scanner.Scanner
	tok rune
	err error
}

// value is a parsed argument: a rule argument or a nested plan.
type value struct {
	arg  plan.Arg
	plan plan.Plan
}

func (ev *evaluator) next() {
	ev.tok = ev.s.Scan()
}

func (ev *evaluator) errorf(format string, args ...any) error {
	if ev.err != nil {
		return ev.err
	}
	return &EvalError{Pos: ev.s.Position, Msg: fmt.Sprintf(format, args...)}
}

func (ev *evaluator) expect(tok rune) error {
	if ev.tok != tok {
		if ev.tok == scanner.EOF {
			return ev.errorf("expected %s, got end of input", scanner.TokenString(tok))
		}
		return ev.errorf("expected %s, got %s", scanner.TokenString(tok), ev.s.TokenText())
	}
	ev.next()
	return nil
}

func (ev *evaluator) call() (plan.Plan, error) {
	if ev.tok != scanner.Ident {
		return nil, ev.errorf("expected a rule name")
	}
	name, pos := ev.s.TokenText(), ev.s.Position
	ev.next()
	if err := ev.expect('('); err != nil {
		return nil, err
	}

	var args []value
	for ev.tok != ')' {
		arg, err := ev.arg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if ev.tok != ',' {
			break
		}
		ev.next()
	}
	if err := ev.expect(')'); err != nil {
		return nil, err
	}

	switch name {
	case "branch", "sequence":
		plans := make([]plan.Plan, len(args))
		for i, arg := range args {
			if arg.plan == nil {
				return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("%s takes plans, argument %d is a %s", name, i+1, arg.arg.Kind)}
			}
			plans[i] = arg.plan
		}
		if len(plans) == 0 {
			return nil, &EvalError{Pos: pos, Msg: name + " needs at least one plan"}
		}
		if name == "sequence" {
			return plan.Sequence(plans...), nil
		}
		return plan.NewBranch(plans[0], plans[1:]...), nil
	}

	d, ok := ev.env.Rule(name)
	if !ok {
		return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("unknown rule %s", name)}
	}
	ruleArgs := make([]plan.Arg, len(args))
	for i, arg := range args {
		if arg.plan != nil {
			return nil, &EvalError{Pos: pos, Msg: fmt.Sprintf("%s does not take plans", name)}
		}
		ruleArgs[i] = arg.arg
	}
	p, err := d.Instantiate(ev.env, ruleArgs...)
	if err != nil {
		var ae *rules.ArgumentError
		if errors.As(err, &ae) {
			return nil, &EvalError{Pos: pos, Msg: "bad arguments", Err: err}
		}
		return nil, err
	}
	return p, nil
}

func (ev *evaluator) arg() (value, error) {
	pos, text := ev.s.Position, ev.s.TokenText()
	switch ev.tok {
	case scanner.Int:
		ev.next()
		i, err := strconv.Atoi(text)
		if err != nil {
			return value{}, &EvalError{Pos: pos, Msg: "bad integer", Err: err}
		}
		return value{arg: plan.Int(i)}, nil
	case scanner.String:
		ev.next()
		s, err := strconv.Unquote(text)
		if err != nil {
			return value{}, &EvalError{Pos: pos, Msg: "bad string", Err: err}
		}
		return value{arg: plan.String(s)}, nil
	case scanner.RawString:
		ev.next()
		t, err := ev.env.Parse(strings.Trim(text, "`"))
		if err != nil {
			return value{}, &EvalError{Pos: pos, Msg: "bad term", Err: err}
		}
		return value{arg: plan.Term(t)}, nil
	case scanner.Ident:
		p, err := ev.call()
		if err != nil {
			return value{}, err
		}
		return value{plan: p}, nil
	default:
		return value{}, ev.errorf("unexpected %s", text)
	}
}
