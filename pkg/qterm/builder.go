package qterm

import (
	"github.com/vito/cheqed/pkg/qtype"
)

// NewCombination applies op to arg, inferring types on the way: an operator
// whose type is still a variable is narrowed to a function from the
// operand's type, the operator's argument type is unified with the
// operand's type, and same-named free variables across both sides are
// forced to share one type.
func NewCombination(op, arg Term) (Term, error) {
	if qtype.IsVar(op.Type()) {
		tu := qtype.NewUnifier()
		if err := tu.Unify(op.Type(), qtype.Fun(arg.Type(), qtype.Fresh())); err != nil {
			return nil, err
		}
		op = ApplyTypes(op, tu)
	}

	fn, ok := op.Type().(*qtype.Function)
	if !ok {
		return nil, &qtype.TypeMismatch{A: op.Type(), B: qtype.Fun(arg.Type(), qtype.Fresh())}
	}

	tu := qtype.NewUnifier()
	if err := tu.Unify(fn.Arg, arg.Type()); err != nil {
		return nil, err
	}
	op, arg = ApplyTypes(op, tu), ApplyTypes(arg, tu)

	unified, err := UnifyTypes(op, arg)
	if err != nil {
		return nil, err
	}
	op, arg = unified[0], unified[1]

	fn, ok = op.Type().(*qtype.Function)
	if !ok || !fn.Arg.Eq(arg.Type()) {
		return nil, &qtype.TypeMismatch{A: op.Type(), B: arg.Type()}
	}

	return &Combination{Operator: op, Operand: arg}, nil
}

// NewAbstraction binds bound within body. The bound term must be a
// variable; its type is unified with every free occurrence of its name in
// the body.
func NewAbstraction(bound, body Term) (Term, error) {
	if _, ok := bound.(*Variable); !ok {
		return nil, &BindError{Bound: bound}
	}
	unified, err := UnifyTypes(bound, body)
	if err != nil {
		return nil, err
	}
	return &Abstraction{Bound: unified[0].(*Variable), Body: unified[1]}, nil
}

// UnaryOp builds op(a).
func UnaryOp(op, a Term) (Term, error) {
	return NewCombination(op, a)
}

// BinaryOp builds op(a)(b).
func BinaryOp(op, a, b Term) (Term, error) {
	left, err := NewCombination(op, a)
	if err != nil {
		return nil, err
	}
	return NewCombination(left, b)
}

// Binder builds op(\x.body).
func Binder(op, x, body Term) (Term, error) {
	abs, err := NewAbstraction(x, body)
	if err != nil {
		return nil, err
	}
	return NewCombination(op, abs)
}

// Apply curries args onto op from left to right.
func Apply(op Term, args ...Term) (Term, error) {
	t := op
	for _, arg := range args {
		var err error
		t, err = NewCombination(t, arg)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}
