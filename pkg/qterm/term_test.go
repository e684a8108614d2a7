package qterm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/cheqed/pkg/qtype"
)

var (
	typeA = qtype.Const("a")
	typeB = qtype.Const("b")
)

func mustComb(t *testing.T, op, arg Term) Term {
	t.Helper()
	c, err := NewCombination(op, arg)
	require.NoError(t, err)
	return c
}

func mustAbs(t *testing.T, bound, body Term) Term {
	t.Helper()
	a, err := NewAbstraction(bound, body)
	require.NoError(t, err)
	return a
}

func TestAtomEquality(t *testing.T) {
	assert.True(t, NewVariable("a", typeA).Eq(NewVariable("a", typeA)))
	assert.False(t, NewVariable("a", typeA).Eq(NewVariable("b", typeA)))
	assert.False(t, NewVariable("a", typeA).Eq(NewVariable("a", typeB)))
	assert.False(t, NewConstant("a", typeA).Eq(NewVariable("a", typeA)))
	assert.NotEqual(t, NewConstant("a", typeA).Key(), NewVariable("a", typeA).Key())
}

func TestCombinationConstructor(t *testing.T) {
	t.Run("operator is not a function", func(t *testing.T) {
		_, err := NewCombination(NewConstant("a", typeA), NewConstant("b", typeB))
		var tm *qtype.TypeMismatch
		require.True(t, errors.As(err, &tm))
	})

	t.Run("operand has the wrong type", func(t *testing.T) {
		_, err := NewCombination(NewConstant("a", qtype.Fun(typeA, typeB)), NewConstant("d", typeB))
		var tm *qtype.TypeMismatch
		require.True(t, errors.As(err, &tm))
	})

	t.Run("operator type is narrowed", func(t *testing.T) {
		f := NewVariable("f", qtype.Fresh())
		c := mustComb(t, f, NewVariable("x", qtype.Obj()))
		op := c.(*Combination).Operator
		fn, ok := op.Type().(*qtype.Function)
		require.True(t, ok)
		assert.True(t, fn.Arg.Eq(qtype.Obj()))
		assert.True(t, qtype.IsVar(c.Type()))
	})

	t.Run("operand type is narrowed", func(t *testing.T) {
		not := NewConstant("not", qtype.Fun(qtype.Bool(), qtype.Bool()))
		c := mustComb(t, not, NewVariable("a", qtype.Fresh()))
		assert.True(t, c.(*Combination).Operand.Eq(NewVariable("a", qtype.Bool())))
		assert.True(t, c.Type().Eq(qtype.Bool()))
	})

	t.Run("same-named variables share a type", func(t *testing.T) {
		v := qtype.Fresh()
		or := NewConstant("or", qtype.Fun(qtype.Bool(), qtype.Fun(qtype.Bool(), qtype.Bool())))
		left := mustComb(t, or, NewVariable("a", qtype.Bool()))
		c := mustComb(t, left, NewVariable("a", v))
		fv := FreeVariables(c)
		assert.Len(t, fv, 1)
		assert.True(t, fv.Contains(NewVariable("a", qtype.Bool())))
	})

	t.Run("conflicting same-named variables", func(t *testing.T) {
		f := NewVariable("f", qtype.Fun(qtype.Obj(), qtype.Bool()))
		_, err := NewCombination(mustComb(t, NewConstant("g", qtype.Fun(qtype.Bool(), qtype.Fun(qtype.Obj(), qtype.Bool()))), mustComb(t, f, NewVariable("x", qtype.Obj()))), NewVariable("f", qtype.Obj()))
		var tm *qtype.TypeMismatch
		require.True(t, errors.As(err, &tm))
	})
}

func TestAbstractionConstructor(t *testing.T) {
	_, err := NewAbstraction(NewConstant("a", typeA), NewConstant("b", typeA))
	var be *BindError
	require.True(t, errors.As(err, &be))

	x := NewVariable("x", qtype.Obj())
	abs := mustAbs(t, x, NewVariable("x", qtype.Fresh()))
	assert.True(t, abs.Type().Eq(qtype.Fun(qtype.Obj(), qtype.Obj())))
}

func TestFreeVariables(t *testing.T) {
	assert.Empty(t, FreeVariables(NewConstant("a", typeA)))

	a := NewVariable("a", typeA)
	assert.True(t, FreeVariables(a).Contains(a))

	fa := NewVariable("a", qtype.Fun(typeA, typeA))
	comb := mustComb(t, fa, NewConstant("b", typeA))
	assert.Len(t, FreeVariables(comb), 1)
	assert.True(t, FreeVariables(comb).Contains(fa))

	assert.Empty(t, FreeVariables(&Abstraction{Bound: a, Body: a}))

	b := NewVariable("b", typeA)
	assert.True(t, FreeVariables(&Abstraction{Bound: a, Body: b}).Contains(b))

	// a different type makes a different variable
	ab := NewVariable("a", typeB)
	assert.True(t, FreeVariables(&Abstraction{Bound: a, Body: ab}).Contains(ab))
}

func TestAtoms(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	f := NewConstant("f", qtype.Fun(qtype.Obj(), qtype.Obj()))
	abs := mustAbs(t, x, mustComb(t, f, x))
	atoms := Atoms(abs)
	assert.Len(t, atoms, 2)
	assert.Contains(t, atoms, x.Key())
	assert.Contains(t, atoms, f.Key())
}

func TestSubstituteAtom(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	y := NewVariable("y", qtype.Obj())
	got, err := Substitute(x, y, x)
	require.NoError(t, err)
	assert.True(t, got.Eq(y))

	got, err = Substitute(y, y, x)
	require.NoError(t, err)
	assert.True(t, got.Eq(y))
}

func TestSubstituteShadowed(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	y := NewVariable("y", qtype.Obj())
	phi := NewVariable("phi", qtype.Fun(qtype.Obj(), qtype.Bool()))

	abs := mustAbs(t, x, mustComb(t, phi, x))
	got, err := Substitute(abs, y, x)
	require.NoError(t, err)
	assert.True(t, got.Eq(abs))
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	y := NewVariable("y", qtype.Obj())
	phi := NewVariable("phi", qtype.Fun(qtype.Obj(), qtype.Bool()))

	// \x . phi(y), then put x where y was
	abs := mustAbs(t, x, mustComb(t, phi, y))
	got, err := Substitute(abs, x, y)
	require.NoError(t, err)

	res, ok := got.(*Abstraction)
	require.True(t, ok)
	assert.NotEqual(t, "x", res.Bound.Name)
	assert.Equal(t, "x1", res.Bound.Name)

	// the free x stays free, the renamed binder binds nothing
	expected := mustAbs(t, NewVariable("x1", qtype.Obj()), mustComb(t, phi, x))
	assert.True(t, got.Eq(expected), "%s", got)
	assert.True(t, FreeVariables(got).Contains(x))
}

func TestSubstituteRenamesPastTakenNames(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	x1 := NewVariable("x1", qtype.Obj())
	y := NewVariable("y", qtype.Obj())
	r := NewVariable("r", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Bool()))))

	body, err := Apply(r, x, x1, y)
	require.NoError(t, err)
	abs := mustAbs(t, x, body)

	got, err := Substitute(abs, x, y)
	require.NoError(t, err)
	assert.Equal(t, "x2", got.(*Abstraction).Bound.Name)
}

func TestSubstituteBetaReduces(t *testing.T) {
	x := NewVariable("x", qtype.Obj())
	a := NewVariable("a", qtype.Obj())
	f := NewVariable("f", qtype.Fun(qtype.Obj(), qtype.Bool()))
	p := NewConstant("p", qtype.Fun(qtype.Obj(), qtype.Bool()))

	// f(a)[f := \x . p(x)] reduces to p(a)
	lambda := mustAbs(t, x, mustComb(t, p, x))
	got, err := Substitute(mustComb(t, f, a), lambda, f)
	require.NoError(t, err)
	assert.True(t, got.Eq(mustComb(t, p, a)), "%s", got)
}

func TestBetaReduce(t *testing.T) {
	x := NewVariable("x", qtype.Bool())
	not := NewConstant("not", qtype.Fun(qtype.Bool(), qtype.Bool()))
	b := NewVariable("b", qtype.Bool())

	redex := &Combination{Operator: mustAbs(t, x, mustComb(t, not, x)), Operand: b}
	got, err := BetaReduce(redex)
	require.NoError(t, err)
	assert.True(t, got.Eq(mustComb(t, not, b)))

	same, err := BetaReduce(b)
	require.NoError(t, err)
	assert.Same(t, b, same)
}

func TestUnifyTypes(t *testing.T) {
	v := qtype.Fresh()
	a1 := NewVariable("a", v)
	a2 := NewVariable("a", qtype.Obj())
	out, err := UnifyTypes(a1, a2)
	require.NoError(t, err)
	assert.True(t, out[0].Eq(a2))
	assert.True(t, out[1].Eq(a2))

	_, err = UnifyTypes(NewVariable("a", qtype.Obj()), NewVariable("a", qtype.Bool()))
	var tm *qtype.TypeMismatch
	require.True(t, errors.As(err, &tm))

	// bound variables are not constrained
	x := NewVariable("x", qtype.Bool())
	abs := &Abstraction{Bound: x, Body: x}
	_, err = UnifyTypes(abs, NewVariable("x", qtype.Obj()))
	require.NoError(t, err)
}

func TestUncurry(t *testing.T) {
	h := NewVariable("h", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Obj())))
	x := NewVariable("x", qtype.Obj())
	y := NewVariable("y", qtype.Obj())
	c, err := Apply(h, x, y)
	require.NoError(t, err)

	op, args := Uncurry(c)
	assert.True(t, op.Eq(h))
	require.Len(t, args, 2)
	assert.True(t, args[0].Eq(x))
	assert.True(t, args[1].Eq(y))
}
