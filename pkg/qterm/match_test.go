package qterm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/cheqed/pkg/qtype"
)

func boolOp(name string) *Constant {
	return NewConstant(name, qtype.Fun(qtype.Bool(), qtype.Fun(qtype.Bool(), qtype.Bool())))
}

func TestMatchBinaryOperator(t *testing.T) {
	or := boolOp("or")
	pattern, err := BinaryOp(or, NewVariable("a", qtype.Fresh()), NewVariable("b", qtype.Fresh()))
	require.NoError(t, err)

	not := NewConstant("not", qtype.Fun(qtype.Bool(), qtype.Bool()))
	p := NewVariable("p", qtype.Bool())
	notP := mustComb(t, not, p)
	term, err := BinaryOp(or, notP, NewVariable("q", qtype.Bool()))
	require.NoError(t, err)

	m, err := Match(pattern, term)
	require.NoError(t, err)
	assert.True(t, m["a"].Eq(notP))
	assert.True(t, m["b"].Eq(NewVariable("q", qtype.Bool())))
}

func TestMatchConstantMismatch(t *testing.T) {
	pattern, err := BinaryOp(boolOp("or"), NewVariable("a", qtype.Fresh()), NewVariable("b", qtype.Fresh()))
	require.NoError(t, err)
	term, err := BinaryOp(boolOp("and"), NewVariable("p", qtype.Bool()), NewVariable("q", qtype.Bool()))
	require.NoError(t, err)

	_, err = Match(pattern, term)
	var me *MatchError
	require.True(t, errors.As(err, &me))
}

func TestMatchRepeatedVariable(t *testing.T) {
	or := boolOp("or")
	a := NewVariable("a", qtype.Bool())
	pattern, err := BinaryOp(or, a, a)
	require.NoError(t, err)

	same, err := BinaryOp(or, NewVariable("p", qtype.Bool()), NewVariable("p", qtype.Bool()))
	require.NoError(t, err)
	m, err := Match(pattern, same)
	require.NoError(t, err)
	assert.True(t, m["a"].Eq(NewVariable("p", qtype.Bool())))

	different, err := BinaryOp(or, NewVariable("p", qtype.Bool()), NewVariable("q", qtype.Bool()))
	require.NoError(t, err)
	_, err = Match(pattern, different)
	var me *MatchError
	require.True(t, errors.As(err, &me))
	assert.Contains(t, me.Error(), "already bound")
}

func TestMatchBinder(t *testing.T) {
	forAll := NewConstant("for_all", qtype.Fun(qtype.Fun(qtype.Obj(), qtype.Bool()), qtype.Bool()))
	pattern, err := Binder(forAll, NewVariable("x", qtype.Fresh()), NewVariable("phi", qtype.Fresh()))
	require.NoError(t, err)

	y := NewVariable("y", qtype.Obj())
	p := NewVariable("p", qtype.Fun(qtype.Obj(), qtype.Bool()))
	body := mustComb(t, p, y)
	term, err := Binder(forAll, y, body)
	require.NoError(t, err)

	m, err := Match(pattern, term)
	require.NoError(t, err)
	assert.True(t, m["x"].Eq(y))
	assert.True(t, m["phi"].Eq(body))
}

func TestMatchTypes(t *testing.T) {
	pattern := NewVariable("a", qtype.Bool())
	_, err := Match(pattern, NewVariable("x", qtype.Obj()))
	require.Error(t, err)

	m, err := Match(NewVariable("a", qtype.Fresh()), NewVariable("x", qtype.Obj()))
	require.NoError(t, err)
	assert.True(t, m["a"].Eq(NewVariable("x", qtype.Obj())))
}
