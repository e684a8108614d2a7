package sequent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
)

func TestNewUnifiesAcrossSides(t *testing.T) {
	v := qtype.Fresh()
	s, err := New(
		[]qterm.Term{qterm.NewVariable("x", v)},
		[]qterm.Term{qterm.NewVariable("x", qtype.Obj())},
	)
	require.NoError(t, err)
	assert.True(t, s.Left[0].Eq(qterm.NewVariable("x", qtype.Obj())))
	assert.Len(t, s.FreeVariables(), 1)
}

func TestNewRejectsConflictingTypes(t *testing.T) {
	_, err := New(
		[]qterm.Term{qterm.NewVariable("x", qtype.Obj())},
		[]qterm.Term{qterm.NewVariable("x", qtype.Bool())},
	)
	var tm *qtype.TypeMismatch
	require.True(t, errors.As(err, &tm))
}

func TestSequentsDoNotShareStorage(t *testing.T) {
	a := qterm.NewVariable("a", qtype.Bool())
	b := qterm.NewVariable("b", qtype.Bool())
	s := Must([]qterm.Term{a}, []qterm.Term{b})

	l := append(s.Left, b)
	l[0] = b
	assert.True(t, s.Left[0].Eq(a))
	assert.Len(t, s.Left, 1)
}

func TestEqAndString(t *testing.T) {
	a := qterm.NewVariable("a", qtype.Bool())
	b := qterm.NewVariable("b", qtype.Bool())
	assert.True(t, Must([]qterm.Term{a}, []qterm.Term{b}).Eq(Must([]qterm.Term{a}, []qterm.Term{b})))
	assert.False(t, Must([]qterm.Term{a}, []qterm.Term{b}).Eq(Must([]qterm.Term{b}, []qterm.Term{a})))
	assert.True(t, Eq(nil, []*Sequent{}))
	assert.Equal(t, "a:bool |- b:bool", Must([]qterm.Term{a}, []qterm.Term{b}).String())
}
