package qtype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyIdentity(t *testing.T) {
	v := Fresh()
	for _, typ := range []Type{
		Obj(),
		Bool(),
		v,
		Fun(Obj(), Bool()),
		Fun(v, Fun(v, Bool())),
	} {
		got, err := Unify(typ, typ)
		require.NoError(t, err)
		assert.True(t, got.Eq(typ), "%s != %s", got, typ)
	}
}

func TestUnifyConstantMismatch(t *testing.T) {
	_, err := Unify(Obj(), Bool())
	require.Error(t, err)

	var tm *TypeMismatch
	require.True(t, errors.As(err, &tm))
	assert.False(t, tm.Cyclic)
}

func TestUnifyVariables(t *testing.T) {
	a, b, c := Fresh(), Fresh(), Fresh()
	got, err := Unify(a, b, c)
	require.NoError(t, err)
	assert.True(t, IsVar(got))

	got, err = Unify(a, b, Obj(), c)
	require.NoError(t, err)
	assert.True(t, got.Eq(Obj()))
}

func TestUnifyFunctionArguments(t *testing.T) {
	a, b := Fresh(), Fresh()
	got, err := Unify(Fun(a, Bool()), Fun(Obj(), b))
	require.NoError(t, err)
	assert.True(t, got.Eq(Fun(Obj(), Bool())), "got %s", got)

	_, err = Unify(Fun(Obj(), Bool()), Fun(Bool(), Bool()))
	require.Error(t, err)

	_, err = Unify(Fun(Obj(), Bool()), Obj())
	require.Error(t, err)
}

func TestUnifyThroughSharedVariable(t *testing.T) {
	v, a, b := Fresh(), Fresh(), Fresh()
	tu := NewUnifier()
	require.NoError(t, tu.Unify(v, Fun(a, Bool())))
	require.NoError(t, tu.Unify(v, Fun(Obj(), b)))

	assert.True(t, tu.Apply(v).Eq(Fun(Obj(), Bool())), "got %s", tu.Apply(v))
	assert.True(t, tu.Apply(a).Eq(Obj()))
	assert.True(t, tu.Apply(b).Eq(Bool()))

	subs := tu.Subs()
	assert.True(t, subs[a].Eq(Obj()))
}

func TestOccursCheck(t *testing.T) {
	a := Fresh()
	_, err := Unify(a, Fun(a, Bool()))

	var tm *TypeMismatch
	require.True(t, errors.As(err, &tm))
	assert.True(t, tm.Cyclic)
}

func TestCanUnify(t *testing.T) {
	assert.True(t, CanUnify(Fresh(), Obj()))
	assert.False(t, CanUnify(Obj(), Fun(Obj(), Obj())))
}

func TestInstantiate(t *testing.T) {
	a := Fresh()
	typ := Fun(a, Fun(a, Bool()))
	inst := Instantiate(typ).(*Function)
	assert.False(t, inst.Arg.Eq(a))
	assert.True(t, inst.Arg.Eq(inst.Result.(*Function).Arg))
}

func TestString(t *testing.T) {
	assert.Equal(t, "(obj->(obj->bool))", Fun(Obj(), Fun(Obj(), Bool())).String())
}
