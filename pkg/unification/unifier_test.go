package unification

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// strings starting with "?" are variables; anything else is a constant that
// "contains" every variable named inside it
func newStringUnifier() *Unifier[string] {
	return New(
		func(s string) bool { return strings.HasPrefix(s, "?") },
		func(v, t string) bool { return v != t && strings.Contains(t, v) },
		func(s string) string { return s },
	)
}

func TestUnifyPrefersNonVariableRepresentative(t *testing.T) {
	u := newStringUnifier()
	require.NoError(t, u.Unify("?a", "obj"))
	assert.Equal(t, "obj", u.Representative("?a"))
	assert.Equal(t, "obj", u.Representative("obj"))

	require.NoError(t, u.Unify("?b", "?a"))
	assert.Equal(t, "obj", u.Representative("?b"))
}

func TestUnifyVariablesOnly(t *testing.T) {
	u := newStringUnifier()
	require.NoError(t, u.UnifyMany([]string{"?a", "?b", "?c"}))

	rep := u.Representative("?a")
	assert.Equal(t, rep, u.Representative("?b"))
	assert.Equal(t, rep, u.Representative("?c"))
	assert.True(t, strings.HasPrefix(rep, "?"))
}

func TestUnifyMismatch(t *testing.T) {
	u := newStringUnifier()
	err := u.Unify("obj", "bool")
	require.Error(t, err)

	var uerr *Error[string]
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, Mismatch, uerr.Reason)
}

func TestUnifyMismatchThroughVariable(t *testing.T) {
	u := newStringUnifier()
	require.NoError(t, u.Unify("?a", "obj"))
	require.Error(t, u.Unify("?a", "bool"))
}

func TestOccursCheck(t *testing.T) {
	u := newStringUnifier()
	err := u.Unify("?a", "list(?a)")

	var uerr *Error[string]
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, Occurs, uerr.Reason)
}

func TestResolver(t *testing.T) {
	u := newStringUnifier()
	u.WithResolver(func(a, b string) error {
		if strings.EqualFold(a, b) {
			return nil
		}
		return errors.New("different words")
	})

	require.NoError(t, u.Unify("obj", "OBJ"))
	assert.Equal(t, u.Find("obj"), u.Find("OBJ"))

	err := u.Unify("obj", "bool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different words")
}

func TestSubstitutions(t *testing.T) {
	u := newStringUnifier()
	require.NoError(t, u.Unify("?a", "obj"))
	require.NoError(t, u.Unify("?b", "?c"))

	subs := u.Substitutions()
	assert.Equal(t, "obj", subs["?a"])
	assert.NotContains(t, subs, "obj")
	assert.Len(t, subs, 2)
}

func TestPathCompression(t *testing.T) {
	u := newStringUnifier()
	vars := []string{"?a", "?b", "?c", "?d", "?e"}
	for i := 1; i < len(vars); i++ {
		require.NoError(t, u.Unify(vars[i-1], vars[i]))
	}
	require.NoError(t, u.Unify("?e", "obj"))
	for _, v := range vars {
		assert.Equal(t, "obj", u.Representative(v))
	}
	assert.Equal(t, 6, u.Len())
}
