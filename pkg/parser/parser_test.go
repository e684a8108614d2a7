package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/qtype"
	"github.com/vito/cheqed/pkg/syntax"
)

var (
	forAll = qterm.NewConstant("for_all", qtype.Fun(qtype.Fun(qtype.Obj(), qtype.Bool()), qtype.Bool()))
	exists = qterm.NewConstant("exists", qtype.Fun(qtype.Fun(qtype.Obj(), qtype.Bool()), qtype.Bool()))
	not    = qterm.NewConstant("not", qtype.Fun(qtype.Bool(), qtype.Bool()))
	or     = qterm.NewConstant("or", qtype.Fun(qtype.Bool(), qtype.Fun(qtype.Bool(), qtype.Bool())))
	and    = qterm.NewConstant("and", qtype.Fun(qtype.Bool(), qtype.Fun(qtype.Bool(), qtype.Bool())))
	in     = qterm.NewConstant("in", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Bool())))
	sep    = qterm.NewConstant("separation", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Fun(qtype.Obj(), qtype.Bool()), qtype.Obj())))
	eqVar  = qtype.Fresh()
	equals = qterm.NewConstant("=", qtype.Fun(eqVar, qtype.Fun(eqVar, qtype.Bool())))
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	s, err := syntax.New(
		syntax.Type{Name: "bool", Type: qtype.Bool()},
		syntax.Type{Name: "obj", Type: qtype.Obj()},
		syntax.Binder{Constant: forAll},
		syntax.Binder{Constant: exists},
		syntax.Operator{Constant: not, Arity: 1, Assoc: syntax.Right, Precedence: 100},
		syntax.Operator{Constant: and, Arity: 2, Assoc: syntax.Left, Precedence: 200},
		syntax.Operator{Constant: or, Arity: 2, Assoc: syntax.Left, Precedence: 300},
		syntax.Operator{Constant: equals, Arity: 2, Assoc: syntax.Left, Precedence: 500},
		syntax.Operator{Constant: in, Arity: 2, Assoc: syntax.Left, Precedence: 50},
		syntax.SetBuilder{Constant: sep, Member: "in"},
	)
	require.NoError(t, err)
	return New(s)
}

func parse(t *testing.T, p *Parser, text string) qterm.Term {
	t.Helper()
	term, err := p.Parse(text)
	require.NoError(t, err, text)
	return term
}

func must(t *testing.T) func(qterm.Term, error) qterm.Term {
	return func(term qterm.Term, err error) qterm.Term {
		t.Helper()
		require.NoError(t, err)
		return term
	}
}

func TestParseConstantType(t *testing.T) {
	p := newTestParser(t)
	for text, expected := range map[string]qtype.Type{
		"bool":            qtype.Bool(),
		"(bool)":          qtype.Bool(),
		"obj":             qtype.Obj(),
		"obj->obj":        qtype.Fun(qtype.Obj(), qtype.Obj()),
		"obj->obj->obj":   qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Obj())),
		"(obj->obj)->obj": qtype.Fun(qtype.Fun(qtype.Obj(), qtype.Obj()), qtype.Obj()),
		"obj->bool":       qtype.Fun(qtype.Obj(), qtype.Bool()),
	} {
		typ, err := p.ParseType(text)
		require.NoError(t, err, text)
		assert.True(t, typ.Eq(expected), "%s: %s", text, typ)
	}
}

func TestParseVariableType(t *testing.T) {
	p := newTestParser(t)

	typ, err := p.ParseType("?a")
	require.NoError(t, err)
	assert.True(t, qtype.IsVar(typ))

	typ, err = p.ParseType("?a->?a")
	require.NoError(t, err)
	fn := typ.(*qtype.Function)
	assert.True(t, fn.Arg.Eq(fn.Result))

	typ, err = p.ParseType("?a->?b")
	require.NoError(t, err)
	fn = typ.(*qtype.Function)
	assert.False(t, fn.Arg.Eq(fn.Result))

	typ2, err := p.ParseType("?a->?b")
	require.NoError(t, err)
	fn2 := typ2.(*qtype.Function)
	assert.False(t, fn.Arg.Eq(fn2.Arg))
	assert.False(t, fn.Result.Eq(fn2.Result))
}

func TestParseVariables(t *testing.T) {
	p := newTestParser(t)

	v := parse(t, p, "var").(*qterm.Variable)
	assert.Equal(t, "var", v.Name)
	assert.True(t, qtype.IsVar(v.QType))

	v = parse(t, p, "var:bool").(*qterm.Variable)
	assert.True(t, v.QType.Eq(qtype.Bool()))

	v = parse(t, p, "var:bool->obj").(*qterm.Variable)
	assert.True(t, v.QType.Eq(qtype.Fun(qtype.Bool(), qtype.Obj())))

	v = parse(t, p, "x1").(*qterm.Variable)
	assert.Equal(t, "x1", v.Name)
}

func TestParseOperator(t *testing.T) {
	p := newTestParser(t)
	m := must(t)

	assert.True(t, parse(t, p, "not a").Eq(
		m(qterm.UnaryOp(not, qterm.NewVariable("a", qtype.Bool())))))

	eqObj := qterm.NewConstant("=", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Bool())))
	assert.True(t, parse(t, p, "a:obj = b:obj").Eq(
		m(qterm.BinaryOp(eqObj, qterm.NewVariable("a", qtype.Obj()), qterm.NewVariable("b", qtype.Obj())))))
}

func TestParsePrecedence(t *testing.T) {
	p := newTestParser(t)
	m := must(t)
	a := qterm.NewVariable("a", qtype.Bool())
	b := qterm.NewVariable("b", qtype.Bool())
	c := qterm.NewVariable("c", qtype.Bool())

	t.Run("tighter operator groups first", func(t *testing.T) {
		expected := m(qterm.BinaryOp(or, a, m(qterm.BinaryOp(and, b, c))))
		assert.True(t, parse(t, p, "a or b and c").Eq(expected))
		assert.True(t, parse(t, p, "(a or (b and c))").Eq(expected))
	})

	t.Run("left associative", func(t *testing.T) {
		expected := m(qterm.BinaryOp(or, m(qterm.BinaryOp(or, a, b)), c))
		assert.True(t, parse(t, p, "a or b or c").Eq(expected))
	})

	t.Run("prefix binds tighter than infix", func(t *testing.T) {
		expected := m(qterm.BinaryOp(or, m(qterm.UnaryOp(not, a)), b))
		assert.True(t, parse(t, p, "not a or b").Eq(expected))
	})

	t.Run("prefix operators nest", func(t *testing.T) {
		expected := m(qterm.UnaryOp(not, m(qterm.UnaryOp(not, a))))
		assert.True(t, parse(t, p, "not not a").Eq(expected))
	})

	t.Run("application binds tightest", func(t *testing.T) {
		f := qterm.NewVariable("f", qtype.Fun(qtype.Obj(), qtype.Bool()))
		x := qterm.NewVariable("x", qtype.Obj())
		expected := m(qterm.UnaryOp(not, m(qterm.NewCombination(f, x))))
		assert.True(t, parse(t, p, "not f(x:obj)").Eq(expected))
	})
}

func TestParseBinder(t *testing.T) {
	p := newTestParser(t)
	m := must(t)

	expected := m(qterm.Binder(forAll, qterm.NewVariable("x", qtype.Obj()), qterm.NewVariable("phi", qtype.Bool())))
	assert.True(t, parse(t, p, "for_all x phi").Eq(expected))
	assert.True(t, parse(t, p, "for_all x . phi").Eq(expected))

	// the body extends as far as possible
	body := m(qterm.BinaryOp(or, qterm.NewVariable("phi", qtype.Bool()), qterm.NewVariable("psi", qtype.Bool())))
	expected = m(qterm.Binder(forAll, qterm.NewVariable("x", qtype.Obj()), body))
	assert.True(t, parse(t, p, "for_all x . phi or psi").Eq(expected))
}

func TestParseFunction(t *testing.T) {
	p := newTestParser(t)
	m := must(t)

	typ := qtype.Fun(qtype.Obj(), qtype.Obj())
	f := qterm.NewVariable("f", typ)
	g := qterm.NewVariable("g", typ)
	h := qterm.NewVariable("h", qtype.Fun(qtype.Obj(), typ))
	x := qterm.NewVariable("x", qtype.Obj())
	y := qterm.NewVariable("y", qtype.Obj())

	assert.True(t, parse(t, p, "f:obj->obj(x)").Eq(m(qterm.NewCombination(f, x))))
	assert.True(t, parse(t, p, "f:obj->obj(g:obj->obj(x))").Eq(
		m(qterm.NewCombination(f, m(qterm.NewCombination(g, x))))))
	assert.True(t, parse(t, p, "h:obj->obj->obj(x, y)").Eq(m(qterm.Apply(h, x, y))))
}

func TestParseAbstraction(t *testing.T) {
	p := newTestParser(t)
	m := must(t)

	f := qterm.NewVariable("f", qtype.Fun(qtype.Bool(), qtype.Bool()))
	x := qterm.NewVariable("x", qtype.Bool())
	y := qterm.NewVariable("y", qtype.Bool())

	assert.True(t, parse(t, p, `\x:bool x`).Eq(m(qterm.NewAbstraction(x, x))))
	assert.True(t, parse(t, p, `\x:bool \y:bool x`).Eq(
		m(qterm.NewAbstraction(x, m(qterm.NewAbstraction(y, x))))))
	assert.True(t, parse(t, p, `\x f:bool->bool(x)`).Eq(
		m(qterm.NewAbstraction(x, m(qterm.NewCombination(f, x))))))
	assert.True(t, parse(t, p, `\x:bool . x`).Eq(m(qterm.NewAbstraction(x, x))))
}

func TestParsePrefixConstant(t *testing.T) {
	p := newTestParser(t)

	assert.True(t, parse(t, p, "(exists)").Eq(exists))

	eq := parse(t, p, "(=)").(*qterm.Constant)
	assert.Equal(t, "=", eq.Name)
	fn := eq.QType.(*qtype.Function)
	assert.True(t, fn.Arg.Eq(fn.Result.(*qtype.Function).Arg))
	assert.False(t, fn.Arg.Eq(eqVar), "polymorphic constants are instantiated")

	parse(t, p, `(exists) = (\x.(not (for_all y . (not x(y)))))`)
}

func TestParseSetBuilder(t *testing.T) {
	p := newTestParser(t)
	m := must(t)

	x := qterm.NewVariable("x", qtype.Obj())
	s := qterm.NewVariable("S", qtype.Obj())
	phi := qterm.NewVariable("phi", qtype.Fun(qtype.Obj(), qtype.Bool()))

	abs := m(qterm.NewAbstraction(x, m(qterm.NewCombination(phi, x))))
	expected := m(qterm.Apply(sep, s, abs))
	assert.True(t, parse(t, p, "{x in S | phi(x)}").Eq(expected))
	assert.True(t, parse(t, p, `separation(S, \x . phi(x))`).Eq(expected))
}

func TestParseSequent(t *testing.T) {
	p := newTestParser(t)

	s, err := p.ParseSequent("a, not b |- a or c")
	require.NoError(t, err)
	assert.Len(t, s.Left, 2)
	assert.Len(t, s.Right, 1)

	s, err = p.ParseSequent("|- a")
	require.NoError(t, err)
	assert.Empty(t, s.Left)

	_, err = p.ParseSequent("x:obj |- x:bool")
	var tm *qtype.TypeMismatch
	require.True(t, errors.As(err, &tm))
}

func TestSyntaxErrors(t *testing.T) {
	p := newTestParser(t)

	for _, text := range []string{
		"",
		"a or",
		"(a",
		"a $ b",
		"or b",
		`\or x`,
		"x:nope",
		"a b",
	} {
		_, err := p.Parse(text)
		var se *SyntaxError
		assert.True(t, errors.As(err, &se), "%q: %v", text, err)
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("a or\n  $")
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Pos.Line)
	assert.Equal(t, 3, se.Pos.Column)
}

func TestTypeErrors(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse("x:obj or y")
	var tm *qtype.TypeMismatch
	require.True(t, errors.As(err, &tm))
	assert.Contains(t, err.Error(), "at 1:7")

	_, err = p.Parse(`(\x:obj . x)(a:bool)`)
	require.True(t, errors.As(err, &tm))
	assert.Contains(t, err.Error(), "at 1:13")
}

func TestUnicodeWhitespace(t *testing.T) {
	p := newTestParser(t)
	term, err := p.Parse("not\u00a0a\u2003or\u3000b")
	require.NoError(t, err)
	assert.True(t, term.Eq(parse(t, p, "not a or b")))

	_, err = p.Parse("a or\u00a0$")
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 6, se.Pos.Column)
}

func TestNonAssociative(t *testing.T) {
	cmp := qterm.NewConstant("lt", qtype.Fun(qtype.Obj(), qtype.Fun(qtype.Obj(), qtype.Bool())))
	s, err := syntax.New(
		syntax.Type{Name: "obj", Type: qtype.Obj()},
		syntax.Operator{Constant: cmp, Arity: 2, Assoc: syntax.NonAssoc, Precedence: 10},
	)
	require.NoError(t, err)
	p := New(s)

	_, err = p.Parse("a lt b")
	require.NoError(t, err)

	_, err = p.Parse("a lt b lt c")
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
}
