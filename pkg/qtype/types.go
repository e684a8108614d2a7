package qtype

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Type represents all possible type terms: constants, variables and
// constructor applications such as functions.
type Type interface {
	// Name is the constructor name: the constant's name, "fun", or the
	// variable's display name.
	Name() string
	// Types returns the constructor arguments in order.
	Types() Types
	Eq(Type) bool
	FreeTypeVar() VarSet
	fmt.Stringer
}

// Types represents a slice of types
type Types []Type

// Const is an atomic type such as obj or bool.
type Const string

func (c Const) Name() string {
	return string(c)
}

func (c Const) Types() Types {
	return nil
}

func (c Const) Eq(other Type) bool {
	if oc, ok := other.(Const); ok {
		return c == oc
	}
	return false
}

func (c Const) FreeTypeVar() VarSet {
	return nil
}

func (c Const) String() string {
	return string(c)
}

// Var is a type variable, identified by a number.
type Var int

var varCounter atomic.Int64

// Fresh returns a type variable that has never been handed out before.
func Fresh() Var {
	return Var(varCounter.Add(1))
}

func (v Var) Name() string {
	return fmt.Sprintf("?v%d", int(v))
}

func (v Var) Types() Types {
	return nil
}

func (v Var) Eq(other Type) bool {
	if ov, ok := other.(Var); ok {
		return v == ov
	}
	return false
}

func (v Var) FreeTypeVar() VarSet {
	return NewVarSet(v)
}

func (v Var) String() string {
	return v.Name()
}

// FunName is the constructor name of function types.
const FunName = "fun"

// Function represents a function type
type Function struct {
	Arg    Type
	Result Type
}

// Fun constructs the function type arg->result.
func Fun(arg, result Type) *Function {
	return &Function{Arg: arg, Result: result}
}

func (ft *Function) Name() string {
	return FunName
}

func (ft *Function) Types() Types {
	return Types{ft.Arg, ft.Result}
}

func (ft *Function) Eq(other Type) bool {
	if ot, ok := other.(*Function); ok {
		return ft.Arg.Eq(ot.Arg) && ft.Result.Eq(ot.Result)
	}
	return false
}

func (ft *Function) FreeTypeVar() VarSet {
	return ft.Arg.FreeTypeVar().Union(ft.Result.FreeTypeVar())
}

func (ft *Function) String() string {
	return fmt.Sprintf("(%s->%s)", ft.Arg, ft.Result)
}

// Obj is the type of individuals.
func Obj() Const {
	return Const("obj")
}

// Bool is the type of propositions.
func Bool() Const {
	return Const("bool")
}

// IsVar reports whether t is a type variable.
func IsVar(t Type) bool {
	_, ok := t.(Var)
	return ok
}

// IsFun reports whether t is a function type.
func IsFun(t Type) bool {
	_, ok := t.(*Function)
	return ok
}

// Rebuild constructs a type with the same constructor as t but the given
// arguments.
func Rebuild(t Type, args Types) Type {
	switch t.(type) {
	case *Function:
		return Fun(args[0], args[1])
	default:
		return t
	}
}

// Key returns a canonical string for t, used to identify types in the
// unifier arena.
func Key(t Type) string {
	switch x := t.(type) {
	case Var:
		return x.Name()
	case Const:
		return "'" + string(x)
	default:
		var b strings.Builder
		b.WriteString(t.Name())
		b.WriteByte('(')
		for i, arg := range t.Types() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Key(arg))
		}
		b.WriteByte(')')
		return b.String()
	}
}

// Occurs reports whether v occurs anywhere within t.
func Occurs(v Var, t Type) bool {
	return t.FreeTypeVar().Contains(v)
}

// Instantiate replaces every type variable in t with a fresh one, keeping
// repeated variables repeated.
func Instantiate(t Type) Type {
	fresh := map[Var]Type{}
	return Map(t, func(v Var) Type {
		if nv, ok := fresh[v]; ok {
			return nv
		}
		nv := Fresh()
		fresh[v] = nv
		return nv
	})
}

// Map rewrites every variable in t with fn.
func Map(t Type, fn func(Var) Type) Type {
	switch x := t.(type) {
	case Var:
		return fn(x)
	case Const:
		return x
	default:
		args := t.Types()
		mapped := make(Types, len(args))
		for i, arg := range args {
			mapped[i] = Map(arg, fn)
		}
		return Rebuild(t, mapped)
	}
}
