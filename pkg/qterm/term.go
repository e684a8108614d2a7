package qterm

import (
	"fmt"
	"strings"

	"github.com/vito/cheqed/pkg/qtype"
)

// Term is a node of the typed lambda calculus. Terms are immutable; every
// transformation builds new nodes.
type Term interface {
	Type() qtype.Type
	// Key is a canonical encoding of the term, equal for structurally equal
	// terms. It is used wherever terms need hashing.
	Key() string
	Eq(Term) bool
	fmt.Stringer

	isTerm()
}

// Constant is a named atom that can never be bound or substituted for by a
// rule.
type Constant struct {
	Name  string
	QType qtype.Type
}

var _ Term = (*Constant)(nil)

// NewConstant creates a constant of the given type.
func NewConstant(name string, t qtype.Type) *Constant {
	return &Constant{Name: name, QType: t}
}

func (c *Constant) isTerm() {}

func (c *Constant) Type() qtype.Type { return c.QType }

func (c *Constant) Key() string {
	return "c:" + c.Name + ":" + qtype.Key(c.QType)
}

func (c *Constant) Eq(other Term) bool {
	oc, ok := other.(*Constant)
	return ok && oc.Name == c.Name && oc.QType.Eq(c.QType)
}

func (c *Constant) String() string {
	return fmt.Sprintf("%s:%s", c.Name, c.QType)
}

// Variable is a named atom that may be free or bound by an Abstraction.
type Variable struct {
	Name  string
	QType qtype.Type
}

var _ Term = (*Variable)(nil)

// NewVariable creates a variable of the given type.
func NewVariable(name string, t qtype.Type) *Variable {
	return &Variable{Name: name, QType: t}
}

func (v *Variable) isTerm() {}

func (v *Variable) Type() qtype.Type { return v.QType }

func (v *Variable) Key() string {
	return "v:" + v.Name + ":" + qtype.Key(v.QType)
}

func (v *Variable) Eq(other Term) bool {
	ov, ok := other.(*Variable)
	return ok && ov.Name == v.Name && ov.QType.Eq(v.QType)
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s:%s", v.Name, v.QType)
}

// Combination applies Operator to Operand. Use NewCombination to build one;
// it guarantees the operator is a function accepting the operand's type.
type Combination struct {
	Operator Term
	Operand  Term
}

var _ Term = (*Combination)(nil)

func (c *Combination) isTerm() {}

// Type is the result type of the operator.
func (c *Combination) Type() qtype.Type {
	return c.Operator.Type().(*qtype.Function).Result
}

func (c *Combination) Key() string {
	return "(" + c.Operator.Key() + " " + c.Operand.Key() + ")"
}

func (c *Combination) Eq(other Term) bool {
	oc, ok := other.(*Combination)
	return ok && oc.Operator.Eq(c.Operator) && oc.Operand.Eq(c.Operand)
}

func (c *Combination) String() string {
	return fmt.Sprintf("%s(%s)", c.Operator, c.Operand)
}

// Abstraction binds Bound within Body. Use NewAbstraction to build one.
type Abstraction struct {
	Bound *Variable
	Body  Term
}

var _ Term = (*Abstraction)(nil)

func (a *Abstraction) isTerm() {}

func (a *Abstraction) Type() qtype.Type {
	return qtype.Fun(a.Bound.QType, a.Body.Type())
}

func (a *Abstraction) Key() string {
	return "\\" + a.Bound.Key() + "." + a.Body.Key()
}

func (a *Abstraction) Eq(other Term) bool {
	oa, ok := other.(*Abstraction)
	return ok && oa.Bound.Eq(a.Bound) && oa.Body.Eq(a.Body)
}

func (a *Abstraction) String() string {
	return fmt.Sprintf("(\\%s. %s)", a.Bound, a.Body)
}

// IsAtom reports whether t is a Constant or a Variable.
func IsAtom(t Term) bool {
	switch t.(type) {
	case *Constant, *Variable:
		return true
	default:
		return false
	}
}

// Name returns the name of an atom, or "" for compound terms.
func Name(t Term) string {
	switch x := t.(type) {
	case *Constant:
		return x.Name
	case *Variable:
		return x.Name
	default:
		return ""
	}
}

// Uncurry splits nested applications f(a)(b) into f and [a, b].
func Uncurry(t Term) (Term, []Term) {
	comb, ok := t.(*Combination)
	if !ok {
		return t, nil
	}
	op, args := Uncurry(comb.Operator)
	return op, append(args, comb.Operand)
}

// Terms is an ordered list of terms.
type Terms []Term

func (ts Terms) Eq(other Terms) bool {
	if len(ts) != len(other) {
		return false
	}
	for i := range ts {
		if !ts[i].Eq(other[i]) {
			return false
		}
	}
	return true
}

func (ts Terms) String() string {
	strs := make([]string, len(ts))
	for i, t := range ts {
		strs[i] = t.String()
	}
	return strings.Join(strs, ", ")
}
