package qtype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vito/cheqed/pkg/unification"
)

// TypeMismatch represents errors during type unification: incompatible
// constructors, or a variable that would have to contain itself.
type TypeMismatch struct {
	A, B Type
	// Cyclic is set when the occurs check failed
	Cyclic bool
}

func (e *TypeMismatch) Error() string {
	if e.Cyclic {
		return fmt.Sprintf("type mismatch: %s occurs in %s", e.A, e.B)
	}
	return fmt.Sprintf("type mismatch: cannot unify %s with %s", e.A, e.B)
}

// Unifier accumulates type equations in a union-find arena. The zero value
// is not usable; call NewUnifier.
type Unifier struct {
	u *unification.Unifier[Type]
}

// NewUnifier creates an empty Unifier.
func NewUnifier() *Unifier {
	tu := &Unifier{}
	tu.u = unification.New(IsVar, tu.occurs, Key).WithResolver(tu.resolve)
	return tu
}

func (tu *Unifier) occurs(v, t Type) bool {
	return Occurs(v.(Var), tu.Apply(t))
}

// resolve is called when two non-variable representatives meet: they must
// share a constructor and arity, and their arguments are unified pairwise.
func (tu *Unifier) resolve(a, b Type) error {
	as, bs := a.Types(), b.Types()
	if a.Name() != b.Name() || len(as) != len(bs) {
		return &TypeMismatch{A: a, B: b}
	}
	for i := range as {
		if err := tu.Unify(as[i], bs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Unify extends the unifier so that a and b are equal after Apply.
func (tu *Unifier) Unify(a, b Type) error {
	if err := tu.u.Unify(a, b); err != nil {
		return asMismatch(err)
	}
	return nil
}

// UnifyMany unifies all of the given types with each other.
func (tu *Unifier) UnifyMany(types Types) error {
	if err := tu.u.UnifyMany(types); err != nil {
		return asMismatch(err)
	}
	return nil
}

// Apply rewrites every variable in t to its representative, recursively.
func (tu *Unifier) Apply(t Type) Type {
	switch x := t.(type) {
	case Var:
		if !tu.u.Known(x) {
			return x
		}
		rep := tu.u.Representative(x)
		if IsVar(rep) {
			return rep
		}
		return tu.Apply(rep)
	case Const:
		return x
	default:
		args := t.Types()
		applied := make(Types, len(args))
		changed := false
		for i, arg := range args {
			applied[i] = tu.Apply(arg)
			if applied[i] != arg {
				changed = true
			}
		}
		if !changed {
			return t
		}
		return Rebuild(t, applied)
	}
}

// Subs returns the resolved substitution for every variable the unifier has
// bound to something other than itself.
func (tu *Unifier) Subs() map[Var]Type {
	subs := make(map[Var]Type)
	for k := range tu.u.Substitutions() {
		n, err := strconv.Atoi(strings.TrimPrefix(k, "?v"))
		if err != nil || !strings.HasPrefix(k, "?v") {
			continue
		}
		subs[Var(n)] = tu.Apply(Var(n))
	}
	return subs
}

// Empty reports whether no equations have been recorded.
func (tu *Unifier) Empty() bool {
	return tu.u.Len() == 0
}

func asMismatch(err error) error {
	var tm *TypeMismatch
	if errors.As(err, &tm) {
		return tm
	}
	var ue *unification.Error[Type]
	if errors.As(err, &ue) {
		return &TypeMismatch{A: ue.A, B: ue.B, Cyclic: ue.Reason == unification.Occurs}
	}
	return err
}

// Unify unifies all of the given types and returns the unified type.
func Unify(types ...Type) (Type, error) {
	if len(types) == 0 {
		return nil, nil
	}
	tu := NewUnifier()
	if err := tu.UnifyMany(types); err != nil {
		return nil, err
	}
	return tu.Apply(types[0]), nil
}

// CanUnify reports whether the given types have a common instance.
func CanUnify(types ...Type) bool {
	_, err := Unify(types...)
	return err == nil
}
