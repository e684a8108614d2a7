package unification

import (
	"fmt"
)

// Reason describes why two values could not be unified.
type Reason string

const (
	// Mismatch means both representatives were non-variables and could not
	// be reconciled.
	Mismatch Reason = "mismatch"
	// Occurs means a variable would have been bound to a value containing
	// itself.
	Occurs Reason = "occurs"
)

// Error is returned when a union fails.
type Error[T any] struct {
	A, B   T
	Reason Reason
	// Inner is the error returned by a Resolver, if any
	Inner error
}

func (e *Error[T]) Error() string {
	switch e.Reason {
	case Occurs:
		return fmt.Sprintf("occurs check failed: %v occurs in %v", e.A, e.B)
	default:
		if e.Inner != nil {
			return fmt.Sprintf("cannot unify %v with %v: %s", e.A, e.B, e.Inner)
		}
		return fmt.Sprintf("cannot unify %v with %v", e.A, e.B)
	}
}

func (e *Error[T]) Unwrap() error {
	return e.Inner
}

// Resolver is consulted when two non-variable representatives meet. It
// returns nil if they are compatible, in which case the classes are merged.
// A Resolver may call back into the Unifier.
type Resolver[T any] func(a, b T) error

type cell[T any] struct {
	value  T
	parent int
	rank   int
}

// Unifier is an arena of union-find cells addressed by index. Values are
// identified by the string returned from the key function, so two
// structurally equal values always share a cell.
type Unifier[T any] struct {
	isVariable func(T) bool
	occursIn   func(v, t T) bool
	key        func(T) string
	resolve    Resolver[T]

	cells []cell[T]
	index map[string]int
}

// New creates a Unifier. isVariable reports whether a value may be bound;
// occursIn reports whether the variable v occurs within t.
func New[T any](isVariable func(T) bool, occursIn func(v, t T) bool, key func(T) string) *Unifier[T] {
	return &Unifier[T]{
		isVariable: isVariable,
		occursIn:   occursIn,
		key:        key,
		index:      make(map[string]int),
	}
}

// WithResolver sets the hook used when two non-variables meet.
func (u *Unifier[T]) WithResolver(r Resolver[T]) *Unifier[T] {
	u.resolve = r
	return u
}

// Find returns the index of the representative cell for value, allocating a
// fresh singleton cell if the value has not been seen.
func (u *Unifier[T]) Find(value T) int {
	k := u.key(value)
	idx, ok := u.index[k]
	if !ok {
		idx = len(u.cells)
		u.cells = append(u.cells, cell[T]{value: value, parent: idx})
		u.index[k] = idx
		return idx
	}
	return u.root(idx)
}

func (u *Unifier[T]) root(idx int) int {
	r := idx
	for u.cells[r].parent != r {
		r = u.cells[r].parent
	}
	// path compression
	for u.cells[idx].parent != r {
		next := u.cells[idx].parent
		u.cells[idx].parent = r
		idx = next
	}
	return r
}

// Known reports whether value has been added to the arena.
func (u *Unifier[T]) Known(value T) bool {
	_, ok := u.index[u.key(value)]
	return ok
}

// Representative returns the representative value of value's class.
func (u *Unifier[T]) Representative(value T) T {
	return u.cells[u.Find(value)].value
}

// Unify extends the unifier so that a and b are equivalent.
func (u *Unifier[T]) Unify(a, b T) error {
	for {
		ra, rb := u.Find(a), u.Find(b)
		if ra == rb {
			return nil
		}

		va, vb := u.cells[ra].value, u.cells[rb].value

		var keep, discard int
		switch {
		case u.isVariable(va):
			keep, discard = rb, ra
		case u.isVariable(vb):
			keep, discard = ra, rb
		default:
			if u.resolve == nil {
				return &Error[T]{A: va, B: vb, Reason: Mismatch}
			}
			if err := u.resolve(va, vb); err != nil {
				return &Error[T]{A: va, B: vb, Reason: Mismatch, Inner: err}
			}
			// the resolver may have merged classes; look again before linking
			ra, rb = u.Find(a), u.Find(b)
			if ra == rb {
				return nil
			}
			if u.isVariable(u.cells[ra].value) || u.isVariable(u.cells[rb].value) {
				continue
			}
			u.link(ra, rb)
			return nil
		}

		if u.occursIn(u.cells[discard].value, u.cells[keep].value) {
			return &Error[T]{A: u.cells[discard].value, B: u.cells[keep].value, Reason: Occurs}
		}
		u.link(keep, discard)
		return nil
	}
}

// link makes keep the representative of discard's class. Rank only breaks
// ties among variables; a non-variable keep always wins.
func (u *Unifier[T]) link(keep, discard int) {
	u.cells[discard].parent = keep
	if u.cells[keep].rank <= u.cells[discard].rank {
		u.cells[keep].rank = u.cells[discard].rank + 1
	}
}

// UnifyMany unifies every value with the first.
func (u *Unifier[T]) UnifyMany(values []T) error {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values[1:] {
		if err := u.Unify(values[0], v); err != nil {
			return err
		}
	}
	// make sure singletons are registered too
	u.Find(values[0])
	return nil
}

// Substitutions maps the key of every value that is not its class
// representative to that representative.
func (u *Unifier[T]) Substitutions() map[string]T {
	subs := make(map[string]T)
	for k, idx := range u.index {
		r := u.root(idx)
		if r != idx {
			subs[k] = u.cells[r].value
		}
	}
	return subs
}

// Len returns the number of cells in the arena.
func (u *Unifier[T]) Len() int {
	return len(u.cells)
}
