package qterm

import "fmt"

// BindError is returned when an abstraction is built over something other
// than a variable.
type BindError struct {
	Bound Term
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bound terms must be variables, got %s", e.Bound)
}

// MatchError is returned when a term does not have the shape of a pattern.
type MatchError struct {
	Pattern Term
	Term    Term
	Msg     string
}

func (e *MatchError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("cannot match %s with %s: %s", e.Pattern, e.Term, e.Msg)
	}
	return fmt.Sprintf("cannot match %s with %s", e.Pattern, e.Term)
}
