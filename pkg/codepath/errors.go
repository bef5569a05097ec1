package codepath

import "fmt"

// InvariantError is the panic value raised when the builder detects a
// broken structural invariant. It always signals a bug in the builder, never
// malformed input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("codepath: invariant violated: %s", e.Msg)
}

func invariant(msg string) {
	panic(&InvariantError{Msg: msg})
}
