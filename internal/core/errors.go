package core

import (
	"errors"
	"fmt"
)

// Validation errors. Handled locally: the caller gets a system notice
// and the operation stops before touching any collaborator.
var (
	// ErrEmptyMessage rejects empty or whitespace-only message text.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNoSession rejects a send from a connection that never joined.
	ErrNoSession = errors.New("connection has no session")
)

// DependencyError wraps a collaborator failure (persistence or sentiment
// annotation). The caller sees only a generic system notice; the wrapped
// error stays inspectable for logs and tests.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
