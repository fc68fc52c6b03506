package board

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrNotFound        = errors.New("task not found")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrLoad            = errors.New("load failed")
)

const (
	OpCreate = "create"
	OpPatch  = "patch"
	OpDelete = "delete"
)

// TransportError records a gateway call that failed after the optimistic
// change was already visible.
type TransportError struct {
	Op     string
	TaskID string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.TaskID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
