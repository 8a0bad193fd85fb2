package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound = errors.New("document not found")
	ErrEmptyID  = errors.New("document ID cannot be empty")
	ErrPersist  = errors.New("persist failed")
)

// PersistError reports that the document store rejected a body write.
type PersistError struct {
	ID  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.ID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPersist) hold for every PersistError.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}
