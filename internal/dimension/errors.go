package dimension

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID = errors.New("world id already registered")
	ErrNilWorld    = errors.New("nil world")
)

// PersistError reports a failed save during unload. The world is removed anyway.
type PersistError struct {
	ID   int32
	Name string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save world %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
