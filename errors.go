package mado

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotFound is returned when an entity identity is stale or was
	// never spawned.
	ErrEntityNotFound = errors.New("mado: entity not found")
	// ErrComponentNotFound is returned when a live entity lacks the requested
	// component.
	ErrComponentNotFound = errors.New("mado: component not found")
	// ErrBorrowConflict reports two overlapping borrows of the same component
	// where at least one of them writes, or a structural change while a query
	// is borrowed.
	ErrBorrowConflict = errors.New("mado: borrow conflict")
	// ErrRelationCycle is returned when an attach would make an entity its own
	// ancestor.
	ErrRelationCycle = errors.New("mado: relation cycle")
)

// BorrowError describes which component caused a borrow conflict.
type BorrowError struct {
	Component string
	Op        string
}

func (e *BorrowError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%v: %s while a query is borrowed", ErrBorrowConflict, e.Op)
	}
	return fmt.Sprintf("%v: %s %s", ErrBorrowConflict, e.Op, e.Component)
}

func (e *BorrowError) Unwrap() error {
	return ErrBorrowConflict
}

func entityNotFound(e Entity) error {
	return fmt.Errorf("%w: %v", ErrEntityNotFound, e)
}
