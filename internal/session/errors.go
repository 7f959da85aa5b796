package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionCompleted is returned when an outcome is submitted after the last card
	ErrSessionCompleted = errors.New("review session already completed")
	// ErrSessionAbandoned is returned when an outcome is submitted to an abandoned session
	ErrSessionAbandoned = errors.New("review session was abandoned")
	// ErrPersistence marks failures of the card store write
	ErrPersistence = errors.New("card update failed")
)

// WriteError reports a failed card write. The session has not advanced, so the
// same outcome can be submitted again.
type WriteError struct {
	CardID string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%v for card %s: %v", ErrPersistence, e.CardID, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
