package repository

import (
	"errors"
	"fmt"
)

// ErrColumnNotWhitelisted is returned when Update is asked to set a
// column outside the fixed partial-update whitelist.
var ErrColumnNotWhitelisted = errors.New("column is not in the update whitelist")

// ErrNotNullViolation is returned when a NOT-NULL-whitelisted column is
// set to nil before the update reaches the database.
var ErrNotNullViolation = errors.New("column cannot be set to null")

// ErrResumeNotFound is returned when Update or Get target a missing row.
var ErrResumeNotFound = errors.New("resume not found")

// DeadlockError wraps a Postgres deadlock/serialization-failure SQLSTATE
// that survived every retry attempt.
type DeadlockError struct {
	SQLState string
	Attempts int
	Err      error
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("update failed after %d attempts on deadlock (sqlstate %s): %v", e.Attempts, e.SQLState, e.Err)
}

func (e *DeadlockError) Unwrap() error { return e.Err }
