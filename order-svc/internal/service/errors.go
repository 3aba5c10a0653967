package service

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrRecordNotFound = errors.New("business record not found")
	ErrWorkerNotFound = errors.New("worker not found")
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError wraps one of the ErrXNotFound sentinels so callers can match
// either the type or the sentinel.
type NotFoundError struct {
	Err error
	ID  string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s: %s", e.Err, e.ID) }

func (e *NotFoundError) Unwrap() error { return e.Err }

func notFound(err error, id string) error {
	return &NotFoundError{Err: err, ID: id}
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
