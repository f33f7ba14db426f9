package services

import (
	"errors"
	"fmt"

	"sampahku/internal/models"
	"sampahku/internal/repository"
)

// ErrNotFound is the root of every "entity absent" error
var ErrNotFound = errors.New("not found")

var (
	ErrCitizenNotFound      = fmt.Errorf("citizen %w", ErrNotFound)
	ErrPaymentNotFound      = fmt.Errorf("payment %w", ErrNotFound)
	ErrDisputeNotFound      = fmt.Errorf("dispute %w", ErrNotFound)
	ErrAccountNotFound      = fmt.Errorf("account %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
)

// Validation failures; wrapped in *ValidationError with a user-facing message
var (
	ErrRequiredFields    = errors.New("required fields missing")
	ErrInvalidNIK        = errors.New("invalid NIK")
	ErrDuplicateNIK      = errors.New("duplicate NIK")
	ErrInvalidKK         = errors.New("invalid KK")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicatePayment  = repository.ErrDuplicatePayment
	ErrInvalidPeriod     = models.ErrInvalidPeriod
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid dispute transition")
	ErrInvalidAccount    = errors.New("invalid account data")

	ErrInvalidDisputedPayment = errors.New("disputed payment not found")
)

// ErrProofStorageUnavailable is returned by proof uploads when no object storage is configured
var ErrProofStorageUnavailable = errors.New("proof storage is not configured")

// Authentication failures
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

// ValidationError is a user-correctable rejection raised before any write
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error, message string) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// PersistenceError reports a failed call to the document store.
// The operation did not commit and is not retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Notice tells the caller that a successful write changed what was requested
type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const NoticeStatusDowngraded = "status_downgraded"
