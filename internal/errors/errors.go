package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicateSession = errors.New("duplicate checkout session")
	ErrMissingSignature = errors.New("missing webhook signature")
)

// ValidationError represents a caller input validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// AuthenticationError represents a webhook signature verification failure.
// Handlers must map it to a non-2xx status so the processor retries.
type AuthenticationError struct {
	Err error
}

func (e AuthenticationError) Error() string {
	return fmt.Sprintf("webhook authentication failed: %v", e.Err)
}

func (e AuthenticationError) Unwrap() error {
	return e.Err
}

// ConfigurationError signals a required deployment setting is absent
type ConfigurationError struct {
	Key string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s not configured", e.Key)
}

// ProcessorError wraps a failed call to the payment processor
type ProcessorError struct {
	Operation string
	Err       error
}

func (e ProcessorError) Error() string {
	return fmt.Sprintf("payment processor error during %s: %v", e.Operation, e.Err)
}

func (e ProcessorError) Unwrap() error {
	return e.Err
}

// StoreError represents a ledger persistence failure
type StoreError struct {
	Operation string
	Err       error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("ledger store error during %s: %v", e.Operation, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsAuthentication reports whether err is an AuthenticationError
func IsAuthentication(err error) bool {
	var ae AuthenticationError
	return errors.As(err, &ae)
}

// IsConfiguration reports whether err is a ConfigurationError
func IsConfiguration(err error) bool {
	var ce ConfigurationError
	return errors.As(err, &ce)
}
