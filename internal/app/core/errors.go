// Package core defines the error taxonomy shared by all lifecycle services.
package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors. Typed errors below wrap one of these so callers
// can branch with errors.Is without knowing the concrete type.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrTransaction   = errors.New("transaction failed")
	ErrDelivery      = errors.New("delivery failed")
	ErrWebhook       = errors.New("webhook failed")
	ErrInternal      = errors.New("internal error")
)

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and ID.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// ValidationError reports malformed input, rejected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RequiredError creates a ValidationError for a missing required field.
func RequiredError(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsValidationError reports whether err indicates malformed input.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// ConflictError reports a uniqueness or state conflict.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

// NewConflictError creates a ConflictError.
func NewConflictError(resource, id, reason string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }

// IsConflict reports whether err indicates a conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// TransactionError reports a persistence failure mid-transaction. The
// underlying store error is retained for logs; callers see a generic failure.
type TransactionError struct {
	Op  string
	Err error
}

// NewTransactionError wraps a store error that aborted a transaction.
func NewTransactionError(op string, err error) *TransactionError {
	return &TransactionError{Op: op, Err: err}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return ErrTransaction }

// IsTransactionError reports whether err indicates an aborted transaction.
func IsTransactionError(err error) bool { return errors.Is(err, ErrTransaction) }

// DeliveryError reports a notification channel failure for a single
// recipient. It is caught and logged at the dispatch boundary and never
// aggregated into an operation's failure.
type DeliveryError struct {
	RecipientID string
	Channel     string
	Err         error
}

// NewDeliveryError wraps a per-recipient channel failure.
func NewDeliveryError(recipientID, channel string, err error) *DeliveryError {
	return &DeliveryError{RecipientID: recipientID, Channel: channel, Err: err}
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s via %s: %v", e.RecipientID, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return ErrDelivery }

// IsDeliveryError reports whether err is a per-recipient delivery failure.
func IsDeliveryError(err error) bool { return errors.Is(err, ErrDelivery) }

// WebhookError reports an external webhook call failure. Always swallowed
// after logging.
type WebhookError struct {
	URL string
	Err error
}

// NewWebhookError wraps a webhook transport failure.
func NewWebhookError(url string, err error) *WebhookError {
	return &WebhookError{URL: url, Err: err}
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("webhook %s: %v", e.URL, e.Err)
}

func (e *WebhookError) Unwrap() error { return ErrWebhook }

// WrapServiceError annotates an error with the service and operation that
// produced it. Returns nil when err is nil.
func WrapServiceError(service, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %w", service, op, err)
}
