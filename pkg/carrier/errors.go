package carrier

import (
	"errors"
	"fmt"
)

// AdapterError represents an unclassified error from a shipping carrier.
// It carries the provider and raw detail so failures are diagnosable without
// being silently swallowed.
type AdapterError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Provider, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for AdapterError.
func (e *AdapterError) Is(target error) bool {
	t, ok := target.(*AdapterError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAdapterError creates a new AdapterError.
func NewAdapterError(provider, code, message string) *AdapterError {
	return &AdapterError{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// WithCause adds a cause to the error.
func (e *AdapterError) WithCause(err error) *AdapterError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *AdapterError) WithStatusCode(code int) *AdapterError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *AdapterError) WithRetryable(retryable bool) *AdapterError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for common carrier scenarios.
var (
	// ErrQuoteUnavailable indicates a live quote could not be obtained
	// (timeout, non-2xx or carrier-side rejection). Recovered locally by
	// falling back to the static fee table.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrAlreadyTerminal indicates the carrier reports the shipment already
	// delivered or returned; cancellation is not possible and must not be
	// retried.
	ErrAlreadyTerminal = errors.New("shipment already terminal")

	// ErrCarrierNotFound indicates the requested provider is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrNoFallbackTable indicates the fee table has no brackets for a
	// provider.
	ErrNoFallbackTable = errors.New("no fallback fee table for provider")

	// ErrPrintNotSupported indicates the carrier has no batch label printing.
	ErrPrintNotSupported = errors.New("label printing not supported")
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr.Retryable
	}
	return errors.Is(err, ErrQuoteUnavailable)
}
