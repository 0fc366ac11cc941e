package shipping

import (
	"errors"
	"fmt"
	"strings"
)

// Service-level sentinel errors.
var (
	// ErrAlreadyProcessed indicates the order already left pending or already
	// carries a tracking code; no second waybill may be created.
	ErrAlreadyProcessed = errors.New("order already processed")

	// ErrNoTrackingCode indicates a cancel was requested for an order that
	// has no waybill.
	ErrNoTrackingCode = errors.New("order has no tracking code")

	// ErrNoLiveQuote indicates no carrier returned a live quote, so automatic
	// carrier selection has nothing to choose from.
	ErrNoLiveQuote = errors.New("no live quote available")
)

// ValidationError reports every missing or invalid sender/receiver field at
// once, so the caller can prompt for all corrections in one round trip.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// AsValidationError extracts a ValidationError via errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
