// Package carrier provides an abstraction layer over domestic shipping carriers.
package carrier

import (
	"context"
)

// Carrier defines the interface that all shipping carriers must implement.
type Carrier interface {
	// Name returns the provider identifier (e.g., "viettelpost", "spx", "jtexpress").
	Name() string

	// Quote returns a freight quote for a shipment. Implementations must apply
	// a bounded timeout and return ErrQuoteUnavailable on timeout or carrier
	// failure rather than blocking the caller.
	Quote(ctx context.Context, req *QuoteRequest) (*Quote, error)

	// CreateWaybill registers a new shipment with the carrier and returns the
	// resulting waybill. Idempotency is the caller's responsibility.
	CreateWaybill(ctx context.Context, req *WaybillRequest) (*Waybill, error)

	// CancelWaybill cancels an existing shipment. Returns ErrAlreadyTerminal
	// when the carrier reports the shipment already delivered or returned.
	CancelWaybill(ctx context.Context, trackingCode string) error

	// ParseWebhookStatus translates a raw carrier webhook payload into a
	// normalized event. Unknown raw statuses yield StatusUnrecognized, not an
	// error.
	ParseWebhookStatus(payload []byte) (*WebhookEvent, error)
}

// LabelPrinter is implemented by carriers that support batch label printing.
type LabelPrinter interface {
	// PrintLabels requests a single print document covering the given
	// tracking codes and returns its URL.
	PrintLabels(ctx context.Context, trackingCodes []string) (string, error)
}
