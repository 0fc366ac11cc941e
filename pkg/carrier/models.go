package carrier

import (
	"time"
)

// Status is the canonical, carrier-agnostic shipment/order state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusReturning Status = "returning"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
	StatusLost      Status = "lost"

	// StatusUnrecognized marks a webhook status that the adapter could not
	// map. Consumers log and ignore it.
	StatusUnrecognized Status = "unrecognized"
)

// QuoteSource tells whether a quote came from a live carrier call or the
// static fallback table.
type QuoteSource string

const (
	SourceLive     QuoteSource = "live"
	SourceFallback QuoteSource = "fallback"
)

// Address is a shipping endpoint. Province, district and ward are Vietnamese
// administrative unit codes; names are filled in after resolution.
type Address struct {
	Name         string
	Phone        string
	Street       string
	ProvinceCode string
	DistrictCode string
	WardCode     string
	Province     string
	District     string
	Ward         string
}

// Item is one order line carried on a waybill.
type Item struct {
	SKU         string
	Name        string
	Qty         int
	UnitPrice   int64
	WeightGrams int
}

// QuoteRequest is the input for a freight quote.
type QuoteRequest struct {
	Origin      Address
	Destination Address
	WeightGrams int
	CODAmount   int64
}

// Quote is a single freight quote. Fee is in VND.
type Quote struct {
	Provider    string
	ServiceCode string
	ServiceName string
	Fee         int64
	ETA         string
	Source      QuoteSource
}

// WaybillRequest is the input for creating a shipment with a carrier.
type WaybillRequest struct {
	OrderID     string
	Reference   string // client-side idempotency token sent to the carrier
	Sender      Address
	Receiver    Address
	Items       []Item
	WeightGrams int
	CODAmount   int64
	ServiceCode string
	Note        string
}

// Waybill is the carrier-side shipment record returned on creation.
// RawPayload keeps the carrier's response verbatim for audit and replay.
type Waybill struct {
	TrackingCode string
	Provider     string
	ServiceCode  string
	OrderID      string
	Fee          int64
	ETA          string
	LabelURL     string
	RawPayload   []byte
	CreatedAt    time.Time
}

// WebhookEvent is a carrier webhook translated into the canonical vocabulary.
// RawStatus preserves the carrier's original wording for diagnostics.
type WebhookEvent struct {
	TrackingCode string
	Status       Status
	RawStatus    string
	Description  string
	OccurredAt   time.Time
}
