// Package mock provides a scriptable carrier implementation for testing.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietcart/fulfillment/pkg/carrier"
)

// Client is a mock carrier for testing. Zero value behavior returns canned
// successes; the On* hooks override individual operations.
type Client struct {
	name string

	QuoteFee   int64
	QuoteDelay time.Duration

	OnQuote         func(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error)
	OnCreateWaybill func(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error)
	OnCancelWaybill func(ctx context.Context, trackingCode string) error
	OnParseWebhook  func(payload []byte) (*carrier.WebhookEvent, error)
	OnPrintLabels   func(ctx context.Context, trackingCodes []string) (string, error)
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name, QuoteFee: 20000}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Quote returns a canned live quote.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error) {
	if c.OnQuote != nil {
		return c.OnQuote(ctx, req)
	}
	if c.QuoteDelay > 0 {
		select {
		case <-time.After(c.QuoteDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", carrier.ErrQuoteUnavailable, ctx.Err())
		}
	}
	return &carrier.Quote{
		Provider:    c.name,
		ServiceCode: "STD",
		ServiceName: fmt.Sprintf("%s Standard", c.name),
		Fee:         c.QuoteFee,
		ETA:         "2-3 ngày",
		Source:      carrier.SourceLive,
	}, nil
}

// CreateWaybill returns a canned waybill.
func (c *Client) CreateWaybill(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
	if c.OnCreateWaybill != nil {
		return c.OnCreateWaybill(ctx, req)
	}
	now := time.Now()
	tracking := fmt.Sprintf("%s-%d", c.name, now.UnixNano()%1000000000)
	raw, _ := json.Marshal(map[string]string{"tracking_code": tracking})
	return &carrier.Waybill{
		TrackingCode: tracking,
		Provider:     c.name,
		ServiceCode:  req.ServiceCode,
		OrderID:      req.OrderID,
		Fee:          c.QuoteFee,
		ETA:          "2-3 ngày",
		LabelURL:     fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, tracking),
		RawPayload:   raw,
		CreatedAt:    now,
	}, nil
}

// CancelWaybill succeeds unless scripted otherwise.
func (c *Client) CancelWaybill(ctx context.Context, trackingCode string) error {
	if c.OnCancelWaybill != nil {
		return c.OnCancelWaybill(ctx, trackingCode)
	}
	return nil
}

// ParseWebhookStatus decodes a {"tracking_code":..., "status":...} payload.
func (c *Client) ParseWebhookStatus(payload []byte) (*carrier.WebhookEvent, error) {
	if c.OnParseWebhook != nil {
		return c.OnParseWebhook(payload)
	}
	var body struct {
		TrackingCode string `json:"tracking_code"`
		Status       string `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, carrier.NewAdapterError(c.name, "BAD_PAYLOAD", "invalid webhook payload").WithCause(err)
	}
	status := carrier.Status(body.Status)
	switch status {
	case carrier.StatusConfirmed, carrier.StatusShipping, carrier.StatusDelivered,
		carrier.StatusReturning, carrier.StatusReturned, carrier.StatusCancelled,
		carrier.StatusLost:
	default:
		status = carrier.StatusUnrecognized
	}
	return &carrier.WebhookEvent{
		TrackingCode: body.TrackingCode,
		Status:       status,
		RawStatus:    body.Status,
		OccurredAt:   time.Now(),
	}, nil
}

// PrintLabels returns a canned print document URL.
func (c *Client) PrintLabels(ctx context.Context, trackingCodes []string) (string, error) {
	if c.OnPrintLabels != nil {
		return c.OnPrintLabels(ctx, trackingCodes)
	}
	return fmt.Sprintf("https://labels.%s.mock/batch-%d.pdf", c.name, len(trackingCodes)), nil
}

var (
	_ carrier.Carrier      = (*Client)(nil)
	_ carrier.LabelPrinter = (*Client)(nil)
)
