package shipping_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/mock"
)

func TestBulkRunner_RunConfirm(t *testing.T) {
	f := newFixture("mockship")
	f.repo.Put(pendingOrder("ord-1"))
	f.repo.Put(pendingOrder("ord-2"))
	f.repo.Put(pendingOrder("ord-3"))

	results := f.bulk.RunConfirm(context.Background(), []string{"ord-1", "ord-2", "ord-3"})
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, []string{"ord-1", "ord-2", "ord-3"}[i], res.OrderID, "input order preserved")
		assert.True(t, res.OK)
		assert.Empty(t, res.Error)
	}
}

func TestBulkRunner_RunConfirm_PartialFailure(t *testing.T) {
	f := newFixture("mockship")
	f.repo.Put(pendingOrder("ord-1"))
	f.repo.Put(pendingOrder("ord-2"))

	f.carrier.OnCreateWaybill = func(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
		if req.OrderID == "ord-2" {
			return nil, carrier.NewAdapterError("mockship", "CREATE_FAILED", "rejected")
		}
		return &carrier.Waybill{TrackingCode: "mockship-" + req.OrderID, Provider: "mockship", OrderID: req.OrderID}, nil
	}

	results := f.bulk.RunConfirm(context.Background(), []string{"ord-1", "ord-2", "ord-404"})
	require.Len(t, results, 3)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Error, "rejected")
	assert.False(t, results[2].OK)
	assert.Contains(t, results[2].Error, "not found")

	// The failing neighbors never stopped ord-1.
	o, err := f.repo.Load(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, carrier.StatusConfirmed, o.Status)
}

func TestBulkRunner_RunCancel_SkipsNoTrackingCode(t *testing.T) {
	f := newFixture("mockship")

	withWaybill := pendingOrder("ord-1")
	withWaybill.Status = carrier.StatusConfirmed
	withWaybill.Shipping.Provider = "mockship"
	withWaybill.Shipping.TrackingCode = "mockship-1"
	f.repo.Put(withWaybill)
	require.NoError(t, f.repo.SaveWaybill(context.Background(), &order.Waybill{
		TrackingCode: "mockship-1", OrderID: "ord-1", Status: carrier.StatusConfirmed,
	}))

	f.repo.Put(pendingOrder("ord-2")) // never confirmed, no tracking code

	results := f.bulk.RunCancel(context.Background(), []string{"ord-1", "ord-2"})
	require.Len(t, results, 2)

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.True(t, results[1].Skipped, "no waybill to cancel is a skip, not a failure")
}

func TestBulkRunner_RunCancel_WarningPropagates(t *testing.T) {
	f := newFixture("mockship")

	o := pendingOrder("ord-1")
	o.Status = carrier.StatusConfirmed
	o.Shipping.Provider = "mockship"
	o.Shipping.TrackingCode = "mockship-1"
	f.repo.Put(o)

	f.carrier.OnCancelWaybill = func(ctx context.Context, trackingCode string) error {
		return carrier.ErrAlreadyTerminal
	}

	results := f.bulk.RunCancel(context.Background(), []string{"ord-1"})
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
	assert.NotEmpty(t, results[0].Warning)
}

func seedShipped(f *fixture, id, provider, tracking string) {
	o := pendingOrder(id)
	o.Status = carrier.StatusConfirmed
	o.Shipping.Provider = provider
	o.Shipping.TrackingCode = tracking
	f.repo.Put(o)
}

func TestBulkRunner_RunPrint_GroupsByProvider(t *testing.T) {
	f := newFixture("mockship")

	second := mock.New("othership")
	f.registry.Register(second)

	seedShipped(f, "ord-1", "mockship", "mockship-1")
	seedShipped(f, "ord-2", "othership", "othership-2")
	seedShipped(f, "ord-3", "mockship", "mockship-3")
	f.repo.Put(pendingOrder("ord-4")) // no waybill yet

	var mockshipCalls, othershipCalls [][]string
	f.carrier.OnPrintLabels = func(ctx context.Context, trackingCodes []string) (string, error) {
		mockshipCalls = append(mockshipCalls, trackingCodes)
		return "https://labels.mockship/batch.pdf", nil
	}
	second.OnPrintLabels = func(ctx context.Context, trackingCodes []string) (string, error) {
		othershipCalls = append(othershipCalls, trackingCodes)
		return "https://labels.othership/batch.pdf", nil
	}

	result := f.bulk.RunPrint(context.Background(), []string{"ord-1", "ord-2", "ord-3", "ord-4"})

	require.Len(t, result.Items, 4)
	assert.True(t, result.Items[0].OK)
	assert.True(t, result.Items[1].OK)
	assert.True(t, result.Items[2].OK)
	assert.True(t, result.Items[3].Skipped)

	// One call per provider, codes batched.
	require.Len(t, mockshipCalls, 1)
	assert.ElementsMatch(t, []string{"mockship-1", "mockship-3"}, mockshipCalls[0])
	require.Len(t, othershipCalls, 1)
	assert.ElementsMatch(t, []string{"othership-2"}, othershipCalls[0])

	require.Len(t, result.Labels, 2)
	assert.Equal(t, "mockship", result.Labels[0].Provider)
	assert.Equal(t, "othership", result.Labels[1].Provider)
}

func TestBulkRunner_RunPrint_ProviderFailureIsolated(t *testing.T) {
	f := newFixture("mockship")

	second := mock.New("othership")
	f.registry.Register(second)

	seedShipped(f, "ord-1", "mockship", "mockship-1")
	seedShipped(f, "ord-2", "othership", "othership-2")

	f.carrier.OnPrintLabels = func(ctx context.Context, trackingCodes []string) (string, error) {
		return "", carrier.NewAdapterError("mockship", "PRINT_FAILED", "printer down")
	}

	result := f.bulk.RunPrint(context.Background(), []string{"ord-1", "ord-2"})

	require.Len(t, result.Items, 2)
	assert.False(t, result.Items[0].OK, "failed provider flips its items")
	assert.Contains(t, result.Items[0].Error, "printer down")
	assert.True(t, result.Items[1].OK, "the other provider still prints")

	require.Len(t, result.Labels, 1)
	assert.Equal(t, "othership", result.Labels[0].Provider)
}

func TestBulkRunner_RunPrint_NoLabelSupport(t *testing.T) {
	f := newFixture("mockship")

	seedShipped(f, "ord-1", "mockship", "mockship-1")
	f.carrier.OnPrintLabels = nil

	// Swap in a carrier without the printing capability under the same name.
	plain := &quoteOnlyCarrier{name: "mockship"}
	f.registry.Register(plain)

	result := f.bulk.RunPrint(context.Background(), []string{"ord-1"})
	require.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].OK)
	assert.Contains(t, result.Items[0].Error, "not supported")
	assert.Empty(t, result.Labels)
}

// quoteOnlyCarrier implements Carrier without LabelPrinter.
type quoteOnlyCarrier struct {
	name string
}

func (c *quoteOnlyCarrier) Name() string { return c.name }

func (c *quoteOnlyCarrier) Quote(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error) {
	return nil, carrier.ErrQuoteUnavailable
}

func (c *quoteOnlyCarrier) CreateWaybill(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
	return nil, carrier.NewAdapterError(c.name, "UNSUPPORTED", "not implemented")
}

func (c *quoteOnlyCarrier) CancelWaybill(ctx context.Context, trackingCode string) error {
	return nil
}

func (c *quoteOnlyCarrier) ParseWebhookStatus(payload []byte) (*carrier.WebhookEvent, error) {
	return nil, carrier.NewAdapterError(c.name, "UNSUPPORTED", "not implemented")
}

var _ carrier.Carrier = (*quoteOnlyCarrier)(nil)
