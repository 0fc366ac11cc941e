package order_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/pkg/carrier"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from carrier.Status
		to   carrier.Status
		want bool
	}{
		{carrier.StatusPending, carrier.StatusConfirmed, true},
		{carrier.StatusPending, carrier.StatusCancelled, true},
		{carrier.StatusPending, carrier.StatusShipping, false},
		{carrier.StatusPending, carrier.StatusDelivered, false},
		{carrier.StatusConfirmed, carrier.StatusShipping, true},
		{carrier.StatusConfirmed, carrier.StatusCancelled, true},
		{carrier.StatusConfirmed, carrier.StatusDelivered, false},
		{carrier.StatusShipping, carrier.StatusDelivered, true},
		{carrier.StatusShipping, carrier.StatusReturning, true},
		{carrier.StatusShipping, carrier.StatusLost, true},
		{carrier.StatusShipping, carrier.StatusCancelled, true},
		{carrier.StatusReturning, carrier.StatusReturned, true},
		{carrier.StatusReturning, carrier.StatusCancelled, false},
		{carrier.StatusDelivered, carrier.StatusReturning, false},
		{carrier.StatusCancelled, carrier.StatusConfirmed, false},
		{carrier.StatusLost, carrier.StatusShipping, false},
		{carrier.StatusReturned, carrier.StatusShipping, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, order.CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(carrier.StatusDelivered))
	assert.True(t, order.IsTerminal(carrier.StatusReturned))
	assert.True(t, order.IsTerminal(carrier.StatusCancelled))
	assert.True(t, order.IsTerminal(carrier.StatusLost))

	assert.False(t, order.IsTerminal(carrier.StatusPending))
	assert.False(t, order.IsTerminal(carrier.StatusConfirmed))
	assert.False(t, order.IsTerminal(carrier.StatusShipping))
	assert.False(t, order.IsTerminal(carrier.StatusReturning))
}

func TestApply_RecordsTransition(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusPending}

	err := order.Apply(o, carrier.StatusConfirmed, "confirm")
	require.NoError(t, err)

	assert.Equal(t, carrier.StatusConfirmed, o.Status)
	require.Len(t, o.Transitions, 1)
	assert.Equal(t, carrier.StatusPending, o.Transitions[0].From)
	assert.Equal(t, carrier.StatusConfirmed, o.Transitions[0].To)
	assert.Equal(t, "confirm", o.Transitions[0].Source)
	assert.WithinDuration(t, time.Now(), o.Transitions[0].At, time.Second)
	assert.Equal(t, o.Transitions[0].At, o.UpdatedAt)
}

func TestApply_Invalid(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusDelivered}

	err := order.Apply(o, carrier.StatusShipping, "webhook:spx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, order.ErrInvalidTransition))
	assert.Equal(t, carrier.StatusDelivered, o.Status, "order untouched on rejection")
	assert.Empty(t, o.Transitions)
}

func TestApplyWebhook_Advances(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusConfirmed}
	ev := &carrier.WebhookEvent{TrackingCode: "VTP001", Status: carrier.StatusShipping}

	changed, err := order.ApplyWebhook(o, ev, "viettelpost")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, carrier.StatusShipping, o.Status)
	require.Len(t, o.Transitions, 1)
	assert.Equal(t, "webhook:viettelpost", o.Transitions[0].Source)
}

func TestApplyWebhook_UnrecognizedIgnored(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusShipping}
	ev := &carrier.WebhookEvent{Status: carrier.StatusUnrecognized, RawStatus: "999"}

	changed, err := order.ApplyWebhook(o, ev, "viettelpost")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, carrier.StatusShipping, o.Status)
}

func TestApplyWebhook_RepeatIgnored(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusShipping}
	ev := &carrier.WebhookEvent{Status: carrier.StatusShipping}

	changed, err := order.ApplyWebhook(o, ev, "spx")
	require.NoError(t, err)
	assert.False(t, changed, "carriers re-send scans; repeats are not conflicts")
}

func TestApplyWebhook_ConfirmedScanIgnored(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusShipping}
	ev := &carrier.WebhookEvent{Status: carrier.StatusConfirmed}

	changed, err := order.ApplyWebhook(o, ev, "jtexpress")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, carrier.StatusShipping, o.Status)
}

func TestApplyWebhook_TerminalRejected(t *testing.T) {
	o := &order.Order{ID: "ord-1", Status: carrier.StatusDelivered}
	ev := &carrier.WebhookEvent{Status: carrier.StatusShipping}

	changed, err := order.ApplyWebhook(o, ev, "spx")
	assert.False(t, changed)
	assert.True(t, errors.Is(err, order.ErrInvalidTransition))
	assert.Equal(t, carrier.StatusDelivered, o.Status, "terminal orders never move")
}

func TestOrder_WeightGrams(t *testing.T) {
	o := &order.Order{Items: []order.Item{
		{WeightGrams: 300, Qty: 2},
		{WeightGrams: 150, Qty: 1},
	}}
	assert.Equal(t, 750, o.WeightGrams())
}

func TestOrder_RecomputeTotal(t *testing.T) {
	o := &order.Order{Totals: order.Totals{Subtotal: 200000, ShippingFee: 23000, Discount: 30000}}
	o.RecomputeTotal()
	assert.Equal(t, int64(193000), o.Totals.Total)

	o.Totals.Discount = 500000
	o.RecomputeTotal()
	assert.Equal(t, int64(0), o.Totals.Total, "total clamps at zero")
}

func TestOrder_Clone(t *testing.T) {
	o := &order.Order{
		ID:     "ord-1",
		Status: carrier.StatusPending,
		Items:  []order.Item{{SKU: "A", Qty: 1}},
	}
	c := o.Clone()
	c.Items[0].Qty = 9
	c.Status = carrier.StatusCancelled

	assert.Equal(t, 1, o.Items[0].Qty)
	assert.Equal(t, carrier.StatusPending, o.Status)
}
