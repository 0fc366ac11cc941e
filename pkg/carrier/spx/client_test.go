package spx_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/spx"
	"go.uber.org/zap"
)

func newTestClient(mockClient *spx.MockAPIClient) *spx.Client {
	logger := otelzap.New(zap.NewNop())
	return spx.NewWithAPIClient(
		spx.Config{AppID: "test-app", Secret: "test-secret"},
		mockClient,
		logger,
		nil,
	)
}

func TestClient_Quote_Success(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := &carrier.QuoteRequest{
		Origin:      carrier.Address{ProvinceCode: "01", DistrictCode: "001", WardCode: "00001"},
		Destination: carrier.Address{ProvinceCode: "79", DistrictCode: "760", WardCode: "26734"},
		WeightGrams: 800,
		CODAmount:   150000,
	}

	ctx := context.Background()
	quote, err := client.Quote(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "spx", quote.Provider)
	assert.Equal(t, carrier.SourceLive, quote.Source)
	assert.Equal(t, int64(18500), quote.Fee)
	assert.Equal(t, "2-4 ngày", quote.ETA)
}

func TestClient_Quote_APIError(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.Quote(ctx, &carrier.QuoteRequest{WeightGrams: 500})

	assert.True(t, errors.Is(err, carrier.ErrQuoteUnavailable))
}

func TestClient_CreateWaybill_Success(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	var captured *spx.CreateOrderRequest
	mockAPI.OnCreateOrder = func(ctx context.Context, req *spx.CreateOrderRequest) (*spx.CreateOrderResponse, error) {
		captured = req
		return &spx.CreateOrderResponse{
			RetCode: spx.RetOK,
			Data: spx.CreateOrderData{
				TrackingNo:    "SPXVN00012345",
				TotalFee:      18500,
				EstimatedDays: "2-4",
			},
		}, nil
	}
	client := newTestClient(mockAPI)

	req := &carrier.WaybillRequest{
		OrderID:   "ord-9",
		Reference: "ord-9",
		Sender:    carrier.Address{Name: "Shop", Phone: "0900000000", ProvinceCode: "01", DistrictCode: "001", WardCode: "00001"},
		Receiver:  carrier.Address{Name: "Khách", Phone: "0911111111", ProvinceCode: "79", DistrictCode: "760", WardCode: "26734"},
		Items: []carrier.Item{
			{Name: "Giày", Qty: 1, UnitPrice: 450000, WeightGrams: 700},
		},
		WeightGrams: 700,
		CODAmount:   450000,
	}

	ctx := context.Background()
	wb, err := client.CreateWaybill(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, "SPXVN00012345", wb.TrackingCode)
	assert.Equal(t, "spx", wb.Provider)
	assert.Equal(t, int64(18500), wb.Fee)

	require.NotNil(t, captured)
	assert.Equal(t, "ord-9", captured.RequestID, "order id doubles as the carrier dedupe key")
	assert.Equal(t, 700, captured.WeightGram)
	assert.Len(t, captured.Items, 1)
}

func TestClient_CancelWaybill_Success(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	client := newTestClient(mockAPI)

	ctx := context.Background()
	err := client.CancelWaybill(ctx, "SPXVN00012345")
	assert.NoError(t, err)
}

func TestClient_CancelWaybill_AlreadyTerminal(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	mockAPI.OnCancelOrder = func(ctx context.Context, trackingNo string) (*spx.CancelOrderResponse, error) {
		return nil, &spx.APIError{RetCode: spx.RetOrderTerminal, Message: "order completed"}
	}
	client := newTestClient(mockAPI)

	ctx := context.Background()
	err := client.CancelWaybill(ctx, "SPXVN00012345")

	assert.True(t, errors.Is(err, carrier.ErrAlreadyTerminal))
}

func TestClient_CancelWaybill_SystemBusyRetryable(t *testing.T) {
	mockAPI := spx.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	ctx := context.Background()
	err := client.CancelWaybill(ctx, "SPXVN00012345")

	require.Error(t, err)
	assert.True(t, carrier.IsRetryable(err))
}

func TestClient_ParseWebhookStatus(t *testing.T) {
	client := newTestClient(spx.NewMockAPIClient())

	tests := []struct {
		name string
		code int
		want carrier.Status
	}{
		{"order created", 1, carrier.StatusConfirmed},
		{"picked up", 2, carrier.StatusShipping},
		{"out for delivery", 4, carrier.StatusShipping},
		{"delivered", 5, carrier.StatusDelivered},
		{"returning", 6, carrier.StatusReturning},
		{"returned", 7, carrier.StatusReturned},
		{"cancelled", 8, carrier.StatusCancelled},
		{"lost", 9, carrier.StatusLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(`{"tracking_no":"SPXVN00012345","order_status":` +
				strconv.Itoa(tt.code) + `,"timestamp":1755856200}`)

			ev, err := client.ParseWebhookStatus(payload)
			require.NoError(t, err)
			assert.Equal(t, "SPXVN00012345", ev.TrackingCode)
			assert.Equal(t, tt.want, ev.Status)
			assert.Equal(t, time.Unix(1755856200, 0), ev.OccurredAt)
		})
	}
}

func TestClient_ParseWebhookStatus_Unknown(t *testing.T) {
	client := newTestClient(spx.NewMockAPIClient())

	payload := []byte(`{"tracking_no":"SPXVN00012345","order_status":42,"status_text":"internal"}`)
	ev, err := client.ParseWebhookStatus(payload)

	require.NoError(t, err)
	assert.Equal(t, carrier.StatusUnrecognized, ev.Status)
	assert.Contains(t, ev.RawStatus, "42")
}

func TestClient_ParseWebhookStatus_BadPayload(t *testing.T) {
	client := newTestClient(spx.NewMockAPIClient())

	_, err := client.ParseWebhookStatus([]byte(`{{`))
	assert.Error(t, err)

	_, err = client.ParseWebhookStatus([]byte(`{"order_status":5}`))
	assert.Error(t, err, "missing tracking_no is rejected")
}

func TestClient_NoLabelPrinting(t *testing.T) {
	client := newTestClient(spx.NewMockAPIClient())

	// SPX has no batch label endpoint; the capability must not be advertised.
	var c carrier.Carrier = client
	_, ok := c.(carrier.LabelPrinter)
	assert.False(t, ok)
}
