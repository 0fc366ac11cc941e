package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/internal/repo/memory"
	"github.com/vietcart/fulfillment/internal/server"
	"github.com/vietcart/fulfillment/internal/shipping"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"github.com/vietcart/fulfillment/pkg/carrier/mock"
)

type testStack struct {
	handler http.Handler
	repo    *memory.Repository
	carrier *mock.Client
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	logger := telemetry.NopLogger()
	metrics := telemetry.NewTestMetrics()

	c := mock.New("mockship")
	registry := carrier.NewRegistry()
	registry.Register(c)

	fees := carrier.NewFeeTable()
	fees.Set("mockship", 5000, []carrier.Bracket{
		{CeilingGrams: 1000, Price: 18000},
		{CeilingGrams: 2000, Price: 23000},
	})

	resolver := address.Default()
	repo := memory.New()
	sender := shipping.SenderSettings{
		Name:         "VietCart Shop",
		Phone:        "0900000000",
		Street:       "12 Phúc Xá",
		ProvinceCode: "01",
		DistrictCode: "001",
		WardCode:     "00001",
	}

	quotes := shipping.NewOrchestrator(registry, fees, resolver, logger, metrics, 0)
	waybills := shipping.NewWaybillService(repo, registry, quotes, resolver, sender, logger, metrics)
	bulk := shipping.NewBulkRunner(waybills, repo, registry, logger, 2)

	srv := server.New(server.Config{Port: 0}, registry, quotes, waybills, bulk, logger, metrics)
	return &testStack{handler: srv.Router(), repo: repo, carrier: c}
}

func (s *testStack) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func seedOrder(s *testStack, id string) {
	s.repo.Put(&order.Order{
		ID:     id,
		Status: carrier.StatusPending,
		Items: []order.Item{
			{SKU: "TSHIRT", Name: "Áo thun", Qty: 1, UnitPrice: 240000, WeightGrams: 600},
		},
		Customer: order.Customer{
			Name:         "Nguyễn Văn A",
			Phone:        "0911111111",
			Address:      "45 Lê Lợi",
			ProvinceCode: "79",
			DistrictCode: "760",
			WardCode:     "26734",
		},
		Totals: order.Totals{Subtotal: 240000, Total: 240000},
	})
}

func TestServer_Health(t *testing.T) {
	s := newTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Quote(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/quote", `{
		"province_code": "79",
		"district_code": "760",
		"ward_code": "26734",
		"weight_grams": 1500
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Quotes []carrier.Quote `json:"quotes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, "mockship", resp.Quotes[0].Provider)
	assert.Equal(t, carrier.SourceLive, resp.Quotes[0].Source)
}

func TestServer_Quote_BadAddress(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/quote", `{
		"province_code": "79",
		"district_code": "999",
		"ward_code": "26734",
		"weight_grams": 500
	}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_address_code")
}

func TestServer_Quote_MissingFields(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/quote", `{"weight_grams": 500}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Quote_InvalidJSON(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/quote", `{{{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Create(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	rec := s.post("/shipping/create", `{"order_id": "ord-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		TrackingCode string `json:"tracking_code"`
		Provider     string `json:"provider"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.TrackingCode)
	assert.Equal(t, "mockship", resp.Provider)
}

func TestServer_Create_Duplicate(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	rec := s.post("/shipping/create", `{"order_id": "ord-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.post("/shipping/create", `{"order_id": "ord-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_processed")
}

func TestServer_Create_NotFound(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/create", `{"order_id": "ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Create_ValidationFields(t *testing.T) {
	s := newTestStack(t)

	s.repo.Put(&order.Order{
		ID:     "ord-bad",
		Status: carrier.StatusPending,
		Customer: order.Customer{
			Name: "Nguyễn Văn A",
		},
	})

	rec := s.post("/shipping/create", `{"order_id": "ord-bad"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Kind   string   `json:"kind"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_failed", resp.Kind)
	assert.Contains(t, resp.Fields, "customer.phone")
	assert.Contains(t, resp.Fields, "customer.address")
}

func TestServer_Cancel(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	require.Equal(t, http.StatusOK, s.post("/shipping/create", `{"order_id": "ord-1"}`).Code)

	rec := s.post("/shipping/cancel", `{"order_id": "ord-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	o, err := s.repo.Load(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, carrier.StatusCancelled, o.Status)
}

func TestServer_Cancel_NoTrackingCode(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	rec := s.post("/shipping/cancel", `{"order_id": "ord-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_tracking_code")
}

func TestServer_Webhook_UnknownProvider(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/webhook/ghostship", `{"tracking_code":"x","status":"delivered"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Webhook_BadPayload(t *testing.T) {
	s := newTestStack(t)

	s.carrier.OnParseWebhook = func(payload []byte) (*carrier.WebhookEvent, error) {
		return nil, carrier.NewAdapterError("mockship", "BAD_PAYLOAD", "invalid webhook payload")
	}

	rec := s.post("/shipping/webhook/mockship", `garbage`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Webhook_UnrecognizedStatusAcknowledged(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/webhook/mockship", `{"tracking_code":"mockship-1","status":"sorted_at_hub"}`)
	assert.Equal(t, http.StatusOK, rec.Code,
		"unknown statuses are logged and acknowledged so the carrier stops retrying")
}

func TestServer_Webhook_AdvancesOrder(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	require.Equal(t, http.StatusOK, s.post("/shipping/create", `{"order_id": "ord-1"}`).Code)

	o, err := s.repo.Load(context.Background(), "ord-1")
	require.NoError(t, err)
	tracking := o.Shipping.TrackingCode

	rec := s.post("/shipping/webhook/mockship", `{"tracking_code":"`+tracking+`","status":"shipping"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	o, err = s.repo.Load(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, carrier.StatusShipping, o.Status)
}

func TestServer_Webhook_UnknownTrackingAcknowledged(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/webhook/mockship", `{"tracking_code":"ghost","status":"delivered"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "carriers retry on non-2xx; unknown codes are acknowledged")
}

func TestServer_BulkConfirm(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")
	seedOrder(s, "ord-2")

	rec := s.post("/shipping/bulk/confirm", `{"order_ids": ["ord-1", "ord-2", "ghost"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []shipping.ItemResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].OK)
	assert.True(t, resp.Results[1].OK)
	assert.False(t, resp.Results[2].OK)
}

func TestServer_BulkConfirm_EmptyList(t *testing.T) {
	s := newTestStack(t)

	rec := s.post("/shipping/bulk/confirm", `{"order_ids": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_BulkPrint(t *testing.T) {
	s := newTestStack(t)
	seedOrder(s, "ord-1")

	require.Equal(t, http.StatusOK, s.post("/shipping/create", `{"order_id": "ord-1"}`).Code)

	rec := s.post("/shipping/bulk/print", `{"order_ids": ["ord-1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp shipping.PrintResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].OK)
	require.Len(t, resp.Labels, 1)
	assert.Equal(t, "mockship", resp.Labels[0].Provider)
}
