package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/internal/shipping"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.uber.org/zap"
)

type quoteRequest struct {
	ProvinceCode string `json:"province_code" validate:"required"`
	DistrictCode string `json:"district_code" validate:"required"`
	WardCode     string `json:"ward_code" validate:"required"`
	WeightGrams  int    `json:"weight_grams" validate:"gt=0"`
	CODAmount    int64  `json:"cod_amount" validate:"gte=0"`
}

type quoteResponse struct {
	Quotes []carrier.Quote `json:"quotes"`
}

type createRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type createResponse struct {
	TrackingCode string `json:"tracking_code"`
	Provider     string `json:"provider"`
	Fee          int64  `json:"fee"`
}

type cancelRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type cancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Warning   string `json:"warning,omitempty"`
}

type bulkRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1"`
}

type errorResponse struct {
	Kind   string   `json:"kind"`
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// handleQuote quotes freight for a destination. POST /shipping/quote.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	origin := s.waybills.Sender().Address()
	destination := carrier.Address{
		ProvinceCode: req.ProvinceCode,
		DistrictCode: req.DistrictCode,
		WardCode:     req.WardCode,
	}

	quotes, err := s.orchestrator.GetQuotes(r.Context(), origin, destination, req.WeightGrams, req.CODAmount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, quoteResponse{Quotes: quotes})
}

// handleCreate creates a waybill for one order. POST /shipping/create.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decode(w, r, &req) {
		return
	}

	wb, err := s.waybills.Create(r.Context(), req.OrderID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, createResponse{
		TrackingCode: wb.TrackingCode,
		Provider:     wb.Provider,
		Fee:          wb.Fee,
	})
}

// handleCancel cancels one order's waybill. POST /shipping/cancel.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.waybills.Cancel(r.Context(), req.OrderID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cancelResponse{Cancelled: true, Warning: res.Warning})
}

// handleWebhook consumes a raw carrier status callback.
// POST /shipping/webhook/{provider}.
//
// Carriers retry on non-2xx, so anything that is not our infrastructure
// failing answers 200: unrecognized statuses, unknown tracking codes and
// transition conflicts are logged and acknowledged.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	c, err := s.registry.Get(provider)
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Kind: "unknown_provider", Error: err.Error()})
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "bad_payload", Error: err.Error()})
		return
	}

	ev, err := c.ParseWebhookStatus(payload)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "bad_payload", Error: err.Error()})
		return
	}

	if ev.Status == carrier.StatusUnrecognized {
		s.logger.Info("ignoring unrecognized webhook status",
			zap.String("carrier", provider),
			zap.String("tracking_code", ev.TrackingCode),
			zap.String("raw_status", ev.RawStatus),
		)
		s.metrics.RecordWebhook(provider, string(carrier.StatusUnrecognized))
		w.WriteHeader(http.StatusOK)
		return
	}

	_, err = s.waybills.ApplyWebhook(r.Context(), provider, ev)
	switch {
	case err == nil:
	case errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrInvalidTransition):
		s.logger.Warn("webhook not applied",
			zap.String("carrier", provider),
			zap.String("tracking_code", ev.TrackingCode),
			zap.Error(err),
		)
	default:
		s.logger.Error("webhook processing failed",
			zap.String("carrier", provider),
			zap.Error(err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleBulkConfirm creates waybills for a set of orders.
// POST /shipping/bulk/confirm.
func (s *Server) handleBulkConfirm(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decode(w, r, &req) {
		return
	}
	results := s.bulk.RunConfirm(r.Context(), req.OrderIDs)
	s.recordBulk("confirm", results)
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleBulkCancel cancels a set of orders. POST /shipping/bulk/cancel.
func (s *Server) handleBulkCancel(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decode(w, r, &req) {
		return
	}
	results := s.bulk.RunCancel(r.Context(), req.OrderIDs)
	s.recordBulk("cancel", results)
	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleBulkPrint prints labels for a set of orders.
// POST /shipping/bulk/print.
func (s *Server) handleBulkPrint(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decode(w, r, &req) {
		return
	}
	result := s.bulk.RunPrint(r.Context(), req.OrderIDs)
	s.recordBulk("print", result.Items)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) recordBulk(operation string, results []shipping.ItemResult) {
	for _, res := range results {
		outcome := "failed"
		switch {
		case res.Skipped:
			outcome = "skipped"
		case res.OK:
			outcome = "ok"
		}
		s.metrics.RecordBulkItem(operation, outcome)
	}
}

// decode parses and validates a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "bad_request", Error: "invalid JSON: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "bad_request", Error: err.Error()})
		return false
	}
	return true
}

// writeError maps the error taxonomy onto HTTP statuses, keeping the
// specific kind so the admin UI can render an actionable message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if ve, ok := shipping.AsValidationError(err); ok {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Kind:   "validation_failed",
			Error:  ve.Error(),
			Fields: ve.Fields,
		})
		return
	}

	var kind string
	var status int
	switch {
	case errors.Is(err, address.ErrIncompleteAddress):
		kind, status = "incomplete_address", http.StatusUnprocessableEntity
	case errors.Is(err, address.ErrUnknownCode):
		kind, status = "unknown_address_code", http.StatusUnprocessableEntity
	case errors.Is(err, shipping.ErrAlreadyProcessed):
		kind, status = "already_processed", http.StatusConflict
	case errors.Is(err, shipping.ErrNoTrackingCode):
		kind, status = "no_tracking_code", http.StatusConflict
	case errors.Is(err, shipping.ErrNoLiveQuote):
		kind, status = "no_live_quote", http.StatusBadGateway
	case errors.Is(err, order.ErrInvalidTransition):
		kind, status = "invalid_transition", http.StatusConflict
	case errors.Is(err, order.ErrNotFound):
		kind, status = "not_found", http.StatusNotFound
	case errors.Is(err, carrier.ErrAlreadyTerminal):
		kind, status = "already_terminal", http.StatusConflict
	case errors.Is(err, carrier.ErrCarrierNotFound):
		kind, status = "unknown_provider", http.StatusBadRequest
	case errors.Is(err, carrier.ErrQuoteUnavailable):
		kind, status = "quote_unavailable", http.StatusBadGateway
	default:
		kind, status = "adapter_error", http.StatusBadGateway
	}
	s.writeJSON(w, status, errorResponse{Kind: kind, Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}
