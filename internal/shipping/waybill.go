package shipping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/internal/address"
	"github.com/vietcart/fulfillment/internal/order"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.uber.org/zap"
)

// SenderSettings are the process-wide shop settings used as waybill sender.
// Written by the settings module, read-only here.
type SenderSettings struct {
	Name         string
	Phone        string
	Street       string
	ProvinceCode string
	DistrictCode string
	WardCode     string
}

// Address converts the settings into a carrier endpoint.
func (s SenderSettings) Address() carrier.Address {
	return carrier.Address{
		Name:         s.Name,
		Phone:        s.Phone,
		Street:       s.Street,
		ProvinceCode: s.ProvinceCode,
		DistrictCode: s.DistrictCode,
		WardCode:     s.WardCode,
	}
}

// CancelResult reports a cancellation. Warning is set when the carrier said
// the shipment was already terminal and the local state was reconciled
// anyway.
type CancelResult struct {
	Warning string
}

// WaybillService owns waybill creation and cancellation. Creation for a
// given order is mutually exclusive: a per-order lock plus the repository's
// version check guarantee that of two concurrent Create calls exactly one
// succeeds and the other observes ErrAlreadyProcessed.
type WaybillService struct {
	repo         order.Repository
	registry     *carrier.Registry
	orchestrator *Orchestrator
	resolver     *address.Resolver
	sender       SenderSettings
	logger       *otelzap.Logger
	metrics      *telemetry.Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWaybillService wires a waybill service.
func NewWaybillService(repo order.Repository, registry *carrier.Registry, orchestrator *Orchestrator, resolver *address.Resolver, sender SenderSettings, logger *otelzap.Logger, metrics *telemetry.Metrics) *WaybillService {
	return &WaybillService{
		repo:         repo,
		registry:     registry,
		orchestrator: orchestrator,
		resolver:     resolver,
		sender:       sender,
		logger:       logger,
		metrics:      metrics,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Sender returns the configured shop sender settings.
func (s *WaybillService) Sender() SenderSettings {
	return s.sender
}

// orderLock returns the mutex guarding one order id.
func (s *WaybillService) orderLock(orderID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[orderID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[orderID] = l
	}
	return l
}

// Create creates a waybill for a pending order. On success the order carries
// the tracking code and is confirmed; on failure it stays pending with
// shipping.last_error recorded and the error returned untouched. No retries
// happen here; retrying is a caller decision.
func (s *WaybillService) Create(ctx context.Context, orderID string) (*order.Waybill, error) {
	lock := s.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	o, err := s.repo.Load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != carrier.StatusPending || o.Shipping.TrackingCode != "" {
		return nil, fmt.Errorf("%w: order %s is %s", ErrAlreadyProcessed, orderID, o.Status)
	}

	if err := s.validateEndpoints(o); err != nil {
		return nil, err
	}

	provider, serviceCode, err := s.selectCarrier(ctx, o)
	if err != nil {
		return nil, err
	}
	adapter, err := s.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	req := &carrier.WaybillRequest{
		OrderID:     o.ID,
		Reference:   o.ID, // dedupe key on the carrier side
		Sender:      s.sender.Address(),
		Receiver:    receiverAddress(o),
		Items:       itemsToCarrier(o.Items),
		WeightGrams: o.WeightGrams(),
		CODAmount:   o.Totals.Total,
		ServiceCode: serviceCode,
	}

	start := time.Now()
	wb, err := adapter.CreateWaybill(ctx, req)
	if err != nil {
		s.metrics.RecordRequest("create_waybill", provider, "error", time.Since(start).Seconds())
		s.metrics.RecordError(provider, "create_waybill")
		// Keep the order pending; remember why creation failed.
		o.Shipping.LastError = err.Error()
		o.UpdatedAt = time.Now()
		if saveErr := s.repo.Save(ctx, o); saveErr != nil {
			s.logger.Warn("could not record waybill failure",
				zap.String("order_id", orderID),
				zap.Error(saveErr),
			)
		}
		return nil, err
	}
	s.metrics.RecordRequest("create_waybill", provider, "ok", time.Since(start).Seconds())

	persisted := &order.Waybill{
		TrackingCode: wb.TrackingCode,
		Provider:     wb.Provider,
		ServiceCode:  wb.ServiceCode,
		OrderID:      o.ID,
		Fee:          wb.Fee,
		Status:       carrier.StatusConfirmed,
		RawPayload:   wb.RawPayload,
		CreatedAt:    wb.CreatedAt,
	}
	if err := s.repo.SaveWaybill(ctx, persisted); err != nil {
		return nil, err
	}

	o.Shipping.Provider = wb.Provider
	o.Shipping.ServiceCode = wb.ServiceCode
	o.Shipping.TrackingCode = wb.TrackingCode
	o.Shipping.ETA = wb.ETA
	o.Shipping.LastError = ""
	o.Totals.ShippingFee = wb.Fee
	o.RecomputeTotal()
	if err := order.Apply(o, carrier.StatusConfirmed, "confirm"); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		if errors.Is(err, order.ErrConflict) {
			// Another writer moved the order while the carrier call ran.
			return nil, fmt.Errorf("%w: order %s changed concurrently", ErrAlreadyProcessed, orderID)
		}
		return nil, err
	}

	s.logger.Info("waybill created",
		zap.String("order_id", o.ID),
		zap.String("carrier", wb.Provider),
		zap.String("tracking_code", wb.TrackingCode),
	)
	return persisted, nil
}

// Cancel cancels the order's waybill with the carrier and drives the local
// cancellation. When the carrier reports the shipment already terminal, the
// local state is still reconciled to cancelled and a warning is returned
// instead of an error: carrier ground truth wins.
func (s *WaybillService) Cancel(ctx context.Context, orderID string) (*CancelResult, error) {
	lock := s.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	o, err := s.repo.Load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal(o.Status) {
		return nil, fmt.Errorf("%w: order %s is %s", order.ErrInvalidTransition, orderID, o.Status)
	}
	if o.Shipping.TrackingCode == "" {
		return nil, fmt.Errorf("%w: order %s", ErrNoTrackingCode, orderID)
	}

	adapter, err := s.registry.Get(o.Shipping.Provider)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{}
	if err := adapter.CancelWaybill(ctx, o.Shipping.TrackingCode); err != nil {
		if !errors.Is(err, carrier.ErrAlreadyTerminal) {
			s.metrics.RecordError(o.Shipping.Provider, "cancel_waybill")
			return nil, err
		}
		result.Warning = fmt.Sprintf("carrier reports %s already terminal; cancelled locally", o.Shipping.TrackingCode)
		s.logger.Warn("cancel on terminal shipment, reconciling locally",
			zap.String("order_id", orderID),
			zap.String("tracking_code", o.Shipping.TrackingCode),
		)
	}

	if err := order.Apply(o, carrier.StatusCancelled, "cancel"); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateWaybillStatus(ctx, o.Shipping.TrackingCode, carrier.StatusCancelled); err != nil {
		s.logger.Warn("could not update waybill status",
			zap.String("tracking_code", o.Shipping.TrackingCode),
			zap.Error(err),
		)
	}
	return result, nil
}

// ApplyWebhook consumes a parsed carrier event: it finds the order by
// tracking code, advances the status machine, and mirrors the status onto
// the stored waybill. Returns whether the order changed.
func (s *WaybillService) ApplyWebhook(ctx context.Context, provider string, ev *carrier.WebhookEvent) (bool, error) {
	o, err := s.repo.FindByTrackingCode(ctx, ev.TrackingCode)
	if err != nil {
		return false, err
	}

	lock := s.orderLock(o.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent admin action may have moved it.
	o, err = s.repo.Load(ctx, o.ID)
	if err != nil {
		return false, err
	}

	changed, err := order.ApplyWebhook(o, ev, provider)
	if err != nil || !changed {
		return false, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return false, err
	}
	if err := s.repo.UpdateWaybillStatus(ctx, ev.TrackingCode, ev.Status); err != nil {
		s.logger.Warn("could not update waybill status",
			zap.String("tracking_code", ev.TrackingCode),
			zap.Error(err),
		)
	}
	s.metrics.RecordWebhook(provider, string(ev.Status))
	return true, nil
}

// validateEndpoints checks sender settings and the order's receiver address,
// reporting every missing field at once.
func (s *WaybillService) validateEndpoints(o *order.Order) error {
	var fields []string

	if s.sender.Name == "" {
		fields = append(fields, "sender.name")
	}
	if s.sender.Phone == "" {
		fields = append(fields, "sender.phone")
	}
	if _, err := s.resolver.Resolve(s.sender.ProvinceCode, s.sender.DistrictCode, s.sender.WardCode); err != nil {
		fields = append(fields, "sender.address")
	}

	if o.Customer.Name == "" {
		fields = append(fields, "customer.name")
	}
	if o.Customer.Phone == "" {
		fields = append(fields, "customer.phone")
	}
	if o.Customer.Address == "" {
		fields = append(fields, "customer.address")
	}
	if _, err := s.resolver.Resolve(o.Customer.ProvinceCode, o.Customer.DistrictCode, o.Customer.WardCode); err != nil {
		if errors.Is(err, address.ErrIncompleteAddress) || errors.Is(err, address.ErrUnknownCode) {
			fields = append(fields, missingCustomerCodes(o)...)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func missingCustomerCodes(o *order.Order) []string {
	var fields []string
	if o.Customer.ProvinceCode == "" {
		fields = append(fields, "customer.province_code")
	}
	if o.Customer.DistrictCode == "" {
		fields = append(fields, "customer.district_code")
	}
	if o.Customer.WardCode == "" {
		fields = append(fields, "customer.ward_code")
	}
	if len(fields) == 0 {
		// Codes are present but unknown; report the triple as invalid.
		fields = append(fields, "customer.address_codes")
	}
	return fields
}

// selectCarrier honors an explicit provider on the order, else picks the
// cheapest live quote.
func (s *WaybillService) selectCarrier(ctx context.Context, o *order.Order) (provider, serviceCode string, err error) {
	if o.Shipping.Provider != "" {
		return o.Shipping.Provider, o.Shipping.ServiceCode, nil
	}
	quote, err := s.orchestrator.CheapestLive(ctx, s.sender.Address(), receiverAddress(o), o.WeightGrams(), o.Totals.Total)
	if err != nil {
		return "", "", err
	}
	return quote.Provider, quote.ServiceCode, nil
}

func receiverAddress(o *order.Order) carrier.Address {
	return carrier.Address{
		Name:         o.Customer.Name,
		Phone:        o.Customer.Phone,
		Street:       o.Customer.Address,
		ProvinceCode: o.Customer.ProvinceCode,
		DistrictCode: o.Customer.DistrictCode,
		WardCode:     o.Customer.WardCode,
	}
}

func itemsToCarrier(items []order.Item) []carrier.Item {
	result := make([]carrier.Item, len(items))
	for i, it := range items {
		result[i] = carrier.Item{
			SKU:         it.SKU,
			Name:        it.Name,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			WeightGrams: it.WeightGrams,
		}
	}
	return result
}
