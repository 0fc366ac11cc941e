// Package spx provides integration with the SPX Express open platform.
package spx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "spx"

const quoteTimeout = 5 * time.Second

// Config holds SPX configuration.
type Config struct {
	AppID   string
	Secret  string
	BaseURL string
	UseMock bool
}

// Client is the SPX carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new SPX client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			AppID:   cfg.AppID,
			Secret:  cfg.Secret,
			Timeout: 10 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new SPX client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Quote returns a freight quote from SPX.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	apiReq := &RateRequest{
		SenderLocation:   locationToAPI(req.Origin),
		ReceiverLocation: locationToAPI(req.Destination),
		WeightGram:       req.WeightGrams,
		CodAmount:        req.CODAmount,
	}

	apiResp, err := c.apiClient.GetRate(ctx, apiReq)
	if err != nil {
		c.logger.Warn("SPX rate lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", carrier.ErrQuoteUnavailable, carrierName, err)
	}

	return &carrier.Quote{
		Provider:    carrierName,
		ServiceCode: fmt.Sprintf("%d", apiResp.Data.ServiceType),
		ServiceName: apiResp.Data.ServiceName,
		Fee:         apiResp.Data.TotalFee,
		ETA:         apiResp.Data.EstimatedDays + " ngày",
		Source:      carrier.SourceLive,
	}, nil
}

// CreateWaybill registers a shipment with SPX.
func (c *Client) CreateWaybill(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
	c.logger.Info("Creating SPX waybill",
		zap.String("order_id", req.OrderID),
		zap.String("receiver", req.Receiver.Name),
	)

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	apiReq := &CreateOrderRequest{
		RequestID:        reference,
		SenderName:       req.Sender.Name,
		SenderPhone:      req.Sender.Phone,
		SenderAddress:    req.Sender.Street,
		SenderLocation:   locationToAPI(req.Sender),
		ReceiverName:     req.Receiver.Name,
		ReceiverPhone:    req.Receiver.Phone,
		ReceiverAddress:  req.Receiver.Street,
		ReceiverLocation: locationToAPI(req.Receiver),
		WeightGram:       req.WeightGrams,
		CodAmount:        req.CODAmount,
		ServiceType:      1,
		Remark:           req.Note,
		Items:            itemsToAPI(req.Items),
	}

	apiResp, err := c.apiClient.CreateOrder(ctx, apiReq)
	if err != nil {
		c.logger.Error("SPX API error", zap.Error(err))
		return nil, c.wrapError("CREATE_FAILED", err)
	}

	raw, _ := json.Marshal(apiResp)
	return &carrier.Waybill{
		TrackingCode: apiResp.Data.TrackingNo,
		Provider:     carrierName,
		ServiceCode:  "1",
		OrderID:      req.OrderID,
		Fee:          apiResp.Data.TotalFee,
		ETA:          apiResp.Data.EstimatedDays + " ngày",
		RawPayload:   raw,
		CreatedAt:    time.Now(),
	}, nil
}

// CancelWaybill cancels a shipment with SPX.
func (c *Client) CancelWaybill(ctx context.Context, trackingCode string) error {
	c.logger.Info("Cancelling SPX waybill", zap.String("tracking_code", trackingCode))

	_, err := c.apiClient.CancelOrder(ctx, trackingCode)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetCode == RetOrderTerminal {
			return fmt.Errorf("%w: %s", carrier.ErrAlreadyTerminal, trackingCode)
		}
		c.logger.Error("SPX API error", zap.Error(err))
		return c.wrapError("CANCEL_FAILED", err)
	}
	return nil
}

// ParseWebhookStatus translates an SPX tracking webhook.
func (c *Client) ParseWebhookStatus(payload []byte) (*carrier.WebhookEvent, error) {
	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "invalid webhook payload").WithCause(err)
	}
	if body.TrackingNo == "" {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "missing tracking_no")
	}

	status, ok := statusMap[body.Status]
	if !ok {
		status = carrier.StatusUnrecognized
	}

	occurredAt := time.Now()
	if body.Timestamp > 0 {
		occurredAt = time.Unix(body.Timestamp, 0)
	}

	return &carrier.WebhookEvent{
		TrackingCode: body.TrackingNo,
		Status:       status,
		RawStatus:    fmt.Sprintf("%d %s", body.Status, body.StatusText),
		Description:  body.Remark,
		OccurredAt:   occurredAt,
	}, nil
}

func (c *Client) wrapError(code string, err error) error {
	adapterErr := carrier.NewAdapterError(carrierName, code, "SPX API call failed").WithCause(err)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		adapterErr.WithStatusCode(apiErr.HTTPStatus)
		adapterErr.WithRetryable(apiErr.RetCode == RetSystemBusy)
	}
	return adapterErr
}

func locationToAPI(addr carrier.Address) LocationRef {
	return LocationRef{
		Province: addr.ProvinceCode,
		District: addr.DistrictCode,
		Ward:     addr.WardCode,
	}
}

func itemsToAPI(items []carrier.Item) []OrderItem {
	result := make([]OrderItem, len(items))
	for i, it := range items {
		result[i] = OrderItem{
			ItemName:  it.Name,
			ItemQty:   it.Qty,
			ItemPrice: it.UnitPrice,
		}
	}
	return result
}

// statusMap translates SPX order_status codes into the canonical vocabulary.
var statusMap = map[int]carrier.Status{
	1: carrier.StatusConfirmed, // order created
	2: carrier.StatusShipping,  // picked up
	3: carrier.StatusShipping,  // in transit
	4: carrier.StatusShipping,  // out for delivery
	5: carrier.StatusDelivered, // delivered
	6: carrier.StatusReturning, // return in progress
	7: carrier.StatusReturned,  // returned to sender
	8: carrier.StatusCancelled, // cancelled
	9: carrier.StatusLost,      // lost or damaged
}

var _ carrier.Carrier = (*Client)(nil)
