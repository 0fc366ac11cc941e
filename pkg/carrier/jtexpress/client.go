// Package jtexpress provides integration with the J&T Express gateway.
package jtexpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "jtexpress"

const quoteTimeout = 5 * time.Second

// Config holds J&T Express configuration.
type Config struct {
	CustomerCode string
	Key          string
	BaseURL      string
	UseMock      bool
}

// Client is the J&T Express carrier client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new J&T Express client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:      cfg.BaseURL,
			CustomerCode: cfg.CustomerCode,
			Key:          cfg.Key,
			Timeout:      10 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new J&T Express client with a custom API client.
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

// Quote returns a freight quote from J&T Express.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	apiReq := &FreightRequest{
		SendProvince: req.Origin.ProvinceCode,
		SendCity:     req.Origin.DistrictCode,
		DestProvince: req.Destination.ProvinceCode,
		DestCity:     req.Destination.DistrictCode,
		Weight:       gramsToKg(req.WeightGrams),
		CodMoney:     strconv.FormatInt(req.CODAmount, 10),
		ProductType:  "EZ",
	}

	apiResp, err := c.apiClient.GetFreight(ctx, apiReq)
	if err != nil {
		c.logger.Warn("J&T freight lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", carrier.ErrQuoteUnavailable, carrierName, err)
	}

	fee, err := strconv.ParseInt(apiResp.Data.Freight, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: bad freight value %q", carrier.ErrQuoteUnavailable, carrierName, apiResp.Data.Freight)
	}

	return &carrier.Quote{
		Provider:    carrierName,
		ServiceCode: apiResp.Data.ProductType,
		ServiceName: "J&T Express " + apiResp.Data.ProductType,
		Fee:         fee,
		ETA:         apiResp.Data.Aging,
		Source:      carrier.SourceLive,
	}, nil
}

// CreateWaybill registers a shipment with J&T Express.
func (c *Client) CreateWaybill(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
	c.logger.Info("Creating J&T waybill",
		zap.String("order_id", req.OrderID),
		zap.String("receiver", req.Receiver.Name),
	)

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	var itemsValue int64
	for _, it := range req.Items {
		itemsValue += it.UnitPrice * int64(it.Qty)
	}

	apiReq := &OrderRequest{
		TxLogisticID: reference,
		ProductType:  "EZ",
		Sender:       partyToAPI(req.Sender),
		Receiver:     partyToAPI(req.Receiver),
		Weight:       gramsToKg(req.WeightGrams),
		ItemsValue:   strconv.FormatInt(itemsValue, 10),
		CodMoney:     strconv.FormatInt(req.CODAmount, 10),
		Remark:       req.Note,
		Items:        itemsToAPI(req.Items),
	}

	apiResp, err := c.apiClient.CreateOrder(ctx, apiReq)
	if err != nil {
		c.logger.Error("J&T API error", zap.Error(err))
		return nil, c.wrapError("CREATE_FAILED", err)
	}

	fee, _ := strconv.ParseInt(apiResp.Data.Freight, 10, 64)
	raw, _ := json.Marshal(apiResp)
	return &carrier.Waybill{
		TrackingCode: apiResp.Data.BillCode,
		Provider:     carrierName,
		ServiceCode:  "EZ",
		OrderID:      req.OrderID,
		Fee:          fee,
		ETA:          apiResp.Data.Aging,
		RawPayload:   raw,
		CreatedAt:    time.Now(),
	}, nil
}

// CancelWaybill cancels a shipment with J&T Express.
func (c *Client) CancelWaybill(ctx context.Context, trackingCode string) error {
	c.logger.Info("Cancelling J&T waybill", zap.String("tracking_code", trackingCode))

	_, err := c.apiClient.CancelOrder(ctx, trackingCode, "shop cancelled")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeTerminal {
			return fmt.Errorf("%w: %s", carrier.ErrAlreadyTerminal, trackingCode)
		}
		c.logger.Error("J&T API error", zap.Error(err))
		return c.wrapError("CANCEL_FAILED", err)
	}
	return nil
}

// ParseWebhookStatus translates a J&T scan webhook.
func (c *Client) ParseWebhookStatus(payload []byte) (*carrier.WebhookEvent, error) {
	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "invalid webhook payload").WithCause(err)
	}
	if body.BillCode == "" {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "missing billcode")
	}

	status, ok := statusMap[body.ScanType]
	if !ok {
		status = carrier.StatusUnrecognized
	}

	occurredAt := time.Now()
	if t, err := time.Parse("2006-01-02 15:04:05", body.ScanTime); err == nil {
		occurredAt = t
	}

	return &carrier.WebhookEvent{
		TrackingCode: body.BillCode,
		Status:       status,
		RawStatus:    body.ScanType,
		Description:  body.Desc,
		OccurredAt:   occurredAt,
	}, nil
}

// PrintLabels requests one print document for a set of waybills.
func (c *Client) PrintLabels(ctx context.Context, trackingCodes []string) (string, error) {
	resp, err := c.apiClient.PrintOrders(ctx, trackingCodes)
	if err != nil {
		return "", c.wrapError("PRINT_FAILED", err)
	}
	return resp.Data, nil
}

func (c *Client) wrapError(code string, err error) error {
	return carrier.NewAdapterError(carrierName, code, "J&T API call failed").WithCause(err)
}

func partyToAPI(addr carrier.Address) Party {
	return Party{
		Name:     addr.Name,
		Phone:    addr.Phone,
		Address:  addr.Street,
		Province: addr.ProvinceCode,
		City:     addr.DistrictCode,
		Area:     addr.WardCode,
	}
}

func itemsToAPI(items []carrier.Item) []OrderItem {
	result := make([]OrderItem, len(items))
	for i, it := range items {
		result[i] = OrderItem{
			ItemName:  it.Name,
			Number:    it.Qty,
			ItemValue: strconv.FormatInt(it.UnitPrice, 10),
		}
	}
	return result
}

// gramsToKg renders grams as a kg string with two decimals, which is what the
// gateway expects.
func gramsToKg(grams int) string {
	return strconv.FormatFloat(float64(grams)/1000.0, 'f', 2, 64)
}

// statusMap translates J&T scan types into the canonical vocabulary. The
// gateway sends Vietnamese scan words.
var statusMap = map[string]carrier.Status{
	"Tiếp nhận":           carrier.StatusConfirmed,
	"Lấy hàng":            carrier.StatusShipping,
	"Đang vận chuyển":     carrier.StatusShipping,
	"Đang giao hàng":      carrier.StatusShipping,
	"Giao hàng thành công": carrier.StatusDelivered,
	"Đang chuyển hoàn":    carrier.StatusReturning,
	"Chuyển hoàn thành công": carrier.StatusReturned,
	"Đã hủy":              carrier.StatusCancelled,
	"Thất lạc":            carrier.StatusLost,
}

var (
	_ carrier.Carrier      = (*Client)(nil)
	_ carrier.LabelPrinter = (*Client)(nil)
)
