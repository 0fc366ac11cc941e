// Package viettelpost provides integration with the Viettel Post partner API.
package viettelpost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "viettelpost"

const quoteTimeout = 5 * time.Second

// Config holds Viettel Post configuration.
type Config struct {
	Token   string
	BaseURL string
	UseMock bool // When true, uses mock API client
}

// Client is the Viettel Post carrier client.
// It implements the carrier.Carrier interface and delegates
// API calls to the underlying APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Viettel Post client.
// If cfg.UseMock is true, it uses a mock API client for testing.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			Token:   cfg.Token,
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

// NewWithAPIClient creates a new Viettel Post client with a custom API client.
// This is useful for injecting mock clients in tests.
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

// Quote returns a freight quote from Viettel Post.
func (c *Client) Quote(ctx context.Context, req *carrier.QuoteRequest) (*carrier.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, quoteTimeout)
	defer cancel()

	apiReq := &PriceRequest{
		SenderProvince:   req.Origin.ProvinceCode,
		SenderDistrict:   req.Origin.DistrictCode,
		ReceiverProvince: req.Destination.ProvinceCode,
		ReceiverDistrict: req.Destination.DistrictCode,
		ProductWeight:    req.WeightGrams,
		MoneyCollection:  req.CODAmount,
		ProductType:      "HH",
		NationalType:     1,
	}

	apiResp, err := c.apiClient.GetPrice(ctx, apiReq)
	if err != nil {
		c.logger.Warn("Viettel Post price lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", carrier.ErrQuoteUnavailable, carrierName, err)
	}

	return &carrier.Quote{
		Provider:    carrierName,
		ServiceCode: apiResp.Data.ServiceCode,
		ServiceName: apiResp.Data.ServiceName,
		Fee:         apiResp.Data.MoneyTotal,
		ETA:         apiResp.Data.KpiHT,
		Source:      carrier.SourceLive,
	}, nil
}

// CreateWaybill registers a shipment with Viettel Post.
func (c *Client) CreateWaybill(ctx context.Context, req *carrier.WaybillRequest) (*carrier.Waybill, error) {
	c.logger.Info("Creating Viettel Post waybill",
		zap.String("order_id", req.OrderID),
		zap.String("receiver", req.Receiver.Name),
	)

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	service := req.ServiceCode
	if service == "" {
		service = "VCN"
	}

	apiReq := &OrderRequest{
		OrderNumber:      reference,
		SenderFullname:   req.Sender.Name,
		SenderPhone:      req.Sender.Phone,
		SenderAddress:    req.Sender.Street,
		SenderProvince:   req.Sender.ProvinceCode,
		SenderDistrict:   req.Sender.DistrictCode,
		SenderWard:       req.Sender.WardCode,
		ReceiverFullname: req.Receiver.Name,
		ReceiverPhone:    req.Receiver.Phone,
		ReceiverAddress:  req.Receiver.Street,
		ReceiverProvince: req.Receiver.ProvinceCode,
		ReceiverDistrict: req.Receiver.DistrictCode,
		ReceiverWard:     req.Receiver.WardCode,
		ProductWeight:    req.WeightGrams,
		OrderService:     service,
		MoneyCollection:  req.CODAmount,
		OrderNote:        req.Note,
		ListItem:         itemsToAPI(req.Items),
	}

	apiResp, err := c.apiClient.CreateOrder(ctx, apiReq)
	if err != nil {
		c.logger.Error("Viettel Post API error", zap.Error(err))
		return nil, c.wrapError("CREATE_FAILED", err)
	}

	raw, _ := json.Marshal(apiResp)
	return &carrier.Waybill{
		TrackingCode: apiResp.Data.OrderNumber,
		Provider:     carrierName,
		ServiceCode:  service,
		OrderID:      req.OrderID,
		Fee:          apiResp.Data.MoneyTotal,
		ETA:          apiResp.Data.KpiHT,
		RawPayload:   raw,
		CreatedAt:    time.Now(),
	}, nil
}

// CancelWaybill cancels a shipment with Viettel Post.
func (c *Client) CancelWaybill(ctx context.Context, trackingCode string) error {
	c.logger.Info("Cancelling Viettel Post waybill", zap.String("tracking_code", trackingCode))

	_, err := c.apiClient.UpdateOrder(ctx, &UpdateOrderRequest{
		Type:        4,
		OrderNumber: trackingCode,
	})
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusConflict {
			return fmt.Errorf("%w: %s", carrier.ErrAlreadyTerminal, trackingCode)
		}
		c.logger.Error("Viettel Post API error", zap.Error(err))
		return c.wrapError("CANCEL_FAILED", err)
	}
	return nil
}

// ParseWebhookStatus translates a Viettel Post status webhook.
func (c *Client) ParseWebhookStatus(payload []byte) (*carrier.WebhookEvent, error) {
	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "invalid webhook payload").WithCause(err)
	}
	if body.Data.OrderNumber == "" {
		return nil, carrier.NewAdapterError(carrierName, "BAD_PAYLOAD", "missing ORDER_NUMBER")
	}

	status, ok := statusMap[body.Data.OrderStatus]
	if !ok {
		status = carrier.StatusUnrecognized
	}

	occurredAt := time.Now()
	if t, err := time.Parse("02/01/2006 15:04:05", body.Data.OrderStatusDate); err == nil {
		occurredAt = t
	}

	return &carrier.WebhookEvent{
		TrackingCode: body.Data.OrderNumber,
		Status:       status,
		RawStatus:    fmt.Sprintf("%d %s", body.Data.OrderStatus, body.Data.StatusName),
		Description:  body.Data.Note,
		OccurredAt:   occurredAt,
	}, nil
}

// PrintLabels requests one print document for a set of waybills.
func (c *Client) PrintLabels(ctx context.Context, trackingCodes []string) (string, error) {
	resp, err := c.apiClient.GetPrintLink(ctx, trackingCodes)
	if err != nil {
		return "", c.wrapError("PRINT_FAILED", err)
	}
	return resp.Data, nil
}

func (c *Client) wrapError(code string, err error) error {
	adapterErr := carrier.NewAdapterError(carrierName, code, "Viettel Post API call failed").WithCause(err)
	if apiErr, ok := err.(*APIError); ok {
		adapterErr.WithStatusCode(apiErr.Status)
		adapterErr.WithRetryable(apiErr.Status >= 500)
	}
	return adapterErr
}

func itemsToAPI(items []carrier.Item) []OrderItem {
	result := make([]OrderItem, len(items))
	for i, it := range items {
		result[i] = OrderItem{
			ProductName:     it.Name,
			ProductQuantity: it.Qty,
			ProductPrice:    it.UnitPrice,
			ProductWeight:   it.WeightGrams,
		}
	}
	return result
}

// statusMap translates Viettel Post ORDER_STATUS codes into the canonical
// vocabulary. Codes not listed here are reported as unrecognized and ignored
// upstream.
var statusMap = map[int]carrier.Status{
	100: carrier.StatusConfirmed, // tiếp nhận đơn
	104: carrier.StatusShipping,  // giao cho bưu tá lấy hàng
	105: carrier.StatusShipping,  // đã lấy hàng
	200: carrier.StatusShipping,  // đang vận chuyển
	202: carrier.StatusShipping,  // đang giao
	501: carrier.StatusDelivered, // giao thành công
	503: carrier.StatusCancelled, // hủy theo yêu cầu
	505: carrier.StatusReturning, // đang chuyển hoàn
	507: carrier.StatusReturned,  // hoàn thành công
	515: carrier.StatusLost,      // thất lạc
}

var (
	_ carrier.Carrier      = (*Client)(nil)
	_ carrier.LabelPrinter = (*Client)(nil)
)
