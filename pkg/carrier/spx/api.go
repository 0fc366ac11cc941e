package spx

import (
	"context"
)

// APIClient defines the interface for SPX open-platform operations.
type APIClient interface {
	// GetRate fetches a freight rate
	GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateOrder registers a new waybill
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)

	// CancelOrder cancels an existing waybill
	CancelOrder(ctx context.Context, trackingNo string) (*CancelOrderResponse, error)
}

// ============================================================================
// API Request/Response Types (SPX open platform, snake_case envelope)
// ============================================================================

// RateRequest represents a rate lookup.
// POST /open/api/v1/order/get_rate
type RateRequest struct {
	SenderLocation   LocationRef `json:"sender_location"`
	ReceiverLocation LocationRef `json:"receiver_location"`
	WeightGram       int         `json:"weight_gram"`
	CodAmount        int64       `json:"cod_amount"`
	ServiceType      int         `json:"service_type,omitempty"`
}

// LocationRef identifies an administrative unit triple.
type LocationRef struct {
	Province string `json:"province"`
	District string `json:"district"`
	Ward     string `json:"ward,omitempty"`
}

// RateResponse represents a rate lookup result.
type RateResponse struct {
	RetCode int      `json:"retcode"`
	Message string   `json:"message"`
	Data    RateData `json:"data"`
}

// RateData carries the priced service.
type RateData struct {
	TotalFee      int64  `json:"total_fee"`
	BasicFee      int64  `json:"basic_fee"`
	CodServiceFee int64  `json:"cod_service_fee"`
	ServiceType   int    `json:"service_type"`
	ServiceName   string `json:"service_name"`
	EstimatedDays string `json:"estimated_days"` // e.g. "2-4"
}

// CreateOrderRequest represents a waybill creation.
// POST /open/api/v1/order/create
type CreateOrderRequest struct {
	RequestID        string      `json:"request_id"` // partner dedupe token
	SenderName       string      `json:"sender_name"`
	SenderPhone      string      `json:"sender_phone"`
	SenderAddress    string      `json:"sender_address"`
	SenderLocation   LocationRef `json:"sender_location"`
	ReceiverName     string      `json:"receiver_name"`
	ReceiverPhone    string      `json:"receiver_phone"`
	ReceiverAddress  string      `json:"receiver_address"`
	ReceiverLocation LocationRef `json:"receiver_location"`
	WeightGram       int         `json:"weight_gram"`
	CodAmount        int64       `json:"cod_amount"`
	ServiceType      int         `json:"service_type"`
	Remark           string      `json:"remark,omitempty"`
	Items            []OrderItem `json:"item_list"`
}

// OrderItem is one product line on a waybill.
type OrderItem struct {
	ItemName  string `json:"item_name"`
	ItemQty   int    `json:"item_quantity"`
	ItemPrice int64  `json:"item_price"`
}

// CreateOrderResponse represents a waybill creation result.
type CreateOrderResponse struct {
	RetCode int             `json:"retcode"`
	Message string          `json:"message"`
	Data    CreateOrderData `json:"data"`
}

// CreateOrderData carries the created waybill.
type CreateOrderData struct {
	TrackingNo    string `json:"tracking_no"`
	TotalFee      int64  `json:"total_fee"`
	EstimatedDays string `json:"estimated_days"`
}

// CancelOrderResponse represents a cancellation result.
// POST /open/api/v1/order/cancel
type CancelOrderResponse struct {
	RetCode int    `json:"retcode"`
	Message string `json:"message"`
}

// Known retcodes.
const (
	RetOK             = 0
	RetOrderTerminal  = 21101 // order already delivered or returned
	RetSystemBusy     = 90001
	RetInvalidRequest = 10002
)

// WebhookPayload is the body SPX posts on tracking updates.
type WebhookPayload struct {
	TrackingNo string `json:"tracking_no"`
	Status     int    `json:"order_status"`
	StatusText string `json:"status_text"`
	Timestamp  int64  `json:"timestamp"` // unix seconds
	Remark     string `json:"remark"`
}

// APIError represents an error envelope from the SPX API.
type APIError struct {
	RetCode    int
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return e.Message
}
