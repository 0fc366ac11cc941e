package viettelpost

import (
	"context"
)

// APIClient defines the interface for Viettel Post API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetPrice fetches a freight price for a shipment
	GetPrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error)

	// CreateOrder registers a new waybill
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)

	// UpdateOrder changes an order's state; TYPE 4 cancels it
	UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*UpdateOrderResponse, error)

	// GetPrintLink returns a single print document for a set of waybills
	GetPrintLink(ctx context.Context, orderNumbers []string) (*PrintLinkResponse, error)
}

// ============================================================================
// API Request/Response Types (Viettel Post partner API uses uppercase keys)
// ============================================================================

// PriceRequest represents a price lookup.
// POST /order/getPrice
type PriceRequest struct {
	SenderProvince   string `json:"SENDER_PROVINCE"`
	SenderDistrict   string `json:"SENDER_DISTRICT"`
	ReceiverProvince string `json:"RECEIVER_PROVINCE"`
	ReceiverDistrict string `json:"RECEIVER_DISTRICT"`
	ProductWeight    int    `json:"PRODUCT_WEIGHT"` // grams
	MoneyCollection  int64  `json:"MONEY_COLLECTION"`
	OrderService     string `json:"ORDER_SERVICE,omitempty"`
	ProductType      string `json:"PRODUCT_TYPE"` // "HH" for goods
	NationalType     int    `json:"NATIONAL_TYPE"` // 1 = domestic
}

// PriceResponse represents a price lookup result.
type PriceResponse struct {
	Status  int       `json:"status"`
	Error   bool      `json:"error"`
	Message string    `json:"message"`
	Data    PriceData `json:"data"`
}

// PriceData carries the priced service.
type PriceData struct {
	MoneyTotal     int64  `json:"MONEY_TOTAL"`
	MoneyTotalFee  int64  `json:"MONEY_TOTAL_FEE"`
	MoneyFee       int64  `json:"MONEY_FEE"`
	KpiHT          string `json:"KPI_HT"` // delivery commitment, e.g. "48 giờ"
	ServiceCode    string `json:"SERVICE_CODE"`
	ServiceName    string `json:"SERVICE_NAME"`
}

// OrderRequest represents a waybill creation.
// POST /order/createOrder
type OrderRequest struct {
	OrderNumber      string      `json:"ORDER_NUMBER"` // partner reference, dedupe key
	SenderFullname   string      `json:"SENDER_FULLNAME"`
	SenderPhone      string      `json:"SENDER_PHONE"`
	SenderAddress    string      `json:"SENDER_ADDRESS"`
	SenderProvince   string      `json:"SENDER_PROVINCE"`
	SenderDistrict   string      `json:"SENDER_DISTRICT"`
	SenderWard       string      `json:"SENDER_WARD"`
	ReceiverFullname string      `json:"RECEIVER_FULLNAME"`
	ReceiverPhone    string      `json:"RECEIVER_PHONE"`
	ReceiverAddress  string      `json:"RECEIVER_ADDRESS"`
	ReceiverProvince string      `json:"RECEIVER_PROVINCE"`
	ReceiverDistrict string      `json:"RECEIVER_DISTRICT"`
	ReceiverWard     string      `json:"RECEIVER_WARD"`
	ProductWeight    int         `json:"PRODUCT_WEIGHT"`
	OrderService     string      `json:"ORDER_SERVICE"`
	MoneyCollection  int64       `json:"MONEY_COLLECTION"`
	OrderNote        string      `json:"ORDER_NOTE,omitempty"`
	ListItem         []OrderItem `json:"LIST_ITEM"`
}

// OrderItem is one product line on a waybill.
type OrderItem struct {
	ProductName     string `json:"PRODUCT_NAME"`
	ProductQuantity int    `json:"PRODUCT_QUANTITY"`
	ProductPrice    int64  `json:"PRODUCT_PRICE"`
	ProductWeight   int    `json:"PRODUCT_WEIGHT"`
}

// OrderResponse represents a waybill creation result.
type OrderResponse struct {
	Status  int       `json:"status"`
	Error   bool      `json:"error"`
	Message string    `json:"message"`
	Data    OrderData `json:"data"`
}

// OrderData carries the created waybill.
type OrderData struct {
	OrderNumber   string `json:"ORDER_NUMBER"` // Viettel Post tracking code
	MoneyTotal    int64  `json:"MONEY_TOTAL"`
	MoneyTotalFee int64  `json:"MONEY_TOTAL_FEE"`
	KpiHT         string `json:"KPI_HT"`
}

// UpdateOrderRequest mutates an order's state.
// POST /order/UpdateOrder; TYPE 4 = cancel.
type UpdateOrderRequest struct {
	Type        int    `json:"TYPE"`
	OrderNumber string `json:"ORDER_NUMBER"`
	Note        string `json:"NOTE,omitempty"`
}

// UpdateOrderResponse represents the mutation result.
type UpdateOrderResponse struct {
	Status  int    `json:"status"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// PrintLinkResponse carries the URL of a print document.
// POST /order/printing-code
type PrintLinkResponse struct {
	Status  int    `json:"status"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    string `json:"data"` // hosted PDF link
}

// WebhookPayload is the body Viettel Post posts on status changes.
type WebhookPayload struct {
	Data WebhookData `json:"DATA"`
}

// WebhookData is the webhook's inner record.
type WebhookData struct {
	OrderNumber     string `json:"ORDER_NUMBER"`
	OrderStatus     int    `json:"ORDER_STATUS"`
	StatusName      string `json:"STATUS_NAME"`
	OrderStatusDate string `json:"ORDER_STATUS_DATE"` // "02/01/2006 15:04:05"
	Note            string `json:"NOTE"`
}

// APIError represents an error from the Viettel Post API.
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}
