package jtexpress

import (
	"context"
)

// APIClient defines the interface for J&T Express gateway operations.
type APIClient interface {
	// GetFreight fetches a freight estimate
	GetFreight(ctx context.Context, req *FreightRequest) (*FreightResponse, error)

	// CreateOrder registers a new waybill
	CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error)

	// CancelOrder cancels an existing waybill
	CancelOrder(ctx context.Context, billCode, reason string) (*CancelResponse, error)

	// PrintOrders returns a single print document for a set of waybills
	PrintOrders(ctx context.Context, billCodes []string) (*PrintResponse, error)
}

// ============================================================================
// API Request/Response Types. The J&T gateway wraps every call in a form
// envelope (logistics_interface JSON + data_digest); these are the inner
// payloads.
// ============================================================================

// FreightRequest represents a freight estimate lookup.
type FreightRequest struct {
	SendProvince string `json:"sendprovince"`
	SendCity     string `json:"sendcity"`
	DestProvince string `json:"destprovince"`
	DestCity     string `json:"destcity"`
	Weight       string `json:"weight"` // kg with 2 decimals, e.g. "1.50"
	CodMoney     string `json:"codmoney"`
	ProductType  string `json:"producttype"` // "EZ" standard
}

// FreightResponse represents a freight estimate result.
type FreightResponse struct {
	Code    string      `json:"code"` // "1" success
	Message string      `json:"message"`
	Data    FreightData `json:"data"`
}

// FreightData carries the estimate.
type FreightData struct {
	Freight     string `json:"freight"` // VND as string
	ProductType string `json:"producttype"`
	Aging       string `json:"aging"` // transit estimate, e.g. "2-3 ngày"
}

// OrderRequest represents a waybill creation.
type OrderRequest struct {
	TxLogisticID string      `json:"txlogisticid"` // partner dedupe key
	ProductType  string      `json:"producttype"`
	Sender       Party       `json:"sender"`
	Receiver     Party       `json:"receiver"`
	Weight       string      `json:"weight"`
	ItemsValue   string      `json:"itemsvalue"`
	CodMoney     string      `json:"codmoney"`
	Remark       string      `json:"remark,omitempty"`
	Items        []OrderItem `json:"items"`
}

// Party is a sender or receiver block.
type Party struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Province string `json:"prov"`
	City     string `json:"city"`
	Area     string `json:"area"`
}

// OrderItem is one product line on a waybill.
type OrderItem struct {
	ItemName  string `json:"itemname"`
	Number    int    `json:"number"`
	ItemValue string `json:"itemvalue"`
}

// OrderResponse represents a waybill creation result.
type OrderResponse struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Data    OrderData `json:"data"`
}

// OrderData carries the created waybill.
type OrderData struct {
	BillCode     string `json:"billcode"` // J&T tracking code
	TxLogisticID string `json:"txlogisticid"`
	SortingCode  string `json:"sortingcode"`
	Freight      string `json:"freight"`
	Aging        string `json:"aging"`
}

// CancelResponse represents a cancellation result.
type CancelResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PrintResponse carries the URL of a print document.
type PrintResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"` // hosted PDF link
}

// Response codes.
const (
	CodeOK       = "1"
	CodeTerminal = "145" // shipment already signed or returned
)

// WebhookPayload is the body J&T posts on scan/status updates.
type WebhookPayload struct {
	BillCode   string `json:"billcode"`
	ScanType   string `json:"scantype"` // Vietnamese status word
	ScanTime   string `json:"scantime"` // "2006-01-02 15:04:05"
	Desc       string `json:"desc"`
	ScanNetway string `json:"scannetway"`
}

// APIError represents an error from the J&T gateway.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
