package viettelpost

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetPrice     func(ctx context.Context, req *PriceRequest) (*PriceResponse, error)
	OnCreateOrder  func(ctx context.Context, req *OrderRequest) (*OrderResponse, error)
	OnUpdateOrder  func(ctx context.Context, req *UpdateOrderRequest) (*UpdateOrderResponse, error)
	OnGetPrintLink func(ctx context.Context, orderNumbers []string) (*PrintLinkResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{Status: 500, Message: "simulated API error"}
	}
	return nil
}

// GetPrice returns a mock price.
func (m *MockAPIClient) GetPrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetPrice != nil {
		return m.OnGetPrice(ctx, req)
	}
	return &PriceResponse{
		Status: 200,
		Data: PriceData{
			MoneyTotal:    22000,
			MoneyTotalFee: 20000,
			MoneyFee:      2000,
			KpiHT:         "48 giờ",
			ServiceCode:   "VCN",
			ServiceName:   "Chuyển phát nhanh",
		},
	}, nil
}

// CreateOrder returns a mock waybill.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}
	return &OrderResponse{
		Status: 200,
		Data: OrderData{
			OrderNumber:   "VTP" + uuid.New().String()[:10],
			MoneyTotal:    22000,
			MoneyTotalFee: 20000,
			KpiHT:         "48 giờ",
		},
	}, nil
}

// UpdateOrder returns a mock mutation result.
func (m *MockAPIClient) UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*UpdateOrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnUpdateOrder != nil {
		return m.OnUpdateOrder(ctx, req)
	}
	return &UpdateOrderResponse{Status: 200, Message: "OK"}, nil
}

// GetPrintLink returns a mock print document link.
func (m *MockAPIClient) GetPrintLink(ctx context.Context, orderNumbers []string) (*PrintLinkResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetPrintLink != nil {
		return m.OnGetPrintLink(ctx, orderNumbers)
	}
	return &PrintLinkResponse{
		Status: 200,
		Data:   fmt.Sprintf("https://print.viettelpost.mock/%d-labels.pdf", len(orderNumbers)),
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
