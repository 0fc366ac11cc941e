package jtexpress

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

	OnGetFreight  func(ctx context.Context, req *FreightRequest) (*FreightResponse, error)
	OnCreateOrder func(ctx context.Context, req *OrderRequest) (*OrderResponse, error)
	OnCancelOrder func(ctx context.Context, billCode, reason string) (*CancelResponse, error)
	OnPrintOrders func(ctx context.Context, billCodes []string) (*PrintResponse, error)
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
		return &APIError{Code: "0", Message: "simulated API error"}
	}
	return nil
}

// GetFreight returns a mock estimate.
func (m *MockAPIClient) GetFreight(ctx context.Context, req *FreightRequest) (*FreightResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetFreight != nil {
		return m.OnGetFreight(ctx, req)
	}
	return &FreightResponse{
		Code: CodeOK,
		Data: FreightData{
			Freight:     "19000",
			ProductType: "EZ",
			Aging:       "2-3 ngày",
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
		Code: CodeOK,
		Data: OrderData{
			BillCode:     "JT" + uuid.New().String()[:12],
			TxLogisticID: req.TxLogisticID,
			SortingCode:  "HN-01",
			Freight:      "19000",
			Aging:        "2-3 ngày",
		},
	}, nil
}

// CancelOrder returns a mock cancellation result.
func (m *MockAPIClient) CancelOrder(ctx context.Context, billCode, reason string) (*CancelResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelOrder != nil {
		return m.OnCancelOrder(ctx, billCode, reason)
	}
	return &CancelResponse{Code: CodeOK, Message: "success"}, nil
}

// PrintOrders returns a mock print document link.
func (m *MockAPIClient) PrintOrders(ctx context.Context, billCodes []string) (*PrintResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnPrintOrders != nil {
		return m.OnPrintOrders(ctx, billCodes)
	}
	return &PrintResponse{
		Code: CodeOK,
		Data: fmt.Sprintf("https://print.jtexpress.mock/%d-labels.pdf", len(billCodes)),
	}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
