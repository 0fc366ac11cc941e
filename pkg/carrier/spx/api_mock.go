package spx

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetRate     func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateOrder func(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error)
	OnCancelOrder func(ctx context.Context, trackingNo string) (*CancelOrderResponse, error)
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
		return &APIError{RetCode: RetSystemBusy, Message: "simulated API error"}
	}
	return nil
}

// GetRate returns a mock rate.
func (m *MockAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnGetRate != nil {
		return m.OnGetRate(ctx, req)
	}
	return &RateResponse{
		RetCode: RetOK,
		Data: RateData{
			TotalFee:      18500,
			BasicFee:      16500,
			CodServiceFee: 2000,
			ServiceType:   1,
			ServiceName:   "SPX Standard",
			EstimatedDays: "2-4",
		},
	}, nil
}

// CreateOrder returns a mock waybill.
func (m *MockAPIClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCreateOrder != nil {
		return m.OnCreateOrder(ctx, req)
	}
	return &CreateOrderResponse{
		RetCode: RetOK,
		Data: CreateOrderData{
			TrackingNo:    "SPXVN" + uuid.New().String()[:9],
			TotalFee:      18500,
			EstimatedDays: "2-4",
		},
	}, nil
}

// CancelOrder returns a mock cancellation result.
func (m *MockAPIClient) CancelOrder(ctx context.Context, trackingNo string) (*CancelOrderResponse, error) {
	if err := m.simulate(); err != nil {
		return nil, err
	}
	if m.OnCancelOrder != nil {
		return m.OnCancelOrder(ctx, trackingNo)
	}
	return &CancelOrderResponse{RetCode: RetOK, Message: "success"}, nil
}

// Ensure MockAPIClient implements APIClient interface
var _ APIClient = (*MockAPIClient)(nil)
