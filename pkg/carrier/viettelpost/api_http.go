package viettelpost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAPIClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPrice fetches a freight price. POST /order/getPrice.
func (c *HTTPAPIClient) GetPrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error) {
	var result PriceResponse
	if err := c.doRequest(ctx, http.MethodPost, "/order/getPrice", req, &result); err != nil {
		return nil, err
	}
	if result.Error {
		return nil, &APIError{Status: result.Status, Message: result.Message}
	}
	return &result, nil
}

// CreateOrder registers a waybill. POST /order/createOrder.
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	var result OrderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/order/createOrder", req, &result); err != nil {
		return nil, err
	}
	if result.Error {
		return nil, &APIError{Status: result.Status, Message: result.Message}
	}
	return &result, nil
}

// UpdateOrder mutates an order's state. POST /order/UpdateOrder.
func (c *HTTPAPIClient) UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*UpdateOrderResponse, error) {
	var result UpdateOrderResponse
	if err := c.doRequest(ctx, http.MethodPost, "/order/UpdateOrder", req, &result); err != nil {
		return nil, err
	}
	if result.Error {
		return nil, &APIError{Status: result.Status, Message: result.Message}
	}
	return &result, nil
}

// GetPrintLink requests one print document for a set of waybills.
// POST /order/printing-code.
func (c *HTTPAPIClient) GetPrintLink(ctx context.Context, orderNumbers []string) (*PrintLinkResponse, error) {
	body := map[string][]string{"ORDER_ARRAY": orderNumbers}
	var result PrintLinkResponse
	if err := c.doRequest(ctx, http.MethodPost, "/order/printing-code", body, &result); err != nil {
		return nil, err
	}
	if result.Error {
		return nil, &APIError{Status: result.Status, Message: result.Message}
	}
	return &result, nil
}

// doRequest performs an HTTP request with proper headers and authentication.
func (c *HTTPAPIClient) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Token", c.token) // Viettel Post uses a Token header

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		apiErr.Status = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: string(body),
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
