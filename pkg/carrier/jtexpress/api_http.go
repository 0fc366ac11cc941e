package jtexpress

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient.
// The J&T gateway takes form-encoded requests carrying the JSON payload in
// logistics_interface and a digest: base64(md5(payload + key)).
type HTTPAPIClient struct {
	baseURL      string
	customerCode string
	key          string
	httpClient   *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL      string
	CustomerCode string
	Key          string
	Timeout      time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAPIClient{
		baseURL:      cfg.BaseURL,
		customerCode: cfg.CustomerCode,
		key:          cfg.Key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetFreight fetches a freight estimate. POST /api/freight/query.
func (c *HTTPAPIClient) GetFreight(ctx context.Context, req *FreightRequest) (*FreightResponse, error) {
	var result FreightResponse
	if err := c.doRequest(ctx, "/api/freight/query", req, &result); err != nil {
		return nil, err
	}
	if result.Code != CodeOK {
		return nil, &APIError{Code: result.Code, Message: result.Message}
	}
	return &result, nil
}

// CreateOrder registers a waybill. POST /api/order/create.
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	var result OrderResponse
	if err := c.doRequest(ctx, "/api/order/create", req, &result); err != nil {
		return nil, err
	}
	if result.Code != CodeOK {
		return nil, &APIError{Code: result.Code, Message: result.Message}
	}
	return &result, nil
}

// CancelOrder cancels a waybill. POST /api/order/cancel.
func (c *HTTPAPIClient) CancelOrder(ctx context.Context, billCode, reason string) (*CancelResponse, error) {
	payload := map[string]string{"billcode": billCode, "reason": reason}
	var result CancelResponse
	if err := c.doRequest(ctx, "/api/order/cancel", payload, &result); err != nil {
		return nil, err
	}
	if result.Code != CodeOK {
		return nil, &APIError{Code: result.Code, Message: result.Message}
	}
	return &result, nil
}

// PrintOrders requests one print document for a set of waybills.
// POST /api/order/print.
func (c *HTTPAPIClient) PrintOrders(ctx context.Context, billCodes []string) (*PrintResponse, error) {
	payload := map[string][]string{"billcodes": billCodes}
	var result PrintResponse
	if err := c.doRequest(ctx, "/api/order/print", payload, &result); err != nil {
		return nil, err
	}
	if result.Code != CodeOK {
		return nil, &APIError{Code: result.Code, Message: result.Message}
	}
	return &result, nil
}

// doRequest posts the form envelope and decodes the JSON response.
func (c *HTTPAPIClient) doRequest(ctx context.Context, path string, payload, out interface{}) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	form := url.Values{}
	form.Set("logistics_interface", string(jsonPayload))
	form.Set("data_digest", c.digest(jsonPayload))
	form.Set("msg_type", "OTHER")
	form.Set("eccompanyid", c.customerCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: string(raw),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPAPIClient) digest(payload []byte) string {
	sum := md5.Sum(append(payload, []byte(c.key)...))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
