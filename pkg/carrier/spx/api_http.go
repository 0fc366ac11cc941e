package spx

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
// Every request is signed: sign = hex(hmac_sha256(secret, app_id + timestamp + body)).
type HTTPAPIClient struct {
	baseURL    string
	appID      string
	secret     string
	httpClient *http.Client
	now        func() time.Time
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL string
	AppID   string
	Secret  string
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
		appID:   cfg.AppID,
		secret:  cfg.Secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// GetRate fetches a freight rate. POST /open/api/v1/order/get_rate.
func (c *HTTPAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var result RateResponse
	if err := c.doRequest(ctx, "/open/api/v1/order/get_rate", req, &result); err != nil {
		return nil, err
	}
	if result.RetCode != RetOK {
		return nil, &APIError{RetCode: result.RetCode, Message: result.Message}
	}
	return &result, nil
}

// CreateOrder registers a waybill. POST /open/api/v1/order/create.
func (c *HTTPAPIClient) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	var result CreateOrderResponse
	if err := c.doRequest(ctx, "/open/api/v1/order/create", req, &result); err != nil {
		return nil, err
	}
	if result.RetCode != RetOK {
		return nil, &APIError{RetCode: result.RetCode, Message: result.Message}
	}
	return &result, nil
}

// CancelOrder cancels a waybill. POST /open/api/v1/order/cancel.
func (c *HTTPAPIClient) CancelOrder(ctx context.Context, trackingNo string) (*CancelOrderResponse, error) {
	body := map[string]string{"tracking_no": trackingNo}
	var result CancelOrderResponse
	if err := c.doRequest(ctx, "/open/api/v1/order/cancel", body, &result); err != nil {
		return nil, err
	}
	if result.RetCode != RetOK {
		return nil, &APIError{RetCode: result.RetCode, Message: result.Message}
	}
	return &result, nil
}

// doRequest performs a signed HTTP request.
func (c *HTTPAPIClient) doRequest(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-App-Id", c.appID)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", c.sign(timestamp, jsonBody))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{
			RetCode:    -1,
			Message:    string(raw),
			HTTPStatus: resp.StatusCode,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPAPIClient) sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(c.appID))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
