package base

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HTTPClient provides common HTTP functionality for gateway clients
type HTTPClient struct {
	client  *http.Client
	baseURL string
	name    string // provider name for logging
	auth    string // precomputed Authorization header, if any
}

// NewHTTPClient creates a new HTTP client with default settings
func NewHTTPClient(providerName string, timeoutSec int) *HTTPClient {
	if timeoutSec == 0 {
		timeoutSec = 30
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		name: providerName,
	}
}

// SetBaseURL sets the base URL for all requests
func (c *HTTPClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetBasicAuth sends the given credentials with every request
func (c *HTTPClient) SetBasicAuth(user, password string) {
	c.auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

// PostJSON makes a POST request with JSON payload
func (c *HTTPClient) PostJSON(ctx context.Context, endpoint string, payload any) (*HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// Get makes a GET request
func (c *HTTPClient) Get(ctx context.Context, endpoint string) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (*HTTPResponse, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "admissions/"+c.name)
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	// never log headers, they carry the key secret
	log.Debug().
		Str("provider", c.name).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("making HTTP request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().
			Str("provider", c.name).
			Str("url", req.URL.String()).
			Err(err).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("provider", c.name).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	return &HTTPResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}, nil
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UnmarshalJSON unmarshals the response body into v
func (r *HTTPResponse) UnmarshalJSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

func (r *HTTPResponse) String() string {
	return string(r.Body)
}
