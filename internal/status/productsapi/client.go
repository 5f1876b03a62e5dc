// Package productsapi provides the client for the status backend's
// product and component endpoints.
package productsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/statuscope/statuscope/internal/resilience"
	"github.com/statuscope/statuscope/internal/status"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL, e.g. "https://status.example.com/api".
	BaseURL string

	// HTTPClient is the HTTP client to use. If nil, a resilient client
	// with retries and a circuit breaker is created.
	HTTPClient HTTPDoer

	// Timeout for individual requests when the default client is used
	// (default: 10s).
	Timeout time.Duration
}

// Client talks to the status backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.New(resilience.Config{
			Name:    "status-backend",
			Timeout: timeout,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// ListProducts fetches one page of the product catalog. The search term is
// omitted from the request entirely when blank.
func (c *Client) ListProducts(ctx context.Context, page, pageSize int, search string) (*status.ProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		params.Set("search", trimmed)
	}

	var result status.ProductPage
	if err := c.do(ctx, http.MethodGet, "/product?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProduct creates a product and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, payload ProductCreate) (*status.ProductRecord, error) {
	var result status.ProductRecord
	if err := c.do(ctx, http.MethodPost, "/product", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProduct applies a partial update to a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload ProductUpdate) (*status.ProductRecord, error) {
	var result status.ProductRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/product/%d", id), payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/%d", id), nil, nil)
}

// CreateComponent creates a component and returns the stored record.
func (c *Client) CreateComponent(ctx context.Context, payload ComponentCreate) (*status.ComponentRecord, error) {
	var result status.ComponentRecord
	if err := c.do(ctx, http.MethodPost, "/component", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateComponent applies a partial update to a component.
func (c *Client) UpdateComponent(ctx context.Context, id int64, payload ComponentUpdate) (*status.ComponentRecord, error) {
	var result status.ComponentRecord
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/component/%d", id), payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteComponent removes a component.
func (c *Client) DeleteComponent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/component/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
