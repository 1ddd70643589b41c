// Package factory calls the pizza factory that bakes and signs diner orders.
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/config"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

// Diner identifies who placed the order.
type Diner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type request struct {
	Diner Diner        `json:"diner"`
	Order *model.Order `json:"order"`
}

// Result is the factory's answer to an order.
type Result struct {
	// JWT is the factory-signed verification of the order.
	JWT       string `json:"jwt"`
	ReportURL string `json:"reportUrl"`
	Message   string `json:"message,omitempty"`
}

// Error reports a factory rejection. ReportURL is kept so the caller can
// surface it.
type Error struct {
	StatusCode int
	ReportURL  string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("factory returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("factory returned %d", e.StatusCode)
}

// Client posts orders to the factory. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg config.FactoryConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Submit sends order to the factory and returns its verification. A non-2xx
// answer yields an *Error.
func (c *Client) Submit(ctx context.Context, diner Diner, order *model.Order) (*Result, time.Duration, error) {
	body, err := json.Marshal(request{Diner: diner, Order: order})
	if err != nil {
		return nil, 0, fmt.Errorf("encode factory request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build factory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, fmt.Errorf("call factory: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, latency, fmt.Errorf("read factory response: %w", err)
	}

	var res Result
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res); err != nil && resp.StatusCode < 300 {
			return nil, latency, fmt.Errorf("decode factory response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, latency, &Error{StatusCode: resp.StatusCode, ReportURL: res.ReportURL, Message: res.Message}
	}
	return &res, latency, nil
}
