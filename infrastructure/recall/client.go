// Package recall is the HTTP client for the external memory-recall service.
// Calls are best effort and guarded by a circuit breaker so that an outage
// on the far side does not pile up goroutines on ours.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"memoryhub/application/ports"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	addPath    = "/v1/memories/"
	searchPath = "/v1/memories/search/"

	// Response bodies larger than this are rejected
	maxResponseBytes = 4 << 20
)

// Config configures the recall client
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Client implements ports.RecallClient over the recall service's REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a recall client. With an empty API key the client is
// disabled and every call is a no-op.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "recall",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

var _ ports.RecallClient = (*Client)(nil)

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type addRequest struct {
	Messages []message             `json:"messages"`
	UserID   string                 `json:"user_id"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type searchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// Add forwards one memory to the recall service
func (c *Client) Add(ctx context.Context, record ports.RecallRecord) error {
	if !c.Enabled() {
		return nil
	}
	body := addRequest{
		Messages: []message{{Role: "user", Content: record.Content}},
		UserID:   record.UserID,
		Metadata: record.Metadata,
	}
	return c.post(ctx, addPath, body, nil)
}

// Search asks the recall service for memories matching query. The service
// answers either with a bare list or with {"results": [...]}; both are accepted.
func (c *Client) Search(ctx context.Context, userID, query string, limit int) ([]map[string]interface{}, error) {
	if !c.Enabled() {
		return []map[string]interface{}{}, nil
	}

	var raw json.RawMessage
	if err := c.post(ctx, searchPath, searchRequest{Query: query, UserID: userID, Limit: limit}, &raw); err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

func decodeResults(raw json.RawMessage) ([]map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []map[string]interface{}{}, nil
	}

	var list []map[string]interface{}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode recall results: %w", err)
		}
	} else {
		var wrapped struct {
			Results []map[string]interface{} `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode recall results: %w", err)
		}
		list = wrapped.Results
	}
	if list == nil {
		list = []map[string]interface{}{}
	}
	return list, nil
}

// post sends body as JSON through the circuit breaker and decodes the reply into out
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("recall").WithCause(err)
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode recall request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build recall request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.NewExternalError("recall", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return pkgerrors.NewExternalError("recall", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.NewExternalError("recall",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200)))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode recall response: %w", err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
