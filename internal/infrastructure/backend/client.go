// Package backend implements the HTTP client for the rewards platform API,
// the gateway's only window onto the system that owns all business logic.
// Every call is a single round-trip decoding the platform's response
// envelope; retries and caching are deliberately absent (the upstream is the
// idempotency authority).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for reaching the rewards backend.
type Config struct {
	// BaseURL is the API root, e.g. "https://host/api".
	BaseURL string
	// Timeout bounds each round-trip. Defaults to 10s.
	Timeout time.Duration
	// HTTPClient overrides the transport; used by tests.
	HTTPClient *http.Client
}

// Client talks to the rewards platform REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// envelope is the platform's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// request describes one backend call for do.
type request struct {
	method     string
	path       string
	credential string
	query      url.Values
	body       any
}

// do performs the round-trip, maps transport and status failures onto the
// domain error taxonomy, and unmarshals the envelope's data field into out
// when out is non-nil.
//
//	transport error / 5xx      → ErrUpstreamUnavailable
//	401, 403                   → ErrCredentialRejected
//	404                        → ErrNotFound
//	other non-2xx, success=false → ErrRejected (message preserved)
func (c *Client) do(ctx context.Context, req request, out any) error {
	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.credential)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: err.Error()}
	}

	var env envelope
	// A body that does not parse as the envelope is only fatal when the
	// status itself was fatal; a 2xx with a bad body is an upstream defect.
	envErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode >= 500:
		return &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: env.Message}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.UpstreamError{Sentinel: domain.ErrCredentialRejected, Message: env.Message}
	case resp.StatusCode == http.StatusNotFound:
		return &domain.UpstreamError{Sentinel: domain.ErrNotFound, Message: env.Message}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &domain.UpstreamError{Sentinel: domain.ErrRejected, Message: env.Message}
	}

	if envErr != nil {
		return &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: "malformed response"}
	}
	if !env.Success {
		return &domain.UpstreamError{Sentinel: domain.ErrRejected, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("backend: decode %s %s: %w", req.method, req.path, err)
		}
	}
	return nil
}

// doMessage is do for endpoints whose useful payload is the message field.
func (c *Client) doMessage(ctx context.Context, req request) (string, error) {
	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return "", fmt.Errorf("backend: encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return "", fmt.Errorf("backend: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.credential != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.credential)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: "malformed response"}
	}

	switch {
	case resp.StatusCode >= 500:
		return "", &domain.UpstreamError{Sentinel: domain.ErrUpstreamUnavailable, Message: env.Message}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &domain.UpstreamError{Sentinel: domain.ErrCredentialRejected, Message: env.Message}
	case resp.StatusCode == http.StatusNotFound:
		return "", &domain.UpstreamError{Sentinel: domain.ErrNotFound, Message: env.Message}
	case !env.Success || resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &domain.UpstreamError{Sentinel: domain.ErrRejected, Message: env.Message}
	}
	return env.Message, nil
}

func listQuery(page int, limit int, search string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprintf("%d", page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if search != "" {
		q.Set("search", search)
	}
	return q
}
