// Package client implements gate.API over the Registration HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nftgate/internal/collection"
	"nftgate/internal/gate"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

type Client struct {
	baseURL string
	http    HTTPDoer
}

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 * 1024

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{baseURL: base, http: doer}, nil
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Status calls GET /api/user-status.
func (c *Client) Status(ctx context.Context, walletAddress string) (bool, error) {
	endpoint := c.baseURL + "/api/user-status?" + url.Values{"walletAddress": {walletAddress}}.Encode()
	var out struct {
		IsRegistered bool `json:"isRegistered"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return false, err
	}
	return out.IsRegistered, nil
}

// Register calls POST /api/register. A 409 maps to gate.ErrAlreadyRegistered
// and a 400 to *gate.RejectedError.
func (c *Client) Register(ctx context.Context, reg gate.Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+"/api/register", body, nil)
}

// Collection calls GET /api/collection.
func (c *Client) Collection(ctx context.Context) (*collection.Info, error) {
	var info collection.Info
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/collection", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: request timeout: %w", gate.ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %w", gate.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", gate.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode response: %w", gate.ErrUnavailable, err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict:
		return gate.ErrAlreadyRegistered
	case resp.StatusCode == http.StatusBadRequest:
		return &gate.RejectedError{Message: describe(payload, "invalid registration")}
	default:
		return fmt.Errorf("%w: status %d", gate.ErrUnavailable, resp.StatusCode)
	}
}

func describe(payload []byte, fallback string) string {
	var e errorBody
	if err := json.Unmarshal(payload, &e); err == nil && e.Description != "" {
		return e.Description
	}
	return fallback
}
