// Package backend talks to the external system of record over its REST API.
package backend

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

	"pharma-ops/internal/model"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// envelope is the response wrapper used by every backend endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is a REST client for the backend. It performs a single attempt per call and
// never retries.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		logger:     logger.With().Str("component", "backend-client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a request and decodes the envelope's data into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return model.UpstreamError(fmt.Sprintf("backend %s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.UpstreamError(fmt.Sprintf("backend %s %s returned malformed body", method, path), err)
	}
	if !env.Success {
		return model.UpstreamError(fmt.Sprintf("backend %s %s: %s", method, path, messageOr(env.Message, "request unsuccessful")), nil)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return model.UpstreamError(fmt.Sprintf("backend %s %s returned no data", method, path), nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return model.UpstreamError(fmt.Sprintf("backend %s %s returned malformed data", method, path), err)
	}
	return nil
}

// statusError maps a non-2xx response onto the error kinds.
func (c *Client) statusError(method, path string, resp *http.Response) error {
	var env envelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &env)
	msg := messageOr(env.Message, http.StatusText(resp.StatusCode))

	c.logger.Warn().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("message", msg).
		Msg("backend rejected request")

	switch resp.StatusCode {
	case http.StatusNotFound:
		return model.NewDomainError(model.KindNotFound, model.ErrCodeNotFound, msg)
	case http.StatusConflict:
		return model.NewDomainError(model.KindAlreadySettled, model.ErrCodeAlreadySettled, msg)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.NewDomainError(model.KindValidation, model.ErrCodeValidation, msg)
	default:
		return model.UpstreamError(fmt.Sprintf("backend %s %s: %s", method, path, msg),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func escape(id string) string {
	return url.PathEscape(id)
}
