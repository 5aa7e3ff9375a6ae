// Package client provides REST clients for the four backend record systems
// the console talks to: IMS (items), OMS (orders), WMS (facilities, waves and
// wave workflow signals) and SMS (shipments). All four share one JSON base
// client with bearer auth, per-request IDs, and decoding of the backends'
// common {status, error, message} error envelope.
package client

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

	"github.com/google/uuid"

	"github.com/tempest-ops/opsdeck/internal/errors"
	"github.com/tempest-ops/opsdeck/internal/logging"
)

// errorEnvelope is the error body every backend service returns.
type errorEnvelope struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client is the shared HTTP layer under the typed service clients.
type Client struct {
	service string
	baseURL string
	token   string
	http    *http.Client
	logger  *logging.Logger
}

// Options configures a Client.
type Options struct {
	// Service names the backend for error messages and logs ("wms", "oms", ...).
	Service string
	// BaseURL is the service root, e.g. "http://localhost:8083". Required.
	BaseURL string
	// Token is the bearer token sent on every request.
	Token string
	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration
	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
	// Logger defaults to a nop logger.
	Logger *logging.Logger
}

// New builds a Client. Fails when BaseURL is missing or unparsable.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.Wrapf(errors.ErrMissingBaseURL, "%s client", opts.Service)
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, errors.Wrapf(err, "%s client: invalid base URL", opts.Service)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Client{
		service: opts.Service,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    httpClient,
		logger:  logger.WithService(opts.Service),
	}, nil
}

// get performs a GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// post performs a POST with an optional JSON body, decoding into out when
// out is non-nil.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// del performs a DELETE, decoding into out when out is non-nil.
func (c *Client) del(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encode %s %s", c.service, method, path)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "%s: build %s %s", c.service, method, path)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewTransportError(c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, method, path, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewTransportError(c.service,
			fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// decodeError maps an error response onto the taxonomy. Bodies that are not
// the standard envelope still produce a usable ServiceError from the HTTP
// status line.
func (c *Client) decodeError(resp *http.Response, method, path, requestID string) error {
	var envelope errorEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Message == "" {
		envelope = errorEnvelope{
			Status:  resp.StatusCode,
			Error:   resp.Status,
			Message: strings.TrimSpace(string(raw)),
		}
		if envelope.Message == "" {
			envelope.Message = "an unexpected error occurred"
		}
	}

	c.logger.Warn("request failed",
		"method", method, "path", path,
		"status", resp.StatusCode, "request_id", requestID,
		"message", envelope.Message)

	return errors.NewServiceError(c.service, resp.StatusCode, envelope.Error, envelope.Message)
}
