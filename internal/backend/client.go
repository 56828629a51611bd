// Package backend fetches the raw pressure payload from the forecast API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/2co2co0417/P-Alert/internal/config"
)

// ErrTransport covers network failures and non-2xx responses.
var ErrTransport = errors.New("backend transport failure")

type Client struct {
	http   *resty.Client
	path   string
	logger *slog.Logger
}

// New builds a client for cfg.BackendURL + cfg.BackendPath. Requests are not
// retried; the next scheduled refresh is the retry.
func New(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	http := resty.New().
		SetBaseURL(cfg.BackendURL).
		SetTimeout(cfg.BackendTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return &Client{http: http, path: cfg.BackendPath, logger: logger.With("component", "backend")}
}

// FetchPressure returns the response body unparsed.
func (c *Client) FetchPressure(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrTransport, c.path, err)
	}
	c.logger.Debug("pressure fetched",
		"path", c.path,
		"status", resp.StatusCode(),
		"duration_ms", resp.Time().Milliseconds(),
		"size", len(resp.Body()),
	)
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrTransport, c.path, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
