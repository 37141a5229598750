package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UpstreamClient = (*Client)(nil)

const maxBodySize = 32 << 20 // 32 MiB, catalogs can be large

// Client performs the raw HTTP calls against store endpoints. A shared
// rate limiter keeps bulk syncs from hammering upstreams; each request
// carries the caller's timeout.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
}

// ClientConfig holds configuration for the upstream client.
type ClientConfig struct {
	// RequestsPerSecond limits the outbound request rate across all
	// stores. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter burst size (default 1 when limiting).
	Burst int

	UserAgent string
	Logger    *slog.Logger

	// HTTPClient overrides the underlying client, mainly for tests.
	HTTPClient *http.Client
}

// NewClient creates a new upstream HTTP client.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "catalog-core/1.0"
	}

	return &Client{
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Request issues one HTTP call. Non-2xx statuses and transport failures
// surface as *domain.UpstreamError so the caller's classifier can see
// the status or errno in the message.
func (c *Client) Request(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.UpstreamError{URL: url, Err: err}
		}
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return nil, &domain.UpstreamError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.UpstreamError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("upstream request",
		"url", url, "method", method, "status", resp.StatusCode,
		"bytes", len(body), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{URL: url, Status: resp.StatusCode}
	}

	return &driven.UpstreamResponse{Status: resp.StatusCode, Body: body}, nil
}
