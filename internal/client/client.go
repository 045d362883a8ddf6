// Package client provides the upstream HTTP clients for the travel providers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/metrics"
)

// ErrMissingCredentials is returned when the provider's credentials are not
// configured. The check runs before any outbound I/O.
var ErrMissingCredentials = errors.New("upstream API credentials are not configured")

// maxErrorBodyBytes bounds how much of an upstream error body is retained.
const maxErrorBodyBytes = 64 * 1024

const userAgent = "trektoo-proxy-go/1.0"

// StatusError is a non-2xx upstream response. The status code is preserved
// for the error mapper; Body holds a bounded copy of the upstream body.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

type authScheme int

const (
	authAPIKey authScheme = iota
	authBasic
)

// Client issues requests to one upstream provider. Each call performs exactly
// one HTTP attempt with a bounded timeout; only 2xx responses are success.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	provider   string
	scheme     authScheme

	apiKey   string
	username string
	password string

	timeout     time.Duration
	userTimeout time.Duration

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Request describes one upstream call. When Bearer is set, the caller's token
// is forwarded instead of the configured credentials and the shorter
// user-scoped timeout applies.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Bearer string
}

func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// NewActivitiesClient creates the client for the tours/activities provider,
// which authenticates with a static X-API-KEY header.
func NewActivitiesClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Client, error) {
	u, err := url.Parse(cfg.Activities.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse activities.base_url: %w", err)
	}
	t := time.Duration(cfg.Activities.TimeoutSeconds) * time.Second
	return &Client{
		httpClient:  &http.Client{Transport: newTransport()},
		baseURL:     u,
		provider:    "activities",
		scheme:      authAPIKey,
		apiKey:      cfg.Activities.APIKey,
		timeout:     t,
		userTimeout: t,
		logger:      logger.With("component", "activities_client"),
		metrics:     m,
	}, nil
}

// NewHotelClient creates the client for the hotel provider, which
// authenticates with HTTP Basic auth for catalog calls and forwards the
// caller's bearer token for user-scoped calls.
func NewHotelClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Client, error) {
	u, err := url.Parse(cfg.Hotel.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse hotel.base_url: %w", err)
	}
	return &Client{
		httpClient:  &http.Client{Transport: newTransport()},
		baseURL:     u,
		provider:    "hotel",
		scheme:      authBasic,
		username:    cfg.Hotel.Username,
		password:    cfg.Hotel.Password,
		timeout:     time.Duration(cfg.Hotel.TimeoutSeconds) * time.Second,
		userTimeout: time.Duration(cfg.Hotel.UserTimeoutSeconds) * time.Second,
		logger:      logger.With("component", "hotel_client"),
		metrics:     m,
	}, nil
}

// Do executes one upstream call and decodes the 2xx JSON body into out.
// Non-2xx responses return a *StatusError. Exactly one auth scheme is
// attached per call: the caller's bearer token when present, otherwise the
// provider's configured credentials.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	if r.Bearer == "" {
		switch c.scheme {
		case authAPIKey:
			if c.apiKey == "" {
				return ErrMissingCredentials
			}
		case authBasic:
			if c.username == "" || c.password == "" {
				return ErrMissingCredentials
			}
		}
	}

	timeout := c.timeout
	if r.Bearer != "" {
		timeout = c.userTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if r.Body != nil {
		buf, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.buildURL(r.Path, r.Query), body)
	if err != nil {
		return fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	switch {
	case r.Bearer != "":
		req.Header.Set("Authorization", "Bearer "+r.Bearer)
	case c.scheme == authAPIKey:
		req.Header.Set("X-API-KEY", c.apiKey)
	case c.scheme == authBasic:
		req.SetBasicAuth(c.username, c.password)
	}

	c.logger.Debug("upstream request",
		"method", r.Method,
		"path", r.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(r.Method)
	if c.metrics != nil {
		c.metrics.UpstreamDuration.WithLabelValues(c.provider, method).Observe(duration)
	}
	if err != nil {
		return fmt.Errorf("upstream request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if c.metrics != nil {
		c.metrics.UpstreamResponses.WithLabelValues(c.provider, method, strconv.Itoa(resp.StatusCode)).Inc()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &StatusError{Code: resp.StatusCode, Body: b}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
