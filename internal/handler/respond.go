// Package handler implements the HTTP route handlers: request validation,
// error mapping and response emission over the service layer.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/labstack/echo/v4"

	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
)

// Cache-Control values per endpoint class. Mutating and user-scoped
// endpoints are never cached.
const (
	cacheDetail  = "public, max-age=3600"
	cacheListing = "public, max-age=900"
	cacheNone    = "no-store"
)

// ErrorResponse is the JSON error body. Details is populated only outside
// production.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respond writes a JSON body with the endpoint's cache-control directive.
// Security headers are applied globally by the middleware.
func respond(c echo.Context, status int, cacheControl string, body any) error {
	c.Response().Header().Set("Cache-Control", cacheControl)
	return c.JSON(status, body)
}

// badRequest emits a local validation failure. No upstream call has
// happened at this point.
func badRequest(c echo.Context, msg string) error {
	return respond(c, http.StatusBadRequest, cacheNone, ErrorResponse{Error: msg})
}

// errorMapper translates pipeline failures into the fixed set of outward
// error categories.
type errorMapper struct {
	cfg    *config.Config
	logger *slog.Logger
}

// respondError maps err onto an HTTP status and a provider-agnostic message.
// notFound is the resource-specific message used for upstream 404s and
// provider-signaled not-found results.
func (m *errorMapper) respondError(c echo.Context, notFound string, err error) error {
	status, msg := m.classify(notFound, err)

	m.logger.Error("request failed",
		"path", c.Request().URL.Path,
		"status", status,
		"err", err,
	)

	body := ErrorResponse{Error: msg}
	if !m.cfg.Production() {
		body.Details = err.Error()
	}
	return respond(c, status, cacheNone, body)
}

func (m *errorMapper) classify(notFound string, err error) (int, string) {
	if errors.Is(err, client.ErrMissingCredentials) {
		return http.StatusInternalServerError, "API configuration missing"
	}
	if errors.Is(err, model.ErrNotFound) {
		return http.StatusNotFound, notFound
	}

	var se *client.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized:
			return http.StatusUnauthorized, "Invalid credentials"
		case http.StatusForbidden:
			return http.StatusForbidden, "Access forbidden"
		case http.StatusNotFound:
			return http.StatusNotFound, notFound
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, "Rate limited, please retry later"
		default:
			if se.Code >= 500 {
				return se.Code, "Upstream service error"
			}
			return http.StatusInternalServerError, "Upstream service error"
		}
	}

	var uf *model.UpstreamFailureError
	if errors.As(err, &uf) {
		return http.StatusBadGateway, "Upstream provider rejected the request"
	}
	var sm *model.ShapeMismatchError
	if errors.As(err, &sm) {
		return http.StatusBadGateway, "Upstream returned an unexpected response"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Upstream request timed out"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return http.StatusServiceUnavailable, "Unable to connect to upstream service"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return http.StatusServiceUnavailable, "Unable to connect to upstream service"
	}

	return http.StatusInternalServerError, "Internal server error"
}
