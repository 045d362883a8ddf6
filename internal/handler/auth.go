package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/service"
)

// AuthHandler serves the user-session proxy endpoints. All responses are
// no-store: they carry per-user data.
type AuthHandler struct {
	svc *service.HotelService
	em  errorMapper
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *service.HotelService, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		em:  errorMapper{cfg: cfg, logger: logger.With("component", "auth_handler")},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login serves POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Missing required field: email")
	}
	if req.Password == "" {
		return badRequest(c, "Missing required field: password")
	}

	token, user, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Upstream rejects bad credentials with a 401; translate it to a
		// user-facing message instead of the generic mapping.
		var se *client.StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return respond(c, http.StatusUnauthorized, cacheNone, ErrorResponse{Error: "Invalid email or password"})
		}
		return h.em.respondError(c, "Account not found", err)
	}

	return respond(c, http.StatusOK, cacheNone, map[string]any{
		"success":      true,
		"access_token": token,
		"user":         user,
	})
}

// Me serves GET|POST /api/auth/me with the caller's bearer token forwarded
// upstream unchanged.
func (h *AuthHandler) Me(c echo.Context) error {
	bearer := bearerToken(c)
	if bearer == "" {
		return respond(c, http.StatusUnauthorized, cacheNone, ErrorResponse{Error: "Authentication required"})
	}

	user, err := h.svc.Me(c.Request().Context(), bearer)
	if err != nil {
		return h.em.respondError(c, "Account not found", err)
	}

	return respond(c, http.StatusOK, cacheNone, map[string]any{
		"success": true,
		"user":    user,
	})
}

// BookingHistory serves GET /api/user/booking-history.
func (h *AuthHandler) BookingHistory(c echo.Context) error {
	bearer := bearerToken(c)
	if bearer == "" {
		return respond(c, http.StatusUnauthorized, cacheNone, ErrorResponse{Error: "Authentication required"})
	}
	page, ok := intQuery(c, "page", defaultPage)
	if !ok || page < 1 {
		return badRequest(c, "Invalid page parameter")
	}

	history, err := h.svc.BookingHistory(c.Request().Context(), bearer, page)
	if err != nil {
		return h.em.respondError(c, "Booking history not found", err)
	}

	return respond(c, http.StatusOK, cacheNone, history)
}
