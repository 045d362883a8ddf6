package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
	"trektoo-proxy-go/internal/service"
)

// HotelHandler serves the hotel catalog and booking endpoints.
type HotelHandler struct {
	svc      *service.HotelService
	cfg      *config.Config
	validate *validator.Validate
	em       errorMapper
}

// NewHotelHandler creates a HotelHandler.
func NewHotelHandler(svc *service.HotelService, cfg *config.Config, logger *slog.Logger) *HotelHandler {
	v := validator.New()
	// Report field names from json tags so validation errors match the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &HotelHandler{
		svc:      svc,
		cfg:      cfg,
		validate: v,
		em:       errorMapper{cfg: cfg, logger: logger.With("component", "hotel_handler")},
	}
}

// Search serves GET /api/hotel/search.
func (h *HotelHandler) Search(c echo.Context) error {
	locationID, ok := intQuery(c, "location_id", 0)
	if !ok {
		return badRequest(c, "Invalid location ID")
	}
	// Mock mode overrides the location in the service layer, so the
	// parameter may be omitted there; otherwise it is required.
	if locationID == 0 && !h.cfg.Mock.Enabled {
		return badRequest(c, "Missing required parameter: location_id")
	}

	checkin := c.QueryParam("checkin")
	if checkin == "" {
		return badRequest(c, "Missing required parameter: checkin")
	}
	checkout := c.QueryParam("checkout")
	if checkout == "" {
		return badRequest(c, "Missing required parameter: checkout")
	}

	adults, ok := intQuery(c, "adults", 1)
	if !ok || adults < 1 {
		return badRequest(c, "Invalid adults parameter")
	}
	children, ok := intQuery(c, "children", 0)
	if !ok || children < 0 {
		return badRequest(c, "Invalid children parameter")
	}
	page, ok := intQuery(c, "page", defaultPage)
	if !ok || page < 1 {
		return badRequest(c, "Invalid page parameter")
	}

	res, err := h.svc.Search(c.Request().Context(), service.HotelSearchParams{
		LocationID: locationID,
		Checkin:    checkin,
		Checkout:   checkout,
		Adults:     adults,
		Children:   children,
		Page:       page,
	})
	if err != nil {
		return h.em.respondError(c, "Hotels not found", err)
	}

	return respond(c, http.StatusOK, cacheListing, res)
}

// Detail serves GET /api/hotel/detail/:id.
func (h *HotelHandler) Detail(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid hotel ID")
	}

	hotel, err := h.svc.Detail(c.Request().Context(), id)
	if err != nil {
		return h.em.respondError(c, "Hotel not found", err)
	}

	return respond(c, http.StatusOK, cacheDetail, map[string]any{
		"data": hotel,
	})
}

// Availability serves GET /api/hotel/availability/:id.
func (h *HotelHandler) Availability(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid hotel ID")
	}
	checkin := c.QueryParam("checkin")
	if checkin == "" {
		return badRequest(c, "Missing required parameter: checkin")
	}
	checkout := c.QueryParam("checkout")
	if checkout == "" {
		return badRequest(c, "Missing required parameter: checkout")
	}
	adults, ok := intQuery(c, "adults", 1)
	if !ok || adults < 1 {
		return badRequest(c, "Invalid adults parameter")
	}
	children, ok := intQuery(c, "children", 0)
	if !ok || children < 0 {
		return badRequest(c, "Invalid children parameter")
	}

	rooms, err := h.svc.Availability(c.Request().Context(), id, checkin, checkout, adults, children)
	if err != nil {
		return h.em.respondError(c, "Hotel not found", err)
	}

	return respond(c, http.StatusOK, cacheListing, map[string]any{
		"data": rooms,
	})
}

// AddToCart serves POST /api/hotel/booking/addToCart. Requires the caller's
// bearer token, which is forwarded upstream in place of Basic auth.
func (h *HotelHandler) AddToCart(c echo.Context) error {
	bearer := bearerToken(c)
	if bearer == "" {
		return respond(c, http.StatusUnauthorized, cacheNone, ErrorResponse{Error: "Authentication required"})
	}

	var req model.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return badRequest(c, "Missing required field: "+verrs[0].Field())
		}
		return badRequest(c, "Invalid request body")
	}

	item, err := h.svc.AddToCart(c.Request().Context(), bearer, &req)
	if err != nil {
		return h.em.respondError(c, "Service not found", err)
	}

	return respond(c, http.StatusOK, cacheNone, map[string]any{
		"success": true,
		"data":    item,
	})
}

// BookingDetail serves GET /api/hotel/booking/:code.
func (h *HotelHandler) BookingDetail(c echo.Context) error {
	bearer := bearerToken(c)
	if bearer == "" {
		return respond(c, http.StatusUnauthorized, cacheNone, ErrorResponse{Error: "Authentication required"})
	}
	code := c.Param("code")
	if code == "" {
		return badRequest(c, "Missing required parameter: booking code")
	}

	booking, err := h.svc.BookingDetail(c.Request().Context(), bearer, code)
	if err != nil {
		return h.em.respondError(c, "Booking not found", err)
	}

	return respond(c, http.StatusOK, cacheNone, map[string]any{
		"success": true,
		"data":    booking,
	})
}
