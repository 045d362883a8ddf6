package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"trektoo-proxy-go/internal/cache"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
	"trektoo-proxy-go/internal/service"
)

// maxPrefetchBatch bounds how many ids one prefetch request may carry.
const maxPrefetchBatch = 50

// ActivityHandler serves the tours/activities endpoints.
type ActivityHandler struct {
	svc        *service.ActivitiesService
	images     *cache.ImageCache
	prefetcher *cache.Prefetcher
	em         errorMapper
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(svc *service.ActivitiesService, images *cache.ImageCache, prefetcher *cache.Prefetcher, cfg *config.Config, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		svc:        svc,
		images:     images,
		prefetcher: prefetcher,
		em:         errorMapper{cfg: cfg, logger: logger.With("component", "activity_handler")},
	}
}

// List serves GET /api/activities.
func (h *ActivityHandler) List(c echo.Context) error {
	limit, ok := intQuery(c, "limit", defaultLimit)
	if !ok {
		return badRequest(c, "Invalid limit parameter")
	}
	if limit < minLimit || limit > maxLimit {
		return badRequest(c, "Limit must be between 1 and 100")
	}
	page, ok := intQuery(c, "page", defaultPage)
	if !ok || page < 1 {
		return badRequest(c, "Invalid page parameter")
	}

	list, err := h.svc.List(c.Request().Context(), service.ActivityListParams{
		Limit:       limit,
		Page:        page,
		CityIDs:     c.QueryParam("city_ids"),
		CountryIDs:  c.QueryParam("country_ids"),
		CategoryIDs: c.QueryParam("category_ids"),
	})
	if err != nil {
		return h.em.respondError(c, "Activities not found", err)
	}

	return respond(c, http.StatusOK, cacheListing, map[string]any{
		"success":  true,
		"activity": list,
	})
}

// Detail serves GET /api/activities/:id.
func (h *ActivityHandler) Detail(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid activity ID")
	}

	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return h.em.respondError(c, "Activity not found", err)
	}

	return respond(c, http.StatusOK, cacheDetail, map[string]any{
		"success": true,
		"data":    a,
	})
}

// Categories serves GET /api/activities/categories.
func (h *ActivityHandler) Categories(c echo.Context) error {
	cats, err := h.svc.Categories(c.Request().Context(), c.QueryParam("language"))
	if err != nil {
		return h.em.respondError(c, "Categories not found", err)
	}

	return respond(c, http.StatusOK, cacheDetail, map[string]any{
		"success":    true,
		"categories": cats,
	})
}

// Image serves GET /api/activities/:id/image from the image cache.
func (h *ActivityHandler) Image(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badRequest(c, "Invalid activity ID")
	}

	url, err := h.images.Lookup(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, cache.ErrImageUnavailable) || errors.Is(err, model.ErrNotFound) {
			return respond(c, http.StatusNotFound, cacheNone, ErrorResponse{Error: "Activity image not found"})
		}
		return h.em.respondError(c, "Activity image not found", err)
	}

	return respond(c, http.StatusOK, cacheDetail, map[string]any{
		"success":   true,
		"image_url": url,
	})
}

type prefetchRequest struct {
	ActivityIDs []int `json:"activity_ids"`
}

// PrefetchImages serves POST /api/activities/images/prefetch: resolves a
// batch of activity ids to image URLs with bounded concurrency. Ids that
// fail are absent from the result rather than failing the batch.
func (h *ActivityHandler) PrefetchImages(c echo.Context) error {
	var req prefetchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.ActivityIDs) == 0 {
		return badRequest(c, "Missing required field: activity_ids")
	}
	if len(req.ActivityIDs) > maxPrefetchBatch {
		return badRequest(c, "Too many activity IDs in one batch")
	}
	for _, id := range req.ActivityIDs {
		if id <= 0 {
			return badRequest(c, "Invalid activity ID")
		}
	}

	images := h.prefetcher.Batch(c.Request().Context(), req.ActivityIDs)

	return respond(c, http.StatusOK, cacheNone, map[string]any{
		"success": true,
		"images":  images,
	})
}
