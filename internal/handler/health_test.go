package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"trektoo-proxy-go/internal/cache"
	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/service"
)

func TestHealthz(t *testing.T) {
	h := NewHealthHandler(&config.Config{}, "test")
	e := echo.New()
	e.GET("/healthz", h.Healthz)

	rec := doRequest(e, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestStatus(t *testing.T) {
	cfg := &config.Config{
		Activities: config.ActivitiesConfig{BaseURL: "https://api.activities.example.com"},
		Hotel:      config.HotelConfig{BaseURL: "https://api.hotel.example.com"},
		Mock:       config.MockConfig{Enabled: true},
	}
	h := NewHealthHandler(cfg, "1.2.3")
	e := echo.New()
	e.GET("/proxy/status", h.Status)

	rec := doRequest(e, http.MethodGet, "/proxy/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Status        string `json:"status"`
		Version       string `json:"version"`
		ActivitiesURL string `json:"activities_url"`
		HotelURL      string `json:"hotel_url"`
		MockMode      bool   `json:"mock_mode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Version != "1.2.3" {
		t.Errorf("version = %q", body.Version)
	}
	if body.ActivitiesURL != "https://api.activities.example.com" {
		t.Errorf("activities_url = %q", body.ActivitiesURL)
	}
	if !body.MockMode {
		t.Error("mock_mode = false, want true")
	}
}

func TestRegisterRoutes(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success":true,"status":1}`))
	defer upstream.Close()

	cfg := &config.Config{
		Activities: config.ActivitiesConfig{APIKey: "k", BaseURL: upstream.URL, TimeoutSeconds: 5},
		Hotel:      config.HotelConfig{Username: "u", Password: "p", BaseURL: upstream.URL, TimeoutSeconds: 5, UserTimeoutSeconds: 2},
	}
	logger := discardLogger()

	ac, err := client.NewActivitiesClient(cfg, logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	hc, err := client.NewHotelClient(cfg, logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	asvc := service.NewActivitiesService(ac, cfg, logger)
	hsvc := service.NewHotelService(hc, cfg, logger)
	images := cache.NewImageCache(cache.NewMemoryStore(), asvc, 24*time.Hour, logger, nil)

	e := echo.New()
	RegisterRoutes(e,
		NewActivityHandler(asvc, images, cache.NewPrefetcher(images, 8, time.Second, logger), cfg, logger),
		NewHotelHandler(hsvc, cfg, logger),
		NewAuthHandler(hsvc, cfg, logger),
		NewHealthHandler(cfg, "test"),
	)

	// Every expected path must be registered.
	want := []string{
		"GET /healthz",
		"GET /proxy/status",
		"GET /api/activities",
		"GET /api/activities/categories",
		"POST /api/activities/images/prefetch",
		"GET /api/activities/:id",
		"GET /api/activities/:id/image",
		"GET /api/hotel/search",
		"GET /api/hotel/detail/:id",
		"GET /api/hotel/availability/:id",
		"POST /api/hotel/booking/addToCart",
		"GET /api/hotel/booking/:code",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"POST /api/auth/me",
		"GET /api/user/booking-history",
	}
	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route not registered: %s", route)
		}
	}
}
