package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newActivitiesService(t *testing.T, upstream *httptest.Server, mock bool) *ActivitiesService {
	t.Helper()
	cfg := &config.Config{
		Activities: config.ActivitiesConfig{
			APIKey:         "k",
			BaseURL:        upstream.URL,
			TimeoutSeconds: 5,
			Language:       "en",
		},
		Mock: config.MockConfig{Enabled: mock},
	}
	c, err := client.NewActivitiesClient(cfg, discardLogger(), nil)
	if err != nil {
		t.Fatalf("NewActivitiesClient: %v", err)
	}
	return NewActivitiesService(c, cfg, discardLogger())
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestList_Success(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{
		"success": true,
		"activity": {
			"total": 2,
			"page": 1,
			"limit": 10,
			"has_next": false,
			"activity_list": [
				{"activity_id": 1, "title": "<b>Palace</b> Tour"},
				{"activity_id": 2, "title": "River Cruise"}
			]
		}
	}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	list, err := s.List(context.Background(), ActivityListParams{Limit: 10, Page: 1})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if list.Total != 2 || len(list.Activities) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Activities[0].Title != "Palace Tour" {
		t.Errorf("title not sanitized: %q", list.Activities[0].Title)
	}
}

func TestList_MissingPayloadDegradesToEmpty(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success": true}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	list, err := s.List(context.Background(), ActivityListParams{Limit: 10, Page: 3})
	if err != nil {
		t.Fatalf("List() error = %v, want graceful degradation", err)
	}

	if list.Total != 0 {
		t.Errorf("Total = %d, want 0", list.Total)
	}
	if list.Activities == nil || len(list.Activities) != 0 {
		t.Errorf("Activities = %v, want empty non-nil slice", list.Activities)
	}
	if list.Page != 3 {
		t.Errorf("Page = %d, want 3", list.Page)
	}
}

func TestList_UpstreamFailureIsError(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success": false, "error_msg": "bad filter"}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	_, err := s.List(context.Background(), ActivityListParams{Limit: 10, Page: 1})

	var uf *model.UpstreamFailureError
	if !errors.As(err, &uf) {
		t.Fatalf("List() error = %v, want *UpstreamFailureError", err)
	}
}

func TestGet_NotFoundOnFailureEnvelope(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success": false}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	_, err := s.Get(context.Background(), 9999)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestGet_Sanitizes(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{
		"success": true,
		"activity": {
			"activity_id": 5,
			"title": "Temple<script>alert(1)</script>",
			"image_url": "javascript:alert(1)",
			"price": 45.5
		}
	}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	a, err := s.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if a.Title != "Temple" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", a.ImageURL)
	}
	if a.Price != 45.5 {
		t.Errorf("Price = %v, want untouched", a.Price)
	}
}

func TestCategories_MockFallback(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success": true, "categories": []}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, true)
	cats, err := s.Categories(context.Background(), "")
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) == 0 {
		t.Error("mock mode should serve the fallback category list")
	}
}

func TestCategories_NoFallbackWithoutMockMode(t *testing.T) {
	upstream := httptest.NewServer(jsonHandler(`{"success": true, "categories": []}`))
	defer upstream.Close()

	s := newActivitiesService(t, upstream, false)
	cats, err := s.Categories(context.Background(), "en")
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("cats = %v, want empty without mock mode", cats)
	}
}

func TestResolveImage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantURL string
		wantErr error
	}{
		{
			name:    "primary image",
			body:    `{"success":true,"activity":{"activity_id":1,"image_url":"https://cdn.example.com/a.jpg"}}`,
			wantURL: "https://cdn.example.com/a.jpg",
		},
		{
			name:    "gallery fallback",
			body:    `{"success":true,"activity":{"activity_id":1,"gallery":["https://cdn.example.com/g.jpg"]}}`,
			wantURL: "https://cdn.example.com/g.jpg",
		},
		{
			name:    "no image",
			body:    `{"success":true,"activity":{"activity_id":1}}`,
			wantErr: ErrNoImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(jsonHandler(tt.body))
			defer upstream.Close()

			s := newActivitiesService(t, upstream, false)
			url, err := s.ResolveImage(context.Background(), 1)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ResolveImage() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveImage() error = %v", err)
			}
			if url != tt.wantURL {
				t.Errorf("url = %q, want %q", url, tt.wantURL)
			}
		})
	}
}
