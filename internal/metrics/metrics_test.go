package metrics

import "testing"

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GET", "GET"},
		{"POST", "POST"},
		{"DELETE", "DELETE"},
		{"PROPFIND", "other"},
		{"get", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := NormalizeMethod(tt.in); got != tt.want {
			t.Errorf("NormalizeMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/activities", "/api/activities"},
		{"/api/activities/42", "/api/activities"},
		{"/api/activities/42/image", "/api/activities"},
		{"/api/hotel/search", "/api/hotel"},
		{"/api/hotel/booking/addToCart", "/api/hotel"},
		{"/api/auth/login", "/api/auth"},
		{"/api/user/booking-history", "/api/user"},
		{"/healthz", "/healthz"},
		{"/proxy/status", "/proxy/status"},
		{"/metrics", "/metrics"},
		{"/api/activitiesfoo", "other"},
		{"/unknown", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()

	m.RequestsTotal.WithLabelValues("GET", "200", "/api/activities").Inc()
	m.ImageCacheLookups.WithLabelValues("hit").Inc()

	mfs, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	want := map[string]bool{
		"trektoo_proxy_http_requests_total":       false,
		"trektoo_proxy_image_cache_lookups_total": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("collector %s not gathered", name)
		}
	}
}
