package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// cliWithPath returns a CLI struct pointing at the given config file.
func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
[server]
host = "127.0.0.1"
port = 9000

[activities]
api_key = "test-key-12345"
base_url = "https://api.activities.example.com/v3"
timeout_seconds = 30

[hotel]
username = "agent"
password = "secret"
base_url = "https://api.hotel.example.com/api"

[log]
level = "debug"
format = "text"
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Activities.APIKey != "test-key-12345" {
		t.Errorf("Activities.APIKey = %q, want %q", cfg.Activities.APIKey, "test-key-12345")
	}
	if cfg.Hotel.Username != "agent" {
		t.Errorf("Hotel.Username = %q, want %q", cfg.Hotel.Username, "agent")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[activities]
api_key = "k"
base_url = "https://api.activities.example.com"

[hotel]
username = "u"
password = "p"
base_url = "https://api.hotel.example.com"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Activities.TimeoutSeconds != 30 {
		t.Errorf("default activities timeout = %d, want 30", cfg.Activities.TimeoutSeconds)
	}
	if cfg.Hotel.UserTimeoutSeconds != 10 {
		t.Errorf("default hotel user timeout = %d, want 10", cfg.Hotel.UserTimeoutSeconds)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("default cache backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Cache.ImageTTLHours != 24 {
		t.Errorf("default image TTL = %d, want 24", cfg.Cache.ImageTTLHours)
	}
	if cfg.Cache.PrefetchConcurrency != 8 {
		t.Errorf("default prefetch concurrency = %d, want 8", cfg.Cache.PrefetchConcurrency)
	}
	if !cfg.Production() {
		t.Error("default environment should be production")
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "no activities key",
			data: `
[activities]
base_url = "https://api.activities.example.com"
[hotel]
username = "u"
password = "p"
base_url = "https://api.hotel.example.com"
`,
			want: "activities.api_key",
		},
		{
			name: "no hotel password",
			data: `
[activities]
api_key = "k"
base_url = "https://api.activities.example.com"
[hotel]
username = "u"
base_url = "https://api.hotel.example.com"
`,
			want: "hotel.username and hotel.password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(cliWithPath(writeConfig(t, tt.data)))
			if err == nil {
				t.Fatal("Load() expected error for missing credentials")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MockModeAllowsMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
[activities]
base_url = "https://api.activities.example.com"

[hotel]
base_url = "https://api.hotel.example.com"

[mock]
enabled = true
location_id = 5
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v; mock mode should not require credentials", err)
	}
	if !cfg.Mock.Enabled {
		t.Error("Mock.Enabled = false, want true")
	}
	if cfg.Mock.LocationID != 5 {
		t.Errorf("Mock.LocationID = %d, want 5", cfg.Mock.LocationID)
	}
}

func TestLoad_NonHTTPSBaseURL(t *testing.T) {
	path := writeConfig(t, `
[activities]
api_key = "k"
base_url = "http://api.activities.example.com"

[hotel]
username = "u"
password = "p"
base_url = "https://api.hotel.example.com"
`)

	_, err := Load(cliWithPath(path))
	if err == nil || !strings.Contains(err.Error(), "HTTPS") {
		t.Errorf("Load() error = %v, want HTTPS validation error", err)
	}
}

func TestLoad_InvalidCacheBackend(t *testing.T) {
	path := writeConfig(t, validConfig+`
[cache]
backend = "memcached"
`)

	_, err := Load(cliWithPath(path))
	if err == nil || !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("Load() error = %v, want cache.backend validation error", err)
	}
}

func TestLoad_RedisBackendRequiresAddress(t *testing.T) {
	path := writeConfig(t, validConfig+`
[cache]
backend = "redis"
`)

	_, err := Load(cliWithPath(path))
	if err == nil || !strings.Contains(err.Error(), "redis_address") {
		t.Errorf("Load() error = %v, want redis_address validation error", err)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, validConfig)

	cli := &CLI{
		Config:           path,
		Port:             1234,
		ActivitiesAPIKey: "cli-key",
		HotelUser:        "cli-user",
		LogLevel:         "warn",
	}
	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 1234 {
		t.Errorf("Server.Port = %d, want 1234", cfg.Server.Port)
	}
	if cfg.Activities.APIKey != "cli-key" {
		t.Errorf("Activities.APIKey = %q, want cli-key", cfg.Activities.APIKey)
	}
	if cfg.Hotel.Username != "cli-user" {
		t.Errorf("Hotel.Username = %q, want cli-user", cfg.Hotel.Username)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_MetricsPathConflict(t *testing.T) {
	path := writeConfig(t, validConfig+`
[metrics]
enabled = true
path = "/api/hotel/metrics"
`)

	_, err := Load(cliWithPath(path))
	if err == nil || !strings.Contains(err.Error(), "conflicts with reserved route") {
		t.Errorf("Load() error = %v, want reserved-route conflict", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(cliWithPath(filepath.Join(t.TempDir(), "nope.toml")))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestWarnPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}

	path := writeConfig(t, validConfig)
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cfg.WarnPermissions(logger)

	if !strings.Contains(buf.String(), "readable by group/others") {
		t.Errorf("expected permissions warning, got %q", buf.String())
	}
}

func TestAddr(t *testing.T) {
	sc := &ServerConfig{Host: "0.0.0.0", Port: 8000}
	if got := sc.Addr(); got != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8000")
	}
}
