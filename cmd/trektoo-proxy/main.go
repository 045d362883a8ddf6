package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"golang.org/x/time/rate"

	"trektoo-proxy-go/internal/cache"
	"trektoo-proxy-go/internal/client"
	"trektoo-proxy-go/internal/config"
	"trektoo-proxy-go/internal/handler"
	"trektoo-proxy-go/internal/metrics"
	"trektoo-proxy-go/internal/middleware"
	"trektoo-proxy-go/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("trektoo-proxy"),
		kong.Description("Sanitizing API proxy for the Trektoo travel providers."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			newLogger,
			metrics.New,
			newEcho,
			newActivitiesService,
			newHotelService,
			newStore,
			newImageCache,
			newPrefetcher,
			handler.NewActivityHandler,
			handler.NewHotelHandler,
			handler.NewAuthHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, registerMetrics, warnConfigPermissions, startServer),
	).Run()
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		h = slog.NewTextHandler(os.Stdout, opts)
	default:
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h)
}

func newEcho(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Inbound timeouts to mitigate slow-client attacks. Upstream calls are
	// bounded separately by the per-provider client timeouts.
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 60 * time.Second
	e.Server.IdleTimeout = 120 * time.Second
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dB", cfg.Server.BodyMaxBytes)))
	e.Use(middleware.SecurityHeaders())

	if cfg.Metrics.Enabled {
		e.Use(middleware.MetricsMiddleware(m))
	}

	if cfg.Server.RateLimit.Enabled {
		store := echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit.RequestsPerSecond))
		e.Use(echomw.RateLimiter(store))
		logger.Info("rate limiter enabled", "rps", cfg.Server.RateLimit.RequestsPerSecond)
	}

	return e
}

func newActivitiesService(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*service.ActivitiesService, error) {
	c, err := client.NewActivitiesClient(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return service.NewActivitiesService(c, cfg, logger), nil
}

func newHotelService(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*service.HotelService, error) {
	c, err := client.NewHotelClient(cfg, logger, m)
	if err != nil {
		return nil, err
	}
	return service.NewHotelService(c, cfg, logger), nil
}

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewMemoryStore(), nil
	}

	rc, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return rc.Close() },
	})
	logger.Info("image cache backed by redis", "addr", cfg.Cache.RedisAddress)

	ttl := time.Duration(cfg.Cache.ImageTTLHours) * time.Hour
	return cache.NewRedisStore(rc, ttl), nil
}

func newImageCache(store cache.Store, svc *service.ActivitiesService, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *cache.ImageCache {
	ttl := time.Duration(cfg.Cache.ImageTTLHours) * time.Hour
	return cache.NewImageCache(store, svc, ttl, logger, m)
}

func newPrefetcher(ic *cache.ImageCache, cfg *config.Config, logger *slog.Logger) *cache.Prefetcher {
	timeout := time.Duration(cfg.Cache.PrefetchTimeoutSeconds) * time.Second
	return cache.NewPrefetcher(ic, cfg.Cache.PrefetchConcurrency, timeout, logger)
}

func registerMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics) {
	if !cfg.Metrics.Enabled {
		return
	}
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	e.GET(cfg.Metrics.Path, echo.WrapHandler(h))
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Server.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting server", "addr", addr)
			go func() {
				if err := e.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
