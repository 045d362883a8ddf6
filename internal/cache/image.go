package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"trektoo-proxy-go/internal/metrics"
)

// ErrImageUnavailable is returned for ids whose image fetch previously
// failed. Failed ids are suppressed for the life of the process so a broken
// upstream entry is not re-fetched on every request.
var ErrImageUnavailable = errors.New("image unavailable")

// Resolver resolves an activity id to an image URL via an upstream detail
// fetch.
type Resolver interface {
	ResolveImage(ctx context.Context, id int) (string, error)
}

// ImageCache caches resolved image URLs. Each id moves through
// absent → fetching → cached | errored; cached entries older than the TTL
// are treated as absent on the next read (lazy expiry, no active sweep).
// Concurrent lookups for the same id share a single upstream fetch.
type ImageCache struct {
	store    Store
	resolver Resolver
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	inflight map[int]chan struct{}
	errored  map[int]struct{}
}

// NewImageCache creates an ImageCache. The metrics parameter may be nil.
func NewImageCache(store Store, resolver Resolver, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *ImageCache {
	return &ImageCache{
		store:    store,
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With("component", "image_cache"),
		metrics:  m,
		inflight: make(map[int]chan struct{}),
		errored:  make(map[int]struct{}),
	}
}

// Lookup returns the image URL for id, fetching it from upstream on a miss.
func (c *ImageCache) Lookup(ctx context.Context, id int) (string, error) {
	for {
		c.mu.Lock()
		if _, bad := c.errored[id]; bad {
			c.mu.Unlock()
			c.count("errored")
			return "", ErrImageUnavailable
		}
		if ch, ok := c.inflight[id]; ok {
			c.mu.Unlock()
			select {
			case <-ch:
				continue // fetch finished; re-read state
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		c.mu.Unlock()

		e, ok, err := c.store.Get(ctx, id)
		if err != nil {
			return "", err
		}
		if ok {
			if c.now().Sub(e.StoredAt) < c.ttl {
				c.count("hit")
				return e.URL, nil
			}
			c.count("expired")
		} else {
			c.count("miss")
		}

		url, err := c.fetch(ctx, id)
		if err != nil {
			return "", err
		}
		return url, nil
	}
}

// fetch performs the upstream resolve for id, deduplicating concurrent
// callers. On failure the id transitions to errored.
func (c *ImageCache) fetch(ctx context.Context, id int) (string, error) {
	c.mu.Lock()
	if ch, ok := c.inflight[id]; ok {
		// Lost the race; wait for the winner and re-read the store.
		c.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return c.Lookup(ctx, id)
	}
	ch := make(chan struct{})
	c.inflight[id] = ch
	c.mu.Unlock()

	url, err := c.resolver.ResolveImage(ctx, id)

	c.mu.Lock()
	delete(c.inflight, id)
	if err != nil || url == "" {
		c.errored[id] = struct{}{}
	}
	c.mu.Unlock()
	close(ch)

	if err != nil {
		c.logger.Warn("image fetch failed",
			"activity_id", id,
			"err", err,
		)
		return "", ErrImageUnavailable
	}
	if url == "" {
		return "", ErrImageUnavailable
	}

	if err := c.store.Set(ctx, id, Entry{URL: url, StoredAt: c.now()}); err != nil {
		// The URL is still usable this request; only persistence failed.
		c.logger.Warn("image cache write failed",
			"activity_id", id,
			"err", err,
		)
	}
	return url, nil
}

// Clear drops all cached entries and forgets errored ids.
func (c *ImageCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.errored = make(map[int]struct{})
	c.mu.Unlock()
	return c.store.Clear(ctx)
}

func (c *ImageCache) count(result string) {
	if c.metrics != nil {
		c.metrics.ImageCacheLookups.WithLabelValues(result).Inc()
	}
}
