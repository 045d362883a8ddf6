package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Prefetcher resolves image URLs for a batch of activity ids through the
// ImageCache with a fixed concurrency limit and a per-fetch timeout. Results
// are merged as each fetch resolves; ordering across the batch is not
// guaranteed and individual failures do not fail the batch.
type Prefetcher struct {
	cache       *ImageCache
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewPrefetcher creates a Prefetcher.
func NewPrefetcher(cache *ImageCache, concurrency int, timeout time.Duration, logger *slog.Logger) *Prefetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Prefetcher{
		cache:       cache,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger.With("component", "image_prefetcher"),
	}
}

// Batch fetches images for ids and returns the resolved id → URL map.
// Ids that fail or have no usable image are simply absent from the result.
func (p *Prefetcher) Batch(ctx context.Context, ids []int) map[int]string {
	var mu sync.Mutex
	resolved := make(map[int]string, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			url, err := p.cache.Lookup(fetchCtx, id)
			if err != nil {
				p.logger.Debug("prefetch skipped",
					"activity_id", id,
					"err", err,
				)
				return nil // one failed image never fails the batch
			}

			mu.Lock()
			resolved[id] = url
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return resolved
}
