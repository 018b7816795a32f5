package collector

import (
	"context"
	"time"

	"RSIWatch/internal/cache"
	"RSIWatch/internal/model"
	"RSIWatch/internal/telemetry"

	"go.uber.org/zap"
)

// DefaultCacheTTL is how long fetched bars are reused.
const DefaultCacheTTL = 10 * time.Minute

// CachedFetcher memoizes another Fetcher by symbol and period.
// Store failures are logged and bypassed; they never fail a fetch.
type CachedFetcher struct {
	inner     Fetcher
	store     cache.Store
	ttl       time.Duration
	logger    *zap.Logger
	telemetry telemetry.Provider
}

// NewCachedFetcher wraps inner with store. A non-positive ttl selects DefaultCacheTTL.
func NewCachedFetcher(inner Fetcher, store cache.Store, ttl time.Duration, logger *zap.Logger, tel telemetry.Provider) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if tel == nil {
		tel = &telemetry.NoopProvider{}
	}
	return &CachedFetcher{inner: inner, store: store, ttl: ttl, logger: logger, telemetry: tel}
}

func (c *CachedFetcher) Name() string { return c.inner.Name() }

// Inner returns the wrapped fetcher.
func (c *CachedFetcher) Inner() Fetcher { return c.inner }

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	key := cache.Key(symbol, period)
	tag := "period:" + string(period)

	bars, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.telemetry.IncrementCounter(telemetry.MetricCacheError, 1, tag)
		c.logger.Warn("cache read failed, fetching upstream", zap.String("key", key), zap.Error(err))
	case ok:
		c.telemetry.IncrementCounter(telemetry.MetricCacheHit, 1, tag)
		return bars, nil
	default:
		c.telemetry.IncrementCounter(telemetry.MetricCacheMiss, 1, tag)
	}

	span, ctx := c.telemetry.StartSpan(ctx, "collector.fetch")
	span.SetTag("source", c.inner.Name())
	start := time.Now()
	bars, err = c.inner.FetchDailyBars(ctx, symbol, period)
	c.telemetry.Timing(telemetry.MetricFetchDuration, time.Since(start), tag, "source:"+c.inner.Name())
	span.Finish()
	if err != nil {
		c.telemetry.IncrementCounter(telemetry.MetricFetchError, 1, tag)
		return nil, err
	}

	if err := c.store.Set(ctx, key, bars, c.ttl); err != nil {
		c.telemetry.IncrementCounter(telemetry.MetricCacheError, 1, tag)
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}

// Invalidate drops the cached bars for symbol and period.
func (c *CachedFetcher) Invalidate(ctx context.Context, symbol string, period model.Period) error {
	return c.store.Delete(ctx, cache.Key(symbol, period))
}

// InvalidateAll drops every cached entry.
func (c *CachedFetcher) InvalidateAll(ctx context.Context) error {
	return c.store.Flush(ctx)
}
