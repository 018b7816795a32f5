package cache

import (
	"context"
	"fmt"
	"time"

	"RSIWatch/internal/model"
)

// Store memoizes fetched bars by key with a time-to-live.
type Store interface {
	// Get returns the cached bars and whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]model.OHLCV, bool, error)
	Set(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Flush removes every entry owned by the store.
	Flush(ctx context.Context) error
}

// Key builds the cache key for a symbol and period.
func Key(symbol string, period model.Period) string {
	return fmt.Sprintf("%s|%s", symbol, period)
}
