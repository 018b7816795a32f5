package collector

import (
	"context"
	"errors"

	"RSIWatch/internal/model"
)

// ErrNoData is returned when a provider yields no usable bars.
var ErrNoData = errors.New("no price data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error)
	Name() string
}
