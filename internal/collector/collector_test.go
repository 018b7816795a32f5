package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"RSIWatch/internal/calculator"
	"RSIWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func barsFromCloses(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: fixedEnd.AddDate(0, 0, i-len(closes)), Close: c}
	}
	return bars
}

func TestCollector_Collect(t *testing.T) {
	fetcher := &MockFetcher{DailyData: barsFromCloses(44, 44, 45.5, 47, 46.5, 46, 45, 44.5, 45, 45.5, 46, 47, 48, 48.5, 49)}
	c := NewCollector(fetcher, "BTC-USD", zap.NewNop(), nil)

	snap, err := c.Collect(context.Background(), model.Period1y, 14)
	require.NoError(t, err)

	assert.Equal(t, "BTC-USD", snap.Symbol)
	assert.Equal(t, model.Period1y, snap.Period)
	assert.Equal(t, 14, snap.Window)
	assert.Equal(t, "mock", snap.Source)
	assert.Len(t, snap.RSI, 15)
	assert.Equal(t, model.RegimeOverbought, snap.Signal.Regime)
	assert.InDelta(t, 75.0, snap.Signal.Latest.Value, 1e-9)

	assert.Equal(t, 49.0, snap.Summary.LatestClose)
	assert.Equal(t, 49.0, snap.Summary.PeriodHigh)
	assert.Equal(t, 44.0, snap.Summary.PeriodLow)
	assert.Equal(t, 1.0, snap.Summary.Position)
}

func TestCollector_FlatSeriesIsUnknown(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	c := NewCollector(&MockFetcher{DailyData: barsFromCloses(closes...)}, "FLAT", zap.NewNop(), nil)

	snap, err := c.Collect(context.Background(), model.Period1mo, 5)
	require.NoError(t, err)
	assert.Equal(t, model.RegimeUnknown, snap.Signal.Regime)
	assert.False(t, snap.Signal.Latest.Valid)
	assert.Equal(t, 0.5, snap.Summary.Position)
}

func TestCollector_WindowLongerThanHistory(t *testing.T) {
	c := NewCollector(&MockFetcher{DailyData: barsFromCloses(1, 2, 3)}, "X", zap.NewNop(), nil)
	snap, err := c.Collect(context.Background(), model.Period1mo, 14)
	require.NoError(t, err)
	assert.Zero(t, snap.RSI.DefinedCount())
	assert.Equal(t, model.RegimeUnknown, snap.Signal.Regime)
}

func TestCollector_Errors(t *testing.T) {
	netErr := errors.New("connection refused")
	c := NewCollector(&MockFetcher{Err: netErr}, "X", zap.NewNop(), nil)
	_, err := c.Collect(context.Background(), model.Period1y, 14)
	assert.ErrorIs(t, err, netErr)

	c = NewCollector(&MockFetcher{DailyData: []model.OHLCV{}}, "X", zap.NewNop(), nil)
	_, err = c.Collect(context.Background(), model.Period1y, 14)
	assert.ErrorIs(t, err, ErrNoData)

	c = NewCollector(&MockFetcher{Price: 10, End: fixedEnd}, "X", zap.NewNop(), nil)
	_, err = c.Collect(context.Background(), model.Period1y, 0)
	assert.ErrorIs(t, err, calculator.ErrInvalidWindow)
}

func TestMockFetcher_GeneratesPeriodLength(t *testing.T) {
	m := &MockFetcher{Price: 100, End: fixedEnd}
	for _, p := range model.Periods {
		bars, err := m.FetchDailyBars(context.Background(), "X", p)
		require.NoError(t, err)
		assert.Len(t, bars, p.Days())
		assert.True(t, bars[len(bars)-1].Time.Equal(fixedEnd))
		assert.Equal(t, 24*time.Hour, bars[1].Time.Sub(bars[0].Time))
	}
}

func TestMockFetcher_ConcurrentCalls(t *testing.T) {
	m := &MockFetcher{DailyData: barsFromCloses(1, 2, 3)}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.FetchDailyBars(context.Background(), "X", model.Period1mo)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, m.Calls())
}
