package collector

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"RSIWatch/internal/calculator"
	"RSIWatch/internal/model"
	"RSIWatch/internal/signal"
	"RSIWatch/internal/telemetry"

	"go.uber.org/zap"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
	End       time.Time // last bar date; zero means today
	calls     atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchDailyBars ran. Safe for concurrent use.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, period model.Period) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return generateMockBars(m.Price, period.Days(), end), nil
}

// generateMockBars produces a drifting oscillation so RSI moves through all regimes.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		drift := 1 + float64(i-count/2)*0.0005
		wave := 1 + 0.04*math.Sin(float64(i)/6)
		p := basePrice * drift * wave
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher   Fetcher
	Symbol    string
	Logger    *zap.Logger
	Telemetry telemetry.Provider
	now       func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, logger *zap.Logger, tel telemetry.Provider) *Collector {
	if tel == nil {
		tel = &telemetry.NoopProvider{}
	}
	return &Collector{
		Fetcher:   fetcher,
		Symbol:    symbol,
		Logger:    logger,
		Telemetry: tel,
		now:       time.Now,
	}
}

// Collect fetches the price history for period and computes the RSI snapshot.
func (c *Collector) Collect(ctx context.Context, period model.Period, window int) (*model.Snapshot, error) {
	span, ctx := c.Telemetry.StartSpan(ctx, "collector.collect")
	defer span.Finish()
	span.SetTag("symbol", c.Symbol)
	span.SetTag("period", string(period))
	span.SetTag("window", window)

	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, period)
	if err != nil {
		span.SetTag("error", err.Error())
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch daily bars: %w", ErrNoData)
	}

	series := model.PriceSeries{Symbol: c.Symbol, Period: period, Bars: bars, FetchedAt: c.now()}
	closes := series.Closes()

	rsi, err := calculator.ComputeRSI(closes, window)
	if err != nil {
		return nil, fmt.Errorf("compute rsi: %w", err)
	}

	sig := signal.Evaluate(rsi)
	if sig.Latest.Valid {
		c.Telemetry.Gauge(telemetry.MetricLatestRSI, sig.Latest.Value, "symbol:"+c.Symbol, "window:"+fmt.Sprint(window))
	}

	c.Logger.Debug("collected rsi snapshot",
		zap.String("symbol", c.Symbol),
		zap.String("period", string(period)),
		zap.Int("window", window),
		zap.Int("bars", len(bars)),
		zap.Int("defined", rsi.DefinedCount()),
		zap.String("regime", string(sig.Regime)),
	)

	return &model.Snapshot{
		Symbol:      c.Symbol,
		Period:      period,
		Window:      window,
		Source:      c.Fetcher.Name(),
		Bars:        bars,
		RSI:         rsi,
		Summary:     c.summarize(closes),
		Signal:      sig,
		GeneratedAt: series.FetchedAt,
	}, nil
}

func (c *Collector) summarize(closes []float64) model.PriceSummary {
	latest := closes[len(closes)-1]
	sum := model.PriceSummary{LatestClose: latest}

	h, l, err := calculator.CalculateRange(closes)
	if err != nil {
		c.Logger.Warn("period range calculation failed", zap.Error(err))
		sum.PeriodHigh, sum.PeriodLow = latest, latest
	} else {
		sum.PeriodHigh, sum.PeriodLow = h, l
	}

	if pos, err := calculator.CalculatePosition(latest, sum.PeriodHigh, sum.PeriodLow); err != nil {
		c.Logger.Warn("period position calculation failed", zap.Error(err))
		sum.Position = 0.5
	} else {
		sum.Position = pos
	}
	return sum
}
