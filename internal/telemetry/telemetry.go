package telemetry

import (
	"context"
	"time"
)

// Metric names.
const (
	MetricFetchDuration = "rsiwatch.fetch.duration"
	MetricFetchError    = "rsiwatch.fetch.error"
	MetricCacheHit      = "rsiwatch.cache.hit"
	MetricCacheMiss     = "rsiwatch.cache.miss"
	MetricCacheError    = "rsiwatch.cache.error"
	MetricLatestRSI     = "rsiwatch.rsi.latest"
	MetricHTTPRequest   = "rsiwatch.http.request"
)

// Span represents a tracing span
type Span interface {
	SetTag(key string, value any)
	Finish()
}

type noopSpan struct{}

func (s *noopSpan) SetTag(_ string, _ any) {}
func (s *noopSpan) Finish()                {}

// Provider defines the interface for telemetry providers
type Provider interface {
	Initialize(ctx context.Context) error
	Shutdown()
	StartSpan(ctx context.Context, operationName string) (Span, context.Context)
	IncrementCounter(name string, value int64, tags ...string)
	Gauge(name string, value float64, tags ...string)
	Timing(name string, value time.Duration, tags ...string)
}
