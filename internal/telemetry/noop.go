package telemetry

import (
	"context"
	"time"
)

// NoopProvider is used when telemetry is disabled.
type NoopProvider struct{}

func (p *NoopProvider) Initialize(_ context.Context) error { return nil }
func (p *NoopProvider) Shutdown()                          {}

func (p *NoopProvider) StartSpan(ctx context.Context, _ string) (Span, context.Context) {
	return &noopSpan{}, ctx
}

func (p *NoopProvider) IncrementCounter(_ string, _ int64, _ ...string) {}
func (p *NoopProvider) Gauge(_ string, _ float64, _ ...string)         {}
func (p *NoopProvider) Timing(_ string, _ time.Duration, _ ...string)  {}
