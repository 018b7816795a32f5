package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDatadogProvider(t *testing.T) {
	config := &DatadogConfig{
		AgentHost:   "localhost",
		AgentPort:   "8126",
		ServiceName: "rsiwatch",
		ServiceEnv:  "test",
	}

	provider := NewDatadogProvider(config, zap.NewNop())

	assert.Equal(t, "8125", provider.config.StatsdPort)
	assert.False(t, provider.initialized)
	assert.Nil(t, provider.statsd)
}

func TestDatadogProvider_MetricsEnabled(t *testing.T) {
	provider := NewDatadogProvider(&DatadogConfig{
		AgentHost:     "127.0.0.1",
		AgentPort:     "8126",
		ServiceName:   "rsiwatch",
		ServiceEnv:    "test",
		EnableMetrics: true,
	}, zap.NewNop())

	require.NoError(t, provider.Initialize(context.Background()))
	assert.True(t, provider.initialized)
	assert.NotNil(t, provider.statsd)
	// second call is a no-op
	require.NoError(t, provider.Initialize(context.Background()))

	// UDP writes succeed without a listening agent
	assert.NotPanics(t, func() {
		provider.IncrementCounter(MetricCacheHit, 1, "period:1y")
		provider.Gauge(MetricLatestRSI, 55.5)
		provider.Timing(MetricFetchDuration, 120*time.Millisecond)
	})
	provider.Shutdown()
}

func TestDatadogProvider_TracingDisabledReturnsNoopSpan(t *testing.T) {
	provider := NewDatadogProvider(&DatadogConfig{AgentHost: "localhost", AgentPort: "8126"}, zap.NewNop())
	require.NoError(t, provider.Initialize(context.Background()))

	ctx := context.Background()
	span, spanCtx := provider.StartSpan(ctx, "collector.fetch")
	assert.IsType(t, &noopSpan{}, span)
	assert.Equal(t, ctx, spanCtx)
	span.SetTag("symbol", "BTC-USD")
	span.Finish()

	// metrics disabled: calls are dropped
	provider.IncrementCounter(MetricCacheMiss, 1)
	provider.Shutdown()
}

func TestNoopProvider(t *testing.T) {
	var p Provider = &NoopProvider{}
	require.NoError(t, p.Initialize(context.Background()))
	span, _ := p.StartSpan(context.Background(), "op")
	span.SetTag("k", "v")
	span.Finish()
	p.IncrementCounter("c", 1)
	p.Gauge("g", 1)
	p.Timing("t", time.Second)
	p.Shutdown()
}
