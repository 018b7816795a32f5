package telemetry

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// DatadogConfig holds configuration for Datadog services
type DatadogConfig struct {
	AgentHost     string
	AgentPort     string
	StatsdPort    string
	ServiceName   string
	ServiceEnv    string
	Tags          []string
	EnableTracing bool
	EnableMetrics bool
}

// DatadogProvider sends metrics to dogstatsd and spans to the trace agent.
type DatadogProvider struct {
	config      *DatadogConfig
	statsd      statsd.ClientInterface
	logger      *zap.Logger
	initialized bool
}

// NewDatadogProvider creates a new DatadogProvider with the given config
func NewDatadogProvider(config *DatadogConfig, logger *zap.Logger) *DatadogProvider {
	if config.StatsdPort == "" {
		config.StatsdPort = "8125"
	}
	return &DatadogProvider{
		config: config,
		logger: logger,
	}
}

// Initialize starts the tracer and the statsd client when enabled.
func (dp *DatadogProvider) Initialize(_ context.Context) error {
	if dp.initialized {
		return nil
	}

	if dp.config.EnableTracing {
		tracer.Start(
			tracer.WithServiceName(dp.config.ServiceName),
			tracer.WithEnv(dp.config.ServiceEnv),
			tracer.WithAgentAddr(net.JoinHostPort(dp.config.AgentHost, dp.config.AgentPort)),
		)
	}

	if dp.config.EnableMetrics {
		client, err := statsd.New(
			net.JoinHostPort(dp.config.AgentHost, dp.config.StatsdPort),
			statsd.WithTags(dp.config.Tags),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize statsd client: %w", err)
		}
		dp.statsd = client
	}

	dp.initialized = true
	return nil
}

// Shutdown stops the tracer and flushes statsd.
func (dp *DatadogProvider) Shutdown() {
	if dp.config.EnableTracing {
		tracer.Stop()
	}
	if dp.statsd != nil {
		if err := dp.statsd.Close(); err != nil {
			dp.logger.Warn("failed to close statsd client", zap.Error(err))
		}
	}
}

type ddSpan struct {
	span tracer.Span
}

func (s *ddSpan) SetTag(key string, value any) { s.span.SetTag(key, value) }
func (s *ddSpan) Finish()                      { s.span.Finish() }

// StartSpan starts a new trace span tagged with the component prefix of operationName.
func (dp *DatadogProvider) StartSpan(ctx context.Context, operationName string) (Span, context.Context) {
	if !dp.config.EnableTracing {
		return &noopSpan{}, ctx
	}
	span, ctx := tracer.StartSpanFromContext(ctx, operationName)
	span.SetTag("component", strings.Split(operationName, ".")[0])
	return &ddSpan{span: span}, ctx
}

func (dp *DatadogProvider) IncrementCounter(name string, value int64, tags ...string) {
	if dp.statsd == nil {
		return
	}
	if err := dp.statsd.Count(name, value, tags, 1); err != nil {
		dp.logger.Debug("statsd count failed", zap.String("metric", name), zap.Error(err))
	}
}

func (dp *DatadogProvider) Gauge(name string, value float64, tags ...string) {
	if dp.statsd == nil {
		return
	}
	if err := dp.statsd.Gauge(name, value, tags, 1); err != nil {
		dp.logger.Debug("statsd gauge failed", zap.String("metric", name), zap.Error(err))
	}
}

func (dp *DatadogProvider) Timing(name string, value time.Duration, tags ...string) {
	if dp.statsd == nil {
		return
	}
	if err := dp.statsd.Timing(name, value, tags, 1); err != nil {
		dp.logger.Debug("statsd timing failed", zap.String("metric", name), zap.Error(err))
	}
}
