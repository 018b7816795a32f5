package cli

import (
	"context"
	"fmt"

	"RSIWatch/internal/cache"
	"RSIWatch/internal/collector"
	"RSIWatch/internal/config"
	"RSIWatch/internal/telemetry"

	"go.uber.org/zap"
)

const (
	serviceName   = "rsiwatch"
	mockBasePrice = 60000.0
	redisMaxConns = 10
)

// app holds the components shared by serve and report.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry telemetry.Provider
	fetcher   collector.Fetcher
	cached    *collector.CachedFetcher // nil when caching is off
	collector *collector.Collector
	closers   []func()
}

type appOptions struct {
	source string // overrides data_source.provider when set
	cache  bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	tel, err := newTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.telemetry = tel
	a.closers = append(a.closers, tel.Shutdown)

	provider := cfg.DataSource.Provider
	if opts.source != "" {
		provider = opts.source
	}
	fetcher, err := newFetcher(cfg, provider)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("data source", zap.String("provider", fetcher.Name()), zap.String("symbol", cfg.DataSource.Symbol))

	if opts.cache {
		store, closeStore, err := newStore(ctx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		if closeStore != nil {
			a.closers = append(a.closers, closeStore)
		}
		a.cached = collector.NewCachedFetcher(fetcher, store, cfg.Cache.TTL, logger, tel)
		fetcher = a.cached
	}
	a.fetcher = fetcher
	a.collector = collector.NewCollector(fetcher, cfg.DataSource.Symbol, logger, tel)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newFetcher(cfg *config.Config, provider string) (collector.Fetcher, error) {
	switch provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy), nil
	case "rest":
		if cfg.DataSource.BaseURL == "" {
			return nil, fmt.Errorf("rest provider requires data_source.base_url")
		}
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: mockBasePrice}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", provider)
	}
}

// newStore returns Redis when cache.redis_url is set, otherwise an in-process store.
// An unreachable Redis falls back to memory so the dashboard still starts.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Store, func(), error) {
	if cfg.Cache.RedisURL == "" {
		return cache.NewMemoryStore(), nil, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL, redisMaxConns)
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryStore(), nil, nil
	}
	store := cache.NewRedisStore(client, cache.DefaultRedisPrefix)
	logger.Info("using redis cache", zap.Duration("ttl", cfg.Cache.TTL))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}, nil
}

func newTelemetry(ctx context.Context, cfg *config.Config, logger *zap.Logger) (telemetry.Provider, error) {
	if !cfg.Telemetry.Enabled {
		return &telemetry.NoopProvider{}, nil
	}
	dp := telemetry.NewDatadogProvider(&telemetry.DatadogConfig{
		AgentHost:     cfg.Telemetry.AgentHost,
		AgentPort:     cfg.Telemetry.AgentPort,
		ServiceName:   serviceName,
		ServiceEnv:    cfg.Env,
		Tags:          cfg.Telemetry.Tags,
		EnableTracing: cfg.Telemetry.Tracing,
		EnableMetrics: true,
	}, logger)
	if err := dp.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	return dp, nil
}
