package scheduler

import (
	"context"
	"fmt"
	"sync"

	"RSIWatch/internal/model"
	"RSIWatch/internal/render"
	"RSIWatch/internal/server"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Collector produces RSI snapshots.
type Collector interface {
	Collect(ctx context.Context, period model.Period, window int) (*model.Snapshot, error)
}

// Invalidator drops a cached price history so the next collect refetches it.
type Invalidator interface {
	Invalidate(ctx context.Context, symbol string, period model.Period) error
}

// Broadcaster delivers refreshed snapshots to live subscribers.
type Broadcaster interface {
	Subscriptions() []server.Subscription
	Publish(snap *model.Snapshot)
}

// Options holds the default view refreshed on every run.
type Options struct {
	Symbol        string
	DefaultPeriod model.Period
	DefaultWindow int
}

// Scheduler manages the periodic refresh job.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   Collector
	Invalidator Invalidator
	Broadcaster Broadcaster
	Logger      *zap.Logger
	Ctx         context.Context
	opts        Options

	mu sync.Mutex // serializes runs
}

// NewScheduler creates a new Scheduler. inv and bc may be nil.
func NewScheduler(ctx context.Context, opts Options, col Collector, inv Invalidator, bc Broadcaster, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Invalidator: inv,
		Broadcaster: bc,
		Logger:      logger,
		Ctx:         ctx,
		opts:        opts,
	}
}

// Register adds the refresh job on refreshCron (six fields, seconds first).
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refresh); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the refresh immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refresh()
}

func (s *Scheduler) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := s.views()
	s.Logger.Info("running refresh", zap.Int("views", len(views)))

	if s.Invalidator != nil {
		seen := make(map[model.Period]bool)
		for _, v := range views {
			if seen[v.Period] {
				continue
			}
			seen[v.Period] = true
			if err := s.Invalidator.Invalidate(s.Ctx, s.opts.Symbol, v.Period); err != nil {
				s.Logger.Warn("invalidate cache", zap.String("period", string(v.Period)), zap.Error(err))
			}
		}
	}

	for i, v := range views {
		if s.Ctx.Err() != nil {
			return
		}
		snap, err := s.Collector.Collect(s.Ctx, v.Period, v.Window)
		if err != nil {
			s.Logger.Error("refresh collect",
				zap.String("period", string(v.Period)),
				zap.Int("window", v.Window),
				zap.Error(err))
			continue
		}
		if i == 0 {
			s.Logger.Info(render.FormatSignalLine(snap),
				zap.String("regime", string(snap.Signal.Regime)),
				zap.Float64("close", snap.Summary.LatestClose))
		}
		if s.Broadcaster != nil {
			s.Broadcaster.Publish(snap)
		}
	}
}

// views returns the default view followed by distinct live subscriptions.
func (s *Scheduler) views() []server.Subscription {
	def := server.Subscription{Period: s.opts.DefaultPeriod, Window: s.opts.DefaultWindow}
	views := []server.Subscription{def}
	if s.Broadcaster == nil {
		return views
	}
	for _, sub := range s.Broadcaster.Subscriptions() {
		if sub != def {
			views = append(views, sub)
		}
	}
	return views
}
