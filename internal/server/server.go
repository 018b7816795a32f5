package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"RSIWatch/internal/model"
	"RSIWatch/internal/telemetry"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Collector produces RSI snapshots.
type Collector interface {
	Collect(ctx context.Context, period model.Period, window int) (*model.Snapshot, error)
}

// Invalidator drops memoized price data.
type Invalidator interface {
	Invalidate(ctx context.Context, symbol string, period model.Period) error
	InvalidateAll(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Addr          string
	Symbol        string
	DefaultPeriod model.Period
	DefaultWindow int
}

// Server is the HTTP dashboard.
type Server struct {
	opts        Options
	collector   Collector
	invalidator Invalidator
	hub         *Hub
	logger      *zap.Logger
	telemetry   telemetry.Provider
	upgrader    websocket.Upgrader
	router      *mux.Router
	httpServer  *http.Server
}

// New builds the router. invalidator may be nil when caching is disabled.
func New(opts Options, col Collector, inv Invalidator, hub *Hub, logger *zap.Logger, tel telemetry.Provider) *Server {
	if tel == nil {
		tel = &telemetry.NoopProvider{}
	}
	s := &Server{
		opts:        opts,
		collector:   col,
		invalidator: inv,
		hub:         hub,
		logger:      logger,
		telemetry:   tel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(requestID, accessLog(s.logger, s.telemetry), recoverer(s.logger))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)

	// Full paths on the root router keep 405 for method mismatches.
	r.HandleFunc(apiPrefix+"/rsi", s.handleRSI).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/cache/invalidate", s.handleInvalidate).Methods(http.MethodPost)

	s.router = r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.opts.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}
