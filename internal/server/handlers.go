package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"RSIWatch/internal/config"
	"RSIWatch/internal/model"

	"go.uber.org/zap"
)

// parseParams reads period and window from the query, falling back to the server defaults.
func (s *Server) parseParams(r *http.Request) (model.Period, int, error) {
	q := r.URL.Query()

	period := s.opts.DefaultPeriod
	if v := q.Get("period"); v != "" {
		p, err := model.ParsePeriod(v)
		if err != nil {
			return "", 0, err
		}
		period = p
	}

	window := s.opts.DefaultWindow
	if v := q.Get("window"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return "", 0, fmt.Errorf("window %q is not an integer", v)
		}
		window = w
	}
	if err := config.ValidateWindow(window); err != nil {
		return "", 0, err
	}
	return period, window, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleRSI(w http.ResponseWriter, r *http.Request) {
	period, window, err := s.parseParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
		return
	}

	snap, err := s.collector.Collect(r.Context(), period, window)
	if err != nil {
		s.logger.Error("collect snapshot",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("period", string(period)),
			zap.Int("window", window),
			zap.Error(err))
		writeErrorWithDetails(w, r, http.StatusBadGateway, ErrCodeExternalAPIError,
			"price data unavailable", err.Error())
		return
	}
	writeSuccess(w, r, snap, "")
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if s.invalidator == nil {
		writeError(w, r, http.StatusNotImplemented, ErrCodeNotConfigured, "cache is disabled")
		return
	}

	v := r.URL.Query().Get("period")
	if v == "" {
		if err := s.invalidator.InvalidateAll(r.Context()); err != nil {
			writeErrorWithDetails(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "cache flush failed", err.Error())
			return
		}
		writeSuccess(w, r, map[string]string{"invalidated": "all"}, "cache flushed")
		return
	}

	period, err := model.ParsePeriod(v)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
		return
	}
	if err := s.invalidator.Invalidate(r.Context(), s.opts.Symbol, period); err != nil {
		writeErrorWithDetails(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "cache invalidation failed", err.Error())
		return
	}
	writeSuccess(w, r, map[string]string{"invalidated": s.opts.Symbol + "|" + string(period)}, "cache entry removed")
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	period, window, err := s.parseParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
		return
	}

	// The first snapshot is collected before upgrading so provider failures surface as HTTP errors.
	snap, err := s.collector.Collect(r.Context(), period, window)
	if err != nil {
		writeErrorWithDetails(w, r, http.StatusBadGateway, ErrCodeExternalAPIError,
			"price data unavailable", err.Error())
		return
	}
	initial, err := json.Marshal(snap)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "encode snapshot")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, clientSendSize),
		sub:  Subscription{Period: period, Window: window},
	}
	client.send <- initial
	s.hub.serve(client)
}
