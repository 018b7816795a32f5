package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"RSIWatch/internal/collector"
	"RSIWatch/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvalidator struct {
	mu      sync.Mutex
	keys    []string
	flushed bool
}

func (s *stubInvalidator) Invalidate(_ context.Context, symbol string, period model.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, symbol+"|"+string(period))
	return nil
}

func (s *stubInvalidator) InvalidateAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

type failingCollector struct{}

func (failingCollector) Collect(context.Context, model.Period, int) (*model.Snapshot, error) {
	return nil, errors.New("upstream timeout")
}

func testBars() []model.OHLCV {
	closes := []float64{44, 44, 45.5, 47, 46.5, 46, 45, 44.5, 45, 45.5, 46, 47, 48, 48.5, 49, 48, 47.5}
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: end.AddDate(0, 0, i-len(closes)), Close: c}
	}
	return bars
}

func newTestServer(t *testing.T, col Collector, inv Invalidator) (*Server, *Hub) {
	t.Helper()
	if col == nil {
		col = collector.NewCollector(&collector.MockFetcher{DailyData: testBars()}, "BTC-USD", zap.NewNop(), nil)
	}
	hub := NewHub(zap.NewNop())
	srv := New(Options{
		Addr:          ":0",
		Symbol:        "BTC-USD",
		DefaultPeriod: model.Period1y,
		DefaultWindow: 14,
	}, col, inv, hub, zap.NewNop(), nil)
	return srv, hub
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRSIEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/rsi?period=6mo&window=14")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Snapshot `json:"data"`
		Meta Meta           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.Period6mo, resp.Data.Period)
	assert.Equal(t, 14, resp.Data.Window)
	require.Len(t, resp.Data.RSI, 17)
	assert.False(t, resp.Data.RSI[13].Valid)
	assert.True(t, resp.Data.RSI[14].Valid)
	assert.InDelta(t, 75.0, resp.Data.RSI[14].Value, 1e-9)
	assert.NotEmpty(t, resp.Meta.RequestID)
	assert.NotEmpty(t, resp.Data.Signal.Message)
}

func TestRSIEndpoint_Defaults(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/rsi")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"period":"1y"`)
	assert.Contains(t, rec.Body.String(), `"window":14`)
}

func TestRSIEndpoint_InvalidParams(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	tests := []string{
		"/api/v1/rsi?period=10y",
		"/api/v1/rsi?window=abc",
		"/api/v1/rsi?window=1",
		"/api/v1/rsi?window=31",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodGet, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, ErrCodeInvalidParameter, resp.Error.Code)
		})
	}
}

func TestRSIEndpoint_ProviderFailure(t *testing.T) {
	srv, _ := newTestServer(t, failingCollector{}, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/rsi")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeExternalAPIError, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "upstream timeout")
}

func TestRSIEndpoint_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/rsi")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/v1/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidate(t *testing.T) {
	inv := &stubInvalidator{}
	srv, _ := newTestServer(t, nil, inv)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/cache/invalidate?period=3mo")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"BTC-USD|3mo"}, inv.keys)
	assert.False(t, inv.flushed)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, inv.flushed)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/v1/cache/invalidate?period=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidate_NotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrCodeNotConfigured)
}

func TestDashboard(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/?window=14&period=1y")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "BTC-USD RSI Dashboard")
	assert.Equal(t, 2, strings.Count(body, `class="guide"`))
	assert.Contains(t, body, `class="price"`)
	assert.Contains(t, body, `class="rsi"`)
	assert.Contains(t, body, `<option value="1y" selected>`)
}

func TestDashboard_Errors(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/?window=99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)

	srv, _ = newTestServer(t, failingCollector{}, nil)
	rec = do(t, srv.Handler(), http.MethodGet, "/")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Price data unavailable")
}

func TestPolylines_BreaksAtGaps(t *testing.T) {
	rsi := model.RSISeries{
		model.Undefined, model.Undefined,
		model.Defined(40), model.Defined(50),
		model.Undefined,
		model.Defined(60), model.Defined(65), model.Defined(70),
	}
	lines := polylines(rsi.Floats(), 0, 100)
	require.Len(t, lines, 2)
	assert.Len(t, strings.Fields(lines[0]), 2)
	assert.Len(t, strings.Fields(lines[1]), 3)

	assert.Nil(t, polylines([]float64{1}, 0, 1))
}

func TestScaleY(t *testing.T) {
	assert.Equal(t, chartPad, scaleY(100, 0, 100))
	assert.Equal(t, chartHeight-chartPad, scaleY(0, 0, 100))
	assert.Equal(t, chartHeight/2, scaleY(5, 5, 5))
}

func TestWebsocket(t *testing.T) {
	srv, hub := newTestServer(t, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?period=1y&window=14"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var first model.Snapshot
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 14, first.Window)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []Subscription{{Period: model.Period1y, Window: 14}}, hub.Subscriptions())

	// Snapshots for other subscriptions are not delivered.
	hub.Publish(&model.Snapshot{Symbol: "BTC-USD", Period: model.Period1y, Window: 7})
	hub.Publish(&model.Snapshot{Symbol: "BTC-USD", Period: model.Period1y, Window: 14, Source: "refresh"})

	var next model.Snapshot
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "refresh", next.Source)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebsocket_InvalidParams(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?window=0"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

type panickingCollector struct{}

func (panickingCollector) Collect(context.Context, model.Period, int) (*model.Snapshot, error) {
	panic("boom")
}

func TestRecoverer(t *testing.T) {
	srv, _ := newTestServer(t, panickingCollector{}, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/rsi")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrCodeInternalServer)
}
