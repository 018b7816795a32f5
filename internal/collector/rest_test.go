package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"RSIWatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTFetcher_FetchDailyBars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		assert.Equal(t, "ETH-USD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "3mo", r.URL.Query().Get("range"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"timestamp":1700092800,"open":2,"high":2,"low":2,"close":2,"volume":1},
			{"timestamp":1700006400,"open":1,"high":1,"low":1,"close":1,"volume":1}
		]`))
	}))
	defer server.Close()

	f := NewRESTFetcher(server.URL, "secret", "")
	bars, err := f.FetchDailyBars(context.Background(), "ETH-USD", model.Period3mo)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.0, bars[0].Close)
	assert.Equal(t, 2.0, bars[1].Close)
	assert.Equal(t, "rest", f.Name())
}

func TestRESTFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `boom`},
		{name: "bad json", status: http.StatusOK, body: `{"x":`},
		{name: "empty", status: http.StatusOK, body: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewRESTFetcher(server.URL, "", "").FetchDailyBars(context.Background(), "X", model.Period1y)
			assert.Error(t, err)
		})
	}
}
