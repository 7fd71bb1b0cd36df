package control

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/broker/sim"
	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/fusion"
	"github.com/quantfx/trader/risk"
	"github.com/quantfx/trader/sentiment"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	registry := prometheus.NewRegistry()
	eng, err := engine.New(engine.Config{
		Instruments: []string{"EUR_USD"},
		Weights:     fusion.DefaultWeights(),
		Sizer:       risk.SizerConfig{RiskPerTrade: 0.01, MinStopDistance: 0.001, MinUnits: 1000, MaxUnitsCap: 50000, MaxBalanceFraction: 0.5},
		Limits:      risk.Limits{MaxDailyTrades: 50, MaxDailyRisk: 0.05, MaxPositions: 5},
	}, sim.NewEngine(10000), sentiment.NewStatic(0.5), nil, engine.NewMetrics(registry), zerolog.Nop())
	require.NoError(t, err)
	return NewServer(eng, registry, zerolog.Nop()), eng
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st engine.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.False(t, st.Paused)
	assert.Equal(t, 0, st.DailyTrades)
}

func TestPauseResumeEndpoints(t *testing.T) {
	s, eng := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/pause", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, eng.Paused())

	resp, err = http.Post(srv.URL+"/resume", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, eng.Paused())

	// Wrong method is rejected by the router.
	resp, err = http.Get(srv.URL + "/pause")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fxtrader_cycles_total")
}

func TestDecisionFeed(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/decisions"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.clients) == 1
	}, time.Second, 10*time.Millisecond)

	sent := fusion.Decision{
		Instrument: "EUR_USD",
		Action:     fusion.Buy,
		Confidence: 0.82,
		Time:       time.Now().UTC(),
	}
	s.Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got fusion.Decision
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "EUR_USD", got.Instrument)
	assert.Equal(t, fusion.Buy, got.Action)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
}
