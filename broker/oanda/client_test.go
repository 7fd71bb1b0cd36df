package oanda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/broker"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-token", "001-001-1234567-001", true)
	c.baseURL = srv.URL
	return c
}

func TestGetBalance(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "/summary")
		w.Write([]byte(`{"account":{"balance":"10234.56"}}`))
	})

	bal, err := c.GetBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 10234.56, bal, 1e-9)
}

func TestGetBalanceAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage":"Insufficient authorization"}`))
	})

	_, err := c.GetBalance(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetQuotes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR_USD,GBP_USD", r.URL.Query().Get("instruments"))
		w.Write([]byte(`{"prices":[
			{"instrument":"EUR_USD","bids":[{"price":"1.08490"}],"asks":[{"price":"1.08510"}],"time":"2025-06-01T12:00:00Z"},
			{"instrument":"GBP_USD","bids":[{"price":"1.25000"}],"asks":[{"price":"1.25030"}],"time":"2025-06-01T12:00:00Z"}
		]}`))
	})

	quotes, err := c.GetQuotes(context.Background(), []string{"EUR_USD", "GBP_USD"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.InDelta(t, 1.0849, quotes["EUR_USD"].Bid, 1e-9)
	assert.InDelta(t, 1.0851, quotes["EUR_USD"].Ask, 1e-9)
	assert.InDelta(t, 0.0002, quotes["EUR_USD"].Spread(), 1e-9)
}

func TestPlaceMarketOrderFilled(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"orderFillTransaction":{"id":"6789","price":"1.08512","commission":"0.0","time":"2025-06-01T12:00:01Z"}}`))
	})

	fill, err := c.PlaceMarketOrder(context.Background(), broker.OrderRequest{
		Instrument:  "EUR_USD",
		Units:       1000,
		StopPrice:   1.0800,
		TargetPrice: 1.0950,
	})
	require.NoError(t, err)
	assert.Equal(t, "6789", fill.TradeID)
	assert.InDelta(t, 1.08512, fill.FillPrice, 1e-9)
}

func TestPlaceMarketOrderRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"orderCancelTransaction":{"reason":"INSUFFICIENT_MARGIN"}}`))
	})

	_, err := c.PlaceMarketOrder(context.Background(), broker.OrderRequest{Instrument: "EUR_USD", Units: 1e9})
	require.Error(t, err)
	assert.True(t, errors.Is(err, broker.ErrRejected))
	assert.Contains(t, err.Error(), "INSUFFICIENT_MARGIN")
}

func TestGetOpenExposure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"account":{"positions":[
			{"instrument":"EUR_USD","long":{"units":"1000"},"short":{"units":"0"}},
			{"instrument":"USD_JPY","long":{"units":"0"},"short":{"units":"-2000"}},
			{"instrument":"GBP_USD","long":{"units":"500"},"short":{"units":"-500"}}
		]}}`))
	})

	exposure, err := c.GetOpenExposure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, exposure["EUR_USD"])
	assert.Equal(t, -2000.0, exposure["USD_JPY"])
	assert.NotContains(t, exposure, "GBP_USD", "flat positions are omitted")
}
