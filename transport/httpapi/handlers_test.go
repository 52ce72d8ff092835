package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusbook/engine"
	"nexusbook/pubsub"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ps := pubsub.New(16)
	eng := engine.New(engine.Config{Workers: 2, TaskQueueDepth: 64}, ps, nil)
	eng.Start()
	t.Cleanup(func() { _ = eng.Stop() })

	srv := New(Config{ListenAddr: ":0", RateLimitPerSecond: 1000, RateLimitBurst: 1000}, eng, ps, nil)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:1234"
	w := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(w, req)
	return w
}

func TestSubmitOrderRestsThenFills(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "sell", Quantity: 2, Price: 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rested submissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rested))
	assert.Equal(t, "accepted", rested.Status)
	assert.Empty(t, rested.Trades)

	w = doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "buy", Quantity: 2, Price: 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var filled submissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filled))
	assert.Equal(t, "filled", filled.Status)
	require.Len(t, filled.Trades, 1)
	assert.EqualValues(t, 100, filled.Trades[0].Price)
	assert.EqualValues(t, 2, filled.Trades[0].Quantity)
}

func TestSubmitOrderRejectsBadQuantity(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "buy", Quantity: 0, Price: 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp submissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Status)
	assert.NotEmpty(t, resp.Reason)
}

func TestSubmitOrderRejectsUnknownSide(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "sideways", Quantity: 1, Price: 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp submissionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rejected", resp.Status)
}

func TestGetBBOEmptyBookReturnsNulls(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/v1/symbols/NOPE/bbo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp bboResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Bid)
	assert.Nil(t, resp.Ask)
}

func TestGetDepthReflectsRestingOrders(t *testing.T) {
	srv := newTestServer(t)
	doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "sell", Quantity: 3, Price: 101,
	})

	w := doRequest(t, srv, http.MethodGet, "/v1/symbols/BTC-USDT/depth?levels=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp depthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Asks, 1)
	assert.EqualValues(t, 101, resp.Asks[0].Price)
	assert.EqualValues(t, 3, resp.Asks[0].Quantity)
	assert.Empty(t, resp.Bids)
}

func TestRateLimitRejectsBurst(t *testing.T) {
	srv := New(Config{ListenAddr: ":0", RateLimitPerSecond: 0, RateLimitBurst: 1}, newTestServer(t).engine, pubsub.New(16), nil)

	w := doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "buy", Quantity: 1, Price: 100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodPost, "/v1/orders", orderRequest{
		Symbol: "BTC-USDT", Type: "limit", Side: "buy", Quantity: 1, Price: 100,
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
