package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"nexusbook/domain"
	"nexusbook/orderbook"
	"nexusbook/pubsub"
)

// maxDepthLevels mirrors engine.maxDepthLevels: the wire layer clamps
// rather than rejects an out-of-range n (spec_full "Depth response cap").
const maxDepthLevels = 1000

// orderRequest is the POST /v1/orders JSON body, per spec.md §6's wire
// vocabulary (type: market/limit/ioc/fok, side: buy/sell).
type orderRequest struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// tradeWire is a single element of a submissionResponse's trades list.
type tradeWire struct {
	TradeID      uint64 `json:"trade_id"`
	Price        int64  `json:"price"`
	Quantity     int64  `json:"quantity"`
	MakerOrderID uint64 `json:"maker_order_id"`
	TakerOrderID uint64 `json:"taker_order_id"`
}

// submissionResponse is the JSON shape of a matching.Result.
type submissionResponse struct {
	Status            string      `json:"status"`
	OrderID           uint64      `json:"order_id"`
	FilledQuantity    int64       `json:"filled_quantity"`
	RemainingQuantity int64       `json:"remaining_quantity"`
	Trades            []tradeWire `json:"trades"`
	Reason            string      `json:"reason,omitempty"`
}

// submitOrder handles POST /v1/orders.
func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	side, sideOK := domain.ParseSide(req.Side)
	typ, typeOK := domain.ParseOrderType(req.Type)
	if !sideOK || !typeOK {
		// Let matching.Validate produce the same rejected status and
		// reason any other invalid order gets, so callers see one
		// consistent rejection shape instead of a second error format.
		side, typ = domain.SideBuy, domain.OrderTypeLimit
	}

	order := domain.NewOrder(req.Symbol, req.UserID, side, typ, req.Price, req.Quantity)
	if !sideOK {
		order.Side = domain.Side(-1)
	}
	if !typeOK {
		order.Type = domain.OrderType(-1)
	}

	result := s.engine.Submit(order)

	resp := submissionResponse{
		Status:            result.Status.String(),
		OrderID:           result.OrderID,
		FilledQuantity:    result.FilledQuantity,
		RemainingQuantity: result.RemainingQuantity,
		Reason:            result.Reason,
	}
	if len(result.Trades) > 0 {
		resp.Trades = make([]tradeWire, len(result.Trades))
		for i, t := range result.Trades {
			resp.Trades[i] = tradeWire{
				TradeID:      t.ID,
				Price:        t.Price,
				Quantity:     t.Quantity,
				MakerOrderID: t.MakerOrderID,
				TakerOrderID: t.TakerOrderID,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type bboResponse struct {
	Bid *int64 `json:"bid"`
	Ask *int64 `json:"ask"`
}

// getBBO handles GET /v1/symbols/{symbol}/bbo.
func (s *Server) getBBO(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	bbo := s.engine.GetBBO(symbol)
	writeJSON(w, http.StatusOK, bboResponse{Bid: nilIfZero(bbo.BidPrice), Ask: nilIfZero(bbo.AskPrice)})
}

type depthRow struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

type depthResponse struct {
	Bids []depthRow `json:"bids"`
	Asks []depthRow `json:"asks"`
}

// getDepth handles GET /v1/symbols/{symbol}/depth?levels=n.
func (s *Server) getDepth(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	n := 10
	if raw := r.URL.Query().Get("levels"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	if n < 1 {
		n = 1
	}
	if n > maxDepthLevels {
		n = maxDepthLevels
	}

	bids, asks := s.engine.GetDepth(symbol, n)
	writeJSON(w, http.StatusOK, depthResponse{Bids: toDepthRows(bids), Asks: toDepthRows(asks)})
}

func toDepthRows(levels []orderbook.DepthLevel) []depthRow {
	rows := make([]depthRow, len(levels))
	for i, l := range levels {
		rows[i] = depthRow{Price: l.Price, Quantity: l.Quantity}
	}
	return rows
}

// streamTradesWire matches spec.md §6's "Trade event payload" shape.
type streamTradesWire struct {
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol"`
	TradeID       uint64    `json:"trade_id"`
	Price         int64     `json:"price"`
	Quantity      int64     `json:"quantity"`
	AggressorSide string    `json:"aggressor_side"`
	MakerOrderID  uint64    `json:"maker_order_id"`
	TakerOrderID  uint64    `json:"taker_order_id"`
}

// streamTrades handles GET /v1/symbols/{symbol}/stream/trades: a
// long-lived chunked response streaming newline-delimited JSON events,
// standing in for subscribe_trades (spec.md §1 scopes WebSockets out).
func (s *Server) streamTrades(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	sub := s.pubsub.SubscribeTrades(symbol)
	defer s.pubsub.Unsubscribe(tradesTopic(symbol), sub.ID)

	streamEvents(w, r, sub, func(event any) any {
		t := event.(pubsub.TradeEvent)
		return streamTradesWire{
			Timestamp:     t.Timestamp,
			Symbol:        t.Symbol,
			TradeID:       t.TradeID,
			Price:         t.Price,
			Quantity:      t.Quantity,
			AggressorSide: t.AggressorSide.String(),
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
		}
	})
}

// streamMarketDataWire matches spec.md §6's "MarketData snapshot payload"
// shape, including the [price, qty] pair encoding for book levels.
type streamMarketDataWire struct {
	Timestamp time.Time   `json:"timestamp"`
	Symbol    string      `json:"symbol"`
	BBO       bboResponse `json:"bbo"`
	Asks      [][2]int64  `json:"asks"`
	Bids      [][2]int64  `json:"bids"`
}

// streamMarketData handles GET /v1/symbols/{symbol}/stream/marketdata,
// standing in for subscribe_marketdata.
func (s *Server) streamMarketData(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	sub := s.pubsub.SubscribeMarketData(symbol)
	defer s.pubsub.Unsubscribe(marketDataTopic(symbol), sub.ID)

	streamEvents(w, r, sub, func(event any) any {
		snap := event.(pubsub.MarketDataSnapshot)
		return streamMarketDataWire{
			Timestamp: snap.Timestamp,
			Symbol:    snap.Symbol,
			BBO:       bboResponse{Bid: nilIfZero(snap.BBO.BidPrice), Ask: nilIfZero(snap.BBO.AskPrice)},
			Asks:      toPairs(snap.Asks),
			Bids:      toPairs(snap.Bids),
		}
	})
}

func toPairs(levels []orderbook.DepthLevel) [][2]int64 {
	pairs := make([][2]int64, len(levels))
	for i, l := range levels {
		pairs[i] = [2]int64{l.Price, l.Quantity}
	}
	return pairs
}

// streamEvents drains sub.Events onto w as newline-delimited JSON until the
// client disconnects (r.Context().Done()) or the subscription is closed.
// Flushing after every event is what makes this usable as a live stream
// over a single chunked HTTP response.
func streamEvents(w http.ResponseWriter, r *http.Request, sub pubsub.Subscription, toWire func(any) any) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)

	enc := json.NewEncoder(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			if err := enc.Encode(toWire(event)); err != nil {
				log.Warn().Err(err).Str("symbol", mux.Vars(r)["symbol"]).Msg("stream write failed, disconnecting subscriber")
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

func nilIfZero(price int64) *int64 {
	if price == 0 {
		return nil
	}
	return &price
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

func tradesTopic(symbol string) string     { return fmt.Sprintf("trades/%s", symbol) }
func marketDataTopic(symbol string) string { return fmt.Sprintf("marketdata/%s", symbol) }
