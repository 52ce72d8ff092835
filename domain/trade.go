package domain

import (
	"sync"
	"time"
)

// Trade represents a matched trade between an aggressor (taker) and a
// resting (maker) order. Immutable once emitted.
// Memory layout optimization: hot fields (accessed during persistence/broadcast)
// are placed in the first CPU cache line (64 bytes).
// Cache line 1 (64 bytes): ID, Price, Quantity, Timestamp, Symbol
// Cache line 2: AggressorSide, MakerOrderID, TakerOrderID, MakerUserID, TakerUserID
type Trade struct {
	// Hot fields: accessed during persistence and broadcast (all but
	// AggressorSide fall in the first 64 bytes)
	ID            uint64    // monotonic per engine, trade-emission order
	Price         int64     // always the maker (resting) price
	Quantity      int64     // min(incoming.remaining, front_maker.remaining) at match time
	Timestamp     time.Time // trade execution time
	Symbol        string    // trading pair
	AggressorSide Side      // side of the order that removed liquidity

	// Cold fields: accessed only for logging/audit (second cache line)
	MakerOrderID uint64 // resting order that supplied liquidity
	TakerOrderID uint64 // incoming order that consumed it
	MakerUserID  string
	TakerUserID  string
}

var tradePool = sync.Pool{
	New: func() any {
		return &Trade{}
	},
}

// NewTrade creates a new trade from the pool. price is always the maker's
// resting price (spec.md §4.3.2); aggressorSide is the incoming order's side.
func NewTrade(id uint64, symbol string, price, quantity int64, aggressorSide Side, maker, taker *Order) *Trade {
	trade := tradePool.Get().(*Trade)
	trade.ID = id
	trade.Symbol = symbol
	trade.Price = price
	trade.Quantity = quantity
	trade.AggressorSide = aggressorSide
	trade.MakerOrderID = maker.ID
	trade.TakerOrderID = taker.ID
	trade.MakerUserID = maker.UserID
	trade.TakerUserID = taker.UserID
	trade.Timestamp = time.Now()
	return trade
}

// Destroy returns the trade to the pool.
func (t *Trade) Destroy() {
	t.Reset()
	tradePool.Put(t)
}

func (t *Trade) Reset() {
	// Performance optimization: zero-value assignment triggers the compiler's
	// DUFFZERO optimization instead of a field-by-field clear.
	*t = Trade{}
}
