package orderbook

import "nexusbook/domain"

// DepthLevel is one aggregated row of a depth snapshot.
type DepthLevel struct {
	Price    int64
	Quantity int64
	Orders   int
}

// BBO is the best bid and offer for a symbol. A zero Price means that side
// is empty.
type BBO struct {
	BidPrice int64
	AskPrice int64
}

// Book is a price-time priority order book for a single symbol. It is not
// safe for concurrent use; callers serialize access with their own lock
// (see engine.bookState).
type Book struct {
	Symbol string

	bids PriceTree // descending: best = highest
	asks PriceTree // ascending: best = lowest

	orders map[uint64]*domain.Order

	// Quarantined is set by the engine when an invariant violation is
	// detected against this book; once true the book rejects further
	// submissions instead of running matching against possibly-corrupt
	// state.
	Quarantined bool
}

// NewBook creates an empty book for symbol, using the sharded price tree by
// default so it stays efficient if the symbol later sees many distinct
// price levels at once.
func NewBook(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		bids:   newShardedTree(true, 128),
		asks:   newShardedTree(false, 128),
		orders: make(map[uint64]*domain.Order),
	}
}

// Side returns the resting side for side: bids for SideBuy, asks for SideSell.
func (b *Book) Side(side domain.Side) PriceTree {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// OppositeSide returns the side an aggressor of side consumes liquidity from.
func (b *Book) OppositeSide(side domain.Side) PriceTree {
	if side == domain.SideBuy {
		return b.asks
	}
	return b.bids
}

// AddResting inserts order as a RestingOrder on its own side. Only called
// for LIMIT orders with remaining quantity after matching.
func (b *Book) AddResting(order *domain.Order) {
	b.orders[order.ID] = order
	b.Side(order.Side).Insert(order)
}

// RemoveResting takes order off its side's tree. Used when a maker is fully
// consumed during matching.
func (b *Book) RemoveResting(order *domain.Order) {
	b.Side(order.Side).Remove(order)
	delete(b.orders, order.ID)
}

// BBO returns the best bid and ask prices; either is 0 if that side is empty.
func (b *Book) BBO() BBO {
	return BBO{BidPrice: b.bids.BestPrice(), AskPrice: b.asks.BestPrice()}
}

// Depth returns up to n aggregated levels per side: bids descending, asks
// ascending, matching the wire shape in spec §6.
func (b *Book) Depth(n int) (bids, asks []DepthLevel) {
	return toDepth(b.bids.Depth(n)), toDepth(b.asks.Depth(n))
}

func toDepth(levels []PriceLevel) []DepthLevel {
	if levels == nil {
		return nil
	}
	out := make([]DepthLevel, len(levels))
	for i, l := range levels {
		out[i] = DepthLevel{Price: l.Price, Quantity: l.Volume, Orders: l.Orders.Len()}
	}
	return out
}

// Crossed reports whether the book is in an illegal crossed state: both
// sides non-empty and bid >= ask. The matcher must never leave a book in
// this state once a submission returns.
func (b *Book) Crossed() bool {
	bid, ask := b.bids.BestPrice(), b.asks.BestPrice()
	return bid != 0 && ask != 0 && bid >= ask
}
