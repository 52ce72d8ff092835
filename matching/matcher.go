// Package matching implements the pure order-matching algorithm: one
// incoming order against one symbol's book, honoring price-time priority
// and the LIMIT/MARKET/IOC/FOK semantics.
package matching

import (
	"nexusbook/domain"
	"nexusbook/orderbook"
)

// Result is the outcome of matching one order, mirroring spec §3's
// SubmissionResult.
type Result struct {
	Status            domain.OrderStatus
	OrderID           uint64
	FilledQuantity    int64
	RemainingQuantity int64
	Trades            []*domain.Trade
	Reason            string
}

// Matcher runs the matching algorithm against a book. It holds no state of
// its own; every call is a pure function of the book and the incoming
// order, so a single Matcher value is safe to share across symbols (the
// caller supplies the per-symbol lock discipline, see engine.bookState).
type Matcher struct{}

// Match matches order against book and returns the resulting
// SubmissionResult. nextTradeID is called once per trade, in
// trade-emission order, so the engine's monotonic counter stays the single
// source of trade ids (see spec §4.4).
func (Matcher) Match(book *orderbook.Book, order *domain.Order, nextTradeID func() uint64) Result {
	if reason := Validate(order); reason != "" {
		order.Reject()
		return Result{
			Status:            domain.OrderStatusRejected,
			OrderID:           order.ID,
			RemainingQuantity: order.Quantity,
			Reason:            reason,
		}
	}

	if order.Type == domain.OrderTypeFOK && !fokCanFill(book, order) {
		order.Reject()
		return Result{
			Status:            domain.OrderStatusRejected,
			OrderID:           order.ID,
			RemainingQuantity: order.Quantity,
			Reason:            RejectInsufficientFOK,
		}
	}

	trades := walk(book, order, nextTradeID)

	switch order.Type {
	case domain.OrderTypeLimit:
		if order.RemainingQuantity() > 0 {
			book.AddResting(order)
		}
	case domain.OrderTypeMarket, domain.OrderTypeIOC:
		if !order.IsFilled() {
			order.Cancel()
		}
	case domain.OrderTypeFOK:
		// The pre-check guarantees a full fill; nothing left to rest or cancel.
	}

	return Result{
		Status:            order.Status,
		OrderID:           order.ID,
		FilledQuantity:    order.Filled,
		RemainingQuantity: order.RemainingQuantity(),
		Trades:            trades,
	}
}

// crosses reports whether a resting level at levelPrice is within the
// incoming order's price boundary (spec §4.3.2). MARKET orders have no
// boundary.
func crosses(order *domain.Order, levelPrice int64) bool {
	if order.Type == domain.OrderTypeMarket {
		return true
	}
	if order.Side == domain.SideBuy {
		return levelPrice <= order.Price
	}
	return levelPrice >= order.Price
}

// walk consumes the opposite side of the book front-of-queue first,
// level by level, until order has no remaining quantity or the boundary
// or the book stops it. Every maker that is fully consumed is removed from
// the book before the next iteration, so the next best level or next
// maker in FIFO order is always current.
func walk(book *orderbook.Book, order *domain.Order, nextTradeID func() uint64) []*domain.Trade {
	var trades []*domain.Trade
	opp := book.OppositeSide(order.Side)

	for order.RemainingQuantity() > 0 {
		level := opp.BestLevel()
		if level == nil || !crosses(order, level.Price) {
			break
		}
		front := level.Orders.Front()
		if front == nil {
			break
		}
		maker := front.Value.(*domain.Order)

		qty := order.RemainingQuantity()
		if makerRemaining := maker.RemainingQuantity(); makerRemaining < qty {
			qty = makerRemaining
		}
		price := level.Price

		order.Fill(qty)
		maker.Fill(qty)
		level.Volume -= qty

		trades = append(trades, domain.NewTrade(nextTradeID(), order.Symbol, price, qty, order.Side, maker, order))

		if maker.IsFilled() {
			book.RemoveResting(maker)
		}
	}

	return trades
}

// fokCanFill runs the read-only pre-check from spec §4.3.3: accumulate
// available quantity across opposite levels, best price first, stopping as
// soon as the boundary would be violated. No book state is touched.
func fokCanFill(book *orderbook.Book, order *domain.Order) bool {
	opp := book.OppositeSide(order.Side)

	var available int64
	for _, level := range opp.Depth(opp.Levels()) {
		if !crosses(order, level.Price) {
			break
		}
		available += level.Volume
		if available >= order.Quantity {
			return true
		}
	}
	return available >= order.Quantity
}
