package engine

import (
	"nexusbook/domain"
	"nexusbook/matching"
	"nexusbook/orderbook"
)

// maxDepthLevels is the hard cap on get_depth's n (spec §6). The HTTP
// adapter clamps too, but the core enforces it itself since it has no
// wire layer to reject at.
const maxDepthLevels = 1000

// Submit assigns order an id, queues it on the shared worker pool, and
// blocks until the matching step has run, published its trades and
// market-data snapshot, and produced a result.
func (e *Engine) Submit(order *domain.Order) matching.Result {
	order.ID = e.nextOrderID()
	state := e.stateFor(order.Symbol)

	reply := make(chan matching.Result, 1)
	e.pool.submit(&matchTask{order: order, state: state, reply: reply})
	return <-reply
}

// GetBBO returns the best bid/ask for symbol. An unknown symbol returns
// the zero-value BBO (both prices 0), not an error: the engine treats a
// never-traded symbol the same as one with an empty book.
func (e *Engine) GetBBO(symbol string) orderbook.BBO {
	state, ok := e.lookup(symbol)
	if !ok {
		return orderbook.BBO{}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.book.BBO()
}

// GetDepth returns up to n aggregated levels per side for symbol. n is
// clamped to [1, maxDepthLevels]. An unknown symbol returns nil, nil.
func (e *Engine) GetDepth(symbol string, n int) (bids, asks []orderbook.DepthLevel) {
	if n < 1 {
		n = 1
	}
	if n > maxDepthLevels {
		n = maxDepthLevels
	}

	state, ok := e.lookup(symbol)
	if !ok {
		return nil, nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.book.Depth(n)
}
