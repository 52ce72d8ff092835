// Package engine owns the concurrency model around the pure matching
// algorithm in package matching: one worker pool shared across symbols,
// one mutex-guarded book per symbol, and the pubsub/metrics wiring that
// fires after every submission.
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/tomb.v2"

	"nexusbook/domain"
	"nexusbook/matching"
	"nexusbook/metrics"
	"nexusbook/orderbook"
	"nexusbook/pubsub"
)

// defaultSnapshotDepth bounds how many price levels per side are captured
// in the market-data snapshot published after every submission, so a
// symbol with thousands of resting levels doesn't make every trade
// publish an unbounded payload.
const defaultSnapshotDepth = 50

// bookState pairs one symbol's book with the mutex that serializes every
// submission against it. This is the sole mutual-exclusion primitive for
// that symbol's book (spec §5) — the worker pool only parallelizes across
// symbols; two tasks for the same symbol still serialize on this mutex.
type bookState struct {
	mu   sync.Mutex
	book *orderbook.Book
}

// Config controls the worker pool. SubscriberQueueDepth is not read by the
// engine; subscriber queue depth is whatever the pubsub.PubSub passed to
// New was built with.
type Config struct {
	Workers              int
	TaskQueueDepth       int
	SubscriberQueueDepth int
}

// Engine is the top-level matching core: symbol registry, id counters,
// worker pool, and the pubsub/metrics collaborators every submission
// reports through.
type Engine struct {
	registry   atomic.Value // map[string]*bookState, copy-on-write
	registryMu sync.Mutex   // guards writers to registry; readers never block

	orderSeq atomic.Uint64
	tradeSeq atomic.Uint64

	matcher matching.Matcher
	pool    *workerPool
	t       tomb.Tomb

	pubsub  *pubsub.PubSub
	metrics *metrics.Metrics
}

// New builds an Engine. Start must be called before Submit is used.
func New(cfg Config, ps *pubsub.PubSub, m *metrics.Metrics) *Engine {
	e := &Engine{
		pool:    newWorkerPool(cfg.Workers, cfg.TaskQueueDepth),
		pubsub:  ps,
		metrics: m,
	}
	e.registry.Store(make(map[string]*bookState))
	return e
}

// Start launches the worker pool.
func (e *Engine) Start() {
	e.pool.start(&e.t, e.runTask)
}

// Stop signals every worker to exit and waits for them to drain.
func (e *Engine) Stop() error {
	e.t.Kill(nil)
	return e.t.Wait()
}

// stateFor returns the bookState for symbol, creating one under a fresh
// copy of the registry map if this is the first time symbol is seen.
// Grounded on the teacher's ExchangeEngine.GetEngine: atomic.Value holds
// an immutable map so every reader sees a consistent snapshot without
// locking; only the rare "new symbol" path takes registryMu and installs
// a new map.
func (e *Engine) stateFor(symbol string) *bookState {
	reg := e.registry.Load().(map[string]*bookState)
	if state, ok := reg[symbol]; ok {
		return state
	}

	e.registryMu.Lock()
	defer e.registryMu.Unlock()

	reg = e.registry.Load().(map[string]*bookState)
	if state, ok := reg[symbol]; ok {
		return state
	}

	next := make(map[string]*bookState, len(reg)+1)
	for k, v := range reg {
		next[k] = v
	}
	state := &bookState{book: orderbook.NewBook(symbol)}
	next[symbol] = state
	e.registry.Store(next)
	return state
}

// lookup returns the bookState for symbol without creating one; used by
// read-only queries (GetBBO/GetDepth) so an unknown symbol never
// allocates a book.
func (e *Engine) lookup(symbol string) (*bookState, bool) {
	reg := e.registry.Load().(map[string]*bookState)
	state, ok := reg[symbol]
	return state, ok
}

// runTask is what every worker goroutine runs for each queued task: lock
// the symbol, match, capture a post-state snapshot while still locked,
// unlock, then publish trades and the snapshot before finally replying to
// the blocked caller. This ordering is required by spec §4.4 ("on
// return, synchronously publishes trades and a post-state snapshot
// through PubSub; returns the result to the caller").
func (e *Engine) runTask(task *matchTask) {
	state := task.state
	symbol := task.order.Symbol

	var stop func()
	if e.metrics != nil {
		stop = e.metrics.Timer(symbol)
	}
	state.mu.Lock()
	result, quarantined := e.matchWithRecovery(state, symbol, task.order)
	var snapshot pubsub.MarketDataSnapshot
	if !quarantined {
		snapshot = e.captureSnapshot(symbol, state.book)
	}
	state.mu.Unlock()
	if stop != nil {
		stop()
	}

	if e.metrics != nil {
		e.metrics.ObserveSubmission(symbol, result)
	}

	if !quarantined {
		if len(result.Trades) > 0 {
			e.pubsub.PublishTrades(symbol, result.Trades)
		}
		e.pubsub.PublishMarketData(symbol, snapshot)
	}

	task.reply <- result
}

// matchWithRecovery runs the matcher under a quarantine check and a
// panic/recover: a quarantined book always rejects, and any panic
// surfaced from matching.Matcher.Match or the post-match crossed-book
// check is turned into a rejected result plus a quarantine instead of
// taking the worker down (spec §7's fatal path).
func (e *Engine) matchWithRecovery(state *bookState, symbol string, order *domain.Order) (result matching.Result, quarantined bool) {
	if state.book.Quarantined {
		order.Reject()
		return matching.Result{
			Status:            domain.OrderStatusRejected,
			OrderID:           order.ID,
			RemainingQuantity: order.Quantity,
			Reason:            "book quarantined",
		}, true
	}

	defer func() {
		if r := recover(); r != nil {
			quarantine(state, symbol, r)
			order.Reject()
			result = matching.Result{
				Status:            domain.OrderStatusRejected,
				OrderID:           order.ID,
				RemainingQuantity: order.Quantity,
				Reason:            "book quarantined",
			}
			quarantined = true
		}
	}()

	result = e.matcher.Match(state.book, order, e.nextTradeID)
	if state.book.Crossed() {
		panic(&InvariantError{Symbol: symbol, Detail: "book crossed after matching"})
	}
	return result, false
}

// captureSnapshot builds the market-data snapshot published after every
// submission. Must be called while state.mu is still held.
func (e *Engine) captureSnapshot(symbol string, book *orderbook.Book) pubsub.MarketDataSnapshot {
	bids, asks := book.Depth(defaultSnapshotDepth)
	return pubsub.MarketDataSnapshot{
		Timestamp: time.Now(),
		Symbol:    symbol,
		BBO:       book.BBO(),
		Bids:      bids,
		Asks:      asks,
	}
}
