// Package orderbook implements the price-time priority structures that back
// a single symbol's resting liquidity.
package orderbook

import (
	"container/list"

	"nexusbook/domain"
)

// PriceTree orders one side (bids or asks) of a book by price, giving O(1)
// access to the best price and FIFO access to the orders resting at it.
// Two implementations satisfy it: hashMapListTree (simple, good for books
// with few simultaneous price levels) and shardedTree (bucketed red-black
// tree, better once a book holds many distinct price levels at once).
type PriceTree interface {
	// Insert adds order to its price level, creating the level if needed.
	Insert(order *domain.Order)

	// Remove takes order out of its price level, removing the level if it
	// becomes empty.
	Remove(order *domain.Order)

	// BestPrice returns the best price resting on this side, or 0 if empty.
	BestPrice() int64

	// BestLevel returns the level at BestPrice, or nil if empty.
	BestLevel() *PriceLevel

	// Level returns the level at price, or nil if there is none.
	Level(price int64) *PriceLevel

	// Depth returns up to maxLevels levels starting from the best price.
	Depth(maxLevels int) []PriceLevel

	// Empty reports whether the side has no resting orders.
	Empty() bool

	// Levels reports how many distinct price levels are resting.
	Levels() int
}

// PriceLevel is the FIFO queue of orders resting at a single price.
type PriceLevel struct {
	Price  int64
	Orders *list.List // front = oldest = first priority
	Volume int64

	next *PriceLevel // neighbor in the owning tree's price order
	prev *PriceLevel
}

// NewPriceTree builds a hashMapListTree for one side of a book. NewBook does
// not use it; books are built on shardedTree.
// descending selects bid ordering (best = highest price) versus ask
// ordering (best = lowest price).
func NewPriceTree(descending bool) PriceTree {
	return newHashMapListTree(descending)
}

// hashMapListTree is a NASDAQ-ITCH-style price structure: a hashmap gives
// O(1) level lookup, and a doubly linked list threaded through the levels
// gives O(1) best-price access without walking a tree.
//
//   - BestPrice: O(1), direct pointer
//   - Insert at an existing level: O(1)
//   - Insert a new level: O(n) worst case (rare once the book is warm)
//   - Remove: O(1) via the order's stored list element
type hashMapListTree struct {
	levels     map[int64]*PriceLevel
	best       *PriceLevel
	descending bool
}

var _ PriceTree = (*hashMapListTree)(nil)

func newHashMapListTree(descending bool) *hashMapListTree {
	return &hashMapListTree{
		levels:     make(map[int64]*PriceLevel),
		descending: descending,
	}
}

func (t *hashMapListTree) Insert(order *domain.Order) {
	level, ok := t.levels[order.Price]
	if !ok {
		level = &PriceLevel{Price: order.Price, Orders: list.New()}
		t.levels[order.Price] = level
		t.link(level)
	}
	elem := level.Orders.PushBack(order)
	order.ListElement = elem
	level.Volume += order.RemainingQuantity()
}

func (t *hashMapListTree) Remove(order *domain.Order) {
	level, ok := t.levels[order.Price]
	if !ok {
		return
	}
	if order.ListElement != nil {
		elem := order.ListElement.(*list.Element)
		level.Orders.Remove(elem)
		order.ListElement = nil
		level.Volume -= order.RemainingQuantity()
	}
	if level.Orders.Len() == 0 {
		t.unlink(level)
	}
}

func (t *hashMapListTree) BestPrice() int64 {
	if t.best == nil {
		return 0
	}
	return t.best.Price
}

func (t *hashMapListTree) BestLevel() *PriceLevel { return t.best }

func (t *hashMapListTree) Level(price int64) *PriceLevel { return t.levels[price] }

func (t *hashMapListTree) Depth(maxLevels int) []PriceLevel {
	if t.best == nil || maxLevels <= 0 {
		return nil
	}
	depth := make([]PriceLevel, 0, maxLevels)
	for cur := t.best; cur != nil && len(depth) < maxLevels; cur = cur.next {
		depth = append(depth, *cur)
	}
	return depth
}

func (t *hashMapListTree) Empty() bool { return t.best == nil }

func (t *hashMapListTree) Levels() int { return len(t.levels) }

func (t *hashMapListTree) betterThan(a, b int64) bool {
	if t.descending {
		return a > b
	}
	return a < b
}

// link inserts a freshly created level into the price-ordered list.
// O(n) worst case, but new levels almost always land near the best price.
func (t *hashMapListTree) link(level *PriceLevel) {
	if t.best == nil {
		t.best = level
		return
	}
	if t.betterThan(level.Price, t.best.Price) {
		level.next = t.best
		t.best.prev = level
		t.best = level
		return
	}
	cur := t.best
	for cur.next != nil && !t.betterThan(level.Price, cur.next.Price) {
		cur = cur.next
	}
	level.next = cur.next
	level.prev = cur
	if cur.next != nil {
		cur.next.prev = level
	}
	cur.next = level
}

func (t *hashMapListTree) unlink(level *PriceLevel) {
	delete(t.levels, level.Price)
	if level.prev != nil {
		level.prev.next = level.next
	}
	if level.next != nil {
		level.next.prev = level.prev
	}
	if t.best == level {
		t.best = level.next
	}
	level.next, level.prev = nil, nil
}
