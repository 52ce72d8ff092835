package orderbook

import (
	"container/list"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"

	"nexusbook/domain"
)

// shardedTree buckets prices into fixed-size buckets ordered by a red-black
// tree, then indexes each bucket's levels with a flat array + bitmask. It
// trades a little memory for better asymptotics than hashMapListTree once a
// book holds many simultaneous price levels: O(log m) insert/remove where m
// is the bucket count, versus hashMapListTree's O(n) new-level insert.
type shardedTree struct {
	buckets    *rbt.Tree[int64, *bucket]
	bestBucket *bucket
	best       *PriceLevel
	descending bool
	bucketSize int64
}

var _ PriceTree = (*shardedTree)(nil)

// bucket holds every price level whose price falls in [bucketID*bucketSize,
// (bucketID+1)*bucketSize). bucketSize must be a power of two so that the
// slot index can be computed with a mask instead of a modulo.
type bucket struct {
	id         int64
	levels     [128]*PriceLevel
	best       *PriceLevel
	size       int
	descending bool
	mask       int64
}

// newShardedTree builds a sharded price tree. bucketSize must be a power of
// two (128 gives room for sub-cent venues without wasting much memory).
func newShardedTree(descending bool, bucketSize int64) *shardedTree {
	var cmp func(a, b int64) int
	if descending {
		cmp = func(a, b int64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			default:
				return 0
			}
		}
	} else {
		cmp = func(a, b int64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	return &shardedTree{
		buckets:    rbt.NewWith[int64, *bucket](cmp),
		descending: descending,
		bucketSize: bucketSize,
	}
}

func newBucket(id int64, descending bool, bucketSize int64) *bucket {
	return &bucket{
		id:         id,
		descending: descending,
		mask:       bucketSize - 1,
	}
}

func (t *shardedTree) Insert(order *domain.Order) {
	bucketID := order.Price / t.bucketSize
	b, found := t.buckets.Get(bucketID)
	if !found {
		b = newBucket(bucketID, t.descending, t.bucketSize)
		t.buckets.Put(bucketID, b)
	}

	index := order.Price & b.mask
	level := b.levels[index]
	if level == nil {
		level = &PriceLevel{Price: order.Price, Orders: list.New()}
		b.insert(level)
	}
	elem := level.Orders.PushBack(order)
	order.ListElement = elem
	level.Volume += order.RemainingQuantity()

	t.updateBestFromBucket(b)
}

func (t *shardedTree) Remove(order *domain.Order) {
	bucketID := order.Price / t.bucketSize
	b, found := t.buckets.Get(bucketID)
	if !found {
		return
	}
	index := order.Price & b.mask
	level := b.levels[index]
	if level == nil {
		return
	}
	if order.ListElement != nil {
		elem := order.ListElement.(*list.Element)
		level.Orders.Remove(elem)
		order.ListElement = nil
		level.Volume -= order.RemainingQuantity()
	}
	if level.Orders.Len() == 0 {
		b.remove(level)
		if b.size == 0 {
			t.buckets.Remove(bucketID)
			if t.bestBucket == b {
				t.bestBucket = nil
				t.best = nil
				t.recomputeBest()
			}
		} else if t.best != nil && t.best.Price == order.Price {
			t.recomputeBest()
		}
	}
}

func (t *shardedTree) BestPrice() int64 {
	if t.best == nil {
		return 0
	}
	return t.best.Price
}

func (t *shardedTree) BestLevel() *PriceLevel { return t.best }

func (t *shardedTree) Level(price int64) *PriceLevel {
	b, found := t.buckets.Get(price / t.bucketSize)
	if !found {
		return nil
	}
	return b.levels[price&b.mask]
}

func (t *shardedTree) Depth(maxLevels int) []PriceLevel {
	if maxLevels <= 0 || t.buckets.Empty() {
		return nil
	}
	result := make([]PriceLevel, 0, maxLevels)
	it := t.buckets.Iterator()
	for it.Next() && len(result) < maxLevels {
		for cur := it.Value().best; cur != nil && len(result) < maxLevels; cur = cur.next {
			result = append(result, *cur)
		}
	}
	return result
}

func (t *shardedTree) Empty() bool { return t.buckets.Empty() }

func (t *shardedTree) Levels() int {
	count := 0
	it := t.buckets.Iterator()
	for it.Next() {
		count += it.Value().size
	}
	return count
}

func (t *shardedTree) betterBucket(a, b int64) bool {
	if t.descending {
		return a > b
	}
	return a < b
}

func (t *shardedTree) updateBestFromBucket(b *bucket) {
	switch {
	case t.bestBucket == nil:
		t.bestBucket = b
		t.best = b.best
	case t.betterBucket(b.id, t.bestBucket.id):
		t.bestBucket = b
		t.best = b.best
	case b == t.bestBucket:
		t.best = b.best
	}
}

func (t *shardedTree) recomputeBest() {
	if t.buckets.Empty() {
		t.bestBucket = nil
		t.best = nil
		return
	}
	node := t.buckets.Left()
	if node != nil {
		t.bestBucket = node.Value
		t.best = node.Value.best
	}
}

func (b *bucket) betterThan(a, c int64) bool {
	if b.descending {
		return a > c
	}
	return a < c
}

// insert links level into the bucket's price-ordered list and stores it at
// its bitmask slot. O(n) on the bucket's occupancy, which stays small: at
// most bucketSize distinct prices land in one bucket.
func (b *bucket) insert(level *PriceLevel) {
	index := level.Price & b.mask
	b.levels[index] = level
	b.size++

	if b.best == nil {
		b.best = level
		return
	}
	if b.betterThan(level.Price, b.best.Price) {
		level.next = b.best
		b.best.prev = level
		b.best = level
		return
	}
	cur := b.best
	for cur.next != nil && !b.betterThan(level.Price, cur.next.Price) {
		cur = cur.next
	}
	level.next = cur.next
	level.prev = cur
	if cur.next != nil {
		cur.next.prev = level
	}
	cur.next = level
}

func (b *bucket) remove(level *PriceLevel) {
	index := level.Price & b.mask
	b.levels[index] = nil
	b.size--

	if level.prev != nil {
		level.prev.next = level.next
	} else {
		b.best = level.next
	}
	if level.next != nil {
		level.next.prev = level.prev
	}
	level.next, level.prev = nil, nil
}
