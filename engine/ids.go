package engine

import "sync/atomic"

// nextOrderID and nextTradeID hand out monotonically increasing,
// per-engine-lifetime unique ids. Grounded on the teacher's
// IDGenerator (atomic.AddUint64 counter); the string-building
// (sync.Pool of strings.Builder, prefix+FormatUint) machinery the
// teacher used is dropped here since ids are uint64, not wire strings —
// there is nothing left to build.
func (e *Engine) nextOrderID() uint64 {
	return e.orderSeq.Add(1)
}

func (e *Engine) nextTradeID() uint64 {
	return e.tradeSeq.Add(1)
}
