package matching

import (
	"testing"

	"nexusbook/domain"
	"nexusbook/orderbook"
)

const symbol = "BTC-USDT"

// idSeq hands out ids and trade ids the way engine.Engine would, without
// pulling in the engine package (matching must not depend on it).
type idSeq struct {
	orderID uint64
	tradeID uint64
}

func (s *idSeq) nextOrder() uint64 {
	s.orderID++
	return s.orderID
}

func (s *idSeq) nextTrade() uint64 {
	s.tradeID++
	return s.tradeID
}

func newOrder(seq *idSeq, side domain.Side, typ domain.OrderType, price, qty int64) *domain.Order {
	o := domain.NewOrder(symbol, "user", side, typ, price, qty)
	o.ID = seq.nextOrder()
	return o
}

func rest(t *testing.T, book *orderbook.Book, seq *idSeq, side domain.Side, price, qty int64) *domain.Order {
	t.Helper()
	order := newOrder(seq, side, domain.OrderTypeLimit, price, qty)
	var m Matcher
	res := m.Match(book, order, seq.nextTrade)
	if len(res.Trades) != 0 {
		t.Fatalf("rest() helper crossed the book unexpectedly: %+v", res)
	}
	return order
}

// Scenario 1: FIFO within price.
func TestFIFOWithinPrice(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	s1 := rest(t, book, seq, domain.SideSell, 100, 1)
	s2 := rest(t, book, seq, domain.SideSell, 100, 1)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeMarket, 0, 1)
	res := m.Match(book, taker, seq.nextTrade)

	if len(res.Trades) != 1 {
		t.Fatalf("expected exactly 1 trade, got %d", len(res.Trades))
	}
	trade := res.Trades[0]
	if trade.Price != 100 || trade.Quantity != 1 {
		t.Errorf("unexpected trade shape: %+v", trade)
	}
	if trade.MakerOrderID != s1.ID {
		t.Errorf("expected maker %d (first in FIFO), got %d", s1.ID, trade.MakerOrderID)
	}
	if s2.RemainingQuantity() != 1 {
		t.Errorf("expected S2 still resting with qty 1, got %d", s2.RemainingQuantity())
	}
}

// Scenario 2: IOC partial.
func TestIOCPartial(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 101, 2)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeIOC, 101, 5)
	res := m.Match(book, taker, seq.nextTrade)

	if len(res.Trades) != 1 || res.Trades[0].Quantity != 2 {
		t.Fatalf("expected a single trade of qty 2, got %+v", res.Trades)
	}
	if res.Status != domain.OrderStatusCancelled {
		t.Errorf("expected canceled status, got %v", res.Status)
	}
	if res.FilledQuantity != 2 {
		t.Errorf("expected filled_quantity 2, got %d", res.FilledQuantity)
	}
	if book.Side(domain.SideBuy).Levels() != 0 {
		t.Error("IOC residual must never rest")
	}
}

// Scenario 3: FOK rejected.
func TestFOKRejected(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 100, 1)
	rest(t, book, seq, domain.SideSell, 102, 1)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeFOK, 101, 3)
	res := m.Match(book, taker, seq.nextTrade)

	if res.Status != domain.OrderStatusRejected {
		t.Fatalf("expected rejected, got %v", res.Status)
	}
	if len(res.Trades) != 0 {
		t.Errorf("expected no trades, got %d", len(res.Trades))
	}
	if book.Side(domain.SideSell).Levels() != 2 {
		t.Error("book must be unchanged after a rejected FOK")
	}
}

// Scenario 4: FOK accepted.
func TestFOKAccepted(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 100, 1)
	rest(t, book, seq, domain.SideSell, 101, 2)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeFOK, 101, 3)
	res := m.Match(book, taker, seq.nextTrade)

	if res.Status != domain.OrderStatusFilled {
		t.Fatalf("expected filled, got %v", res.Status)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}
	if res.Trades[0].Price != 100 || res.Trades[1].Price != 101 {
		t.Errorf("unexpected trade prices: %+v", res.Trades)
	}
	if !book.Side(domain.SideSell).Empty() {
		t.Error("expected ask side to be empty after FOK accepted")
	}
}

// Scenario 5: market exhaustion.
func TestMarketExhaustion(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 100, 1)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeMarket, 0, 3)
	res := m.Match(book, taker, seq.nextTrade)

	if res.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected canceled, got %v", res.Status)
	}
	if res.FilledQuantity != 1 || res.RemainingQuantity != 2 {
		t.Errorf("expected filled=1 remaining=2, got filled=%d remaining=%d", res.FilledQuantity, res.RemainingQuantity)
	}
	if !book.Side(domain.SideSell).Empty() {
		t.Error("expected ask side empty after exhausting the only resting sell")
	}
}

// Scenario 6: LIMIT rests after partial cross.
func TestLimitRestsAfterPartialCross(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 100, 1)

	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeLimit, 100, 3)
	res := m.Match(book, taker, seq.nextTrade)

	if res.Status != domain.OrderStatusPartialFilled && res.Status != domain.OrderStatusPending {
		t.Fatalf("expected an 'accepted' status (Pending/PartialFilled), got %v", res.Status)
	}
	if res.Status.String() != "accepted" {
		t.Fatalf("expected wire status 'accepted', got %q", res.Status.String())
	}
	if res.FilledQuantity != 1 {
		t.Errorf("expected filled_quantity 1, got %d", res.FilledQuantity)
	}
	bbo := book.BBO()
	if bbo.BidPrice != 100 {
		t.Errorf("expected resting bid level at 100, got %d", bbo.BidPrice)
	}
	level := book.Side(domain.SideBuy).Level(100)
	if level == nil || level.Volume != 2 {
		t.Fatalf("expected 2 qty resting at 100, got %+v", level)
	}
}

func TestValidationRejections(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	cases := []struct {
		name  string
		order *domain.Order
	}{
		{"zero quantity", newOrder(seq, domain.SideBuy, domain.OrderTypeLimit, 100, 0)},
		{"negative price", newOrder(seq, domain.SideBuy, domain.OrderTypeLimit, -1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := m.Match(book, tc.order, seq.nextTrade)
			if res.Status != domain.OrderStatusRejected {
				t.Errorf("expected rejected, got %v", res.Status)
			}
			if len(res.Trades) != 0 {
				t.Errorf("expected no trades on a rejected order")
			}
		})
	}
}

func TestNoCrossedBookInvariant(t *testing.T) {
	book := orderbook.NewBook(symbol)
	seq := &idSeq{}
	var m Matcher

	rest(t, book, seq, domain.SideSell, 100, 5)
	taker := newOrder(seq, domain.SideBuy, domain.OrderTypeLimit, 105, 2)
	m.Match(book, taker, seq.nextTrade)

	if book.Crossed() {
		t.Fatal("book must never be crossed after a completed submission")
	}
}
