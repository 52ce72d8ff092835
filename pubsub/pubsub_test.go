package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusbook/domain"
)

func TestPublishTradesDeliversToSubscriber(t *testing.T) {
	ps := New(16)
	sub := ps.SubscribeTrades("BTC-USDT")

	trade := domain.NewTrade(1, "BTC-USDT", 100, 1, domain.SideBuy,
		domain.NewOrder("BTC-USDT", "maker", domain.SideSell, domain.OrderTypeLimit, 100, 1),
		domain.NewOrder("BTC-USDT", "taker", domain.SideBuy, domain.OrderTypeMarket, 0, 1))

	ps.PublishTrades("BTC-USDT", []*domain.Trade{trade})

	select {
	case event := <-sub.Events:
		got := event.(TradeEvent)
		assert.EqualValues(t, 1, got.TradeID)
		assert.EqualValues(t, 100, got.Price)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for trade event")
	}
}

func TestPublishMarketDataIsolatedPerSymbol(t *testing.T) {
	ps := New(16)
	subA := ps.SubscribeMarketData("AAA")
	subB := ps.SubscribeMarketData("BBB")

	ps.PublishMarketData("AAA", MarketDataSnapshot{Symbol: "AAA"})

	select {
	case event := <-subA.Events:
		assert.Equal(t, "AAA", event.(MarketDataSnapshot).Symbol)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for AAA snapshot")
	}

	select {
	case <-subB.Events:
		t.Fatal("BBB subscriber should not receive AAA's snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := New(16)
	sub := ps.SubscribeTrades("BTC-USDT")
	ps.Unsubscribe(tradesTopic("BTC-USDT"), sub.ID)

	select {
	case _, ok := <-sub.Events:
		require.False(t, ok, "expected channel to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSlowSubscriberDropsRatherThanBlocksPublisher(t *testing.T) {
	ps := New(1)
	sub := ps.SubscribeTrades("BTC-USDT")

	// Fill the subscriber's buffer, then publish once more: this must
	// return promptly rather than block on the full channel (spec §5 —
	// a book lock must never be held while blocking on publish).
	trade := domain.NewTrade(1, "BTC-USDT", 100, 1, domain.SideBuy,
		domain.NewOrder("BTC-USDT", "maker", domain.SideSell, domain.OrderTypeLimit, 100, 1),
		domain.NewOrder("BTC-USDT", "taker", domain.SideBuy, domain.OrderTypeMarket, 0, 1))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			ps.PublishTrades("BTC-USDT", []*domain.Trade{trade})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow/unread subscriber")
	}

	// Drain whatever made it through; no assertion on count, only that
	// publishing never blocked.
	for {
		select {
		case <-sub.Events:
		default:
			return
		}
	}
}
