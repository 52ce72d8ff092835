// Package pubsub fans out trade and market-data events to in-process
// subscribers, keyed by symbol. Delivery is best-effort: a subscriber that
// cannot keep up has events dropped rather than blocking the publisher
// (spec §4.5, §5 — a book lock must never be held while blocking on
// publish).
package pubsub

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"nexusbook/domain"
	"nexusbook/orderbook"
)

// TradeEvent is what subscribers of trades/<symbol> receive, one per trade.
type TradeEvent struct {
	Timestamp     time.Time
	Symbol        string
	TradeID       uint64
	Price         int64
	Quantity      int64
	AggressorSide domain.Side
	MakerOrderID  uint64
	TakerOrderID  uint64
}

// MarketDataSnapshot is what subscribers of marketdata/<symbol> receive
// after every submission against a non-quarantined book, whether or not the
// submission changed the book.
type MarketDataSnapshot struct {
	Timestamp time.Time
	Symbol    string
	BBO       orderbook.BBO
	Bids      []orderbook.DepthLevel
	Asks      []orderbook.DepthLevel
}

// Subscription is a live handle to a topic's event stream. Events is closed
// when Unsubscribe is called; the caller should stop reading from it then.
type Subscription struct {
	ID     uuid.UUID
	Events <-chan any
}

// PubSub is the in-process fan-out registry. Two logical topic families
// exist per symbol ("trades/<symbol>" and "marketdata/<symbol>"); this type
// treats the topic as an opaque string key so both share one implementation.
type PubSub struct {
	queueDepth int
	topics     map[string]map[uuid.UUID]chan any
	register   chan registration
	unregister chan unregistration
	publish    chan publication
}

type registration struct {
	topic string
	id    uuid.UUID
	ch    chan any
}

type unregistration struct {
	topic string
	id    uuid.UUID
}

type publication struct {
	topic string
	event any
}

// New creates a PubSub whose per-subscriber buffered channel holds
// queueDepth events before the publisher starts dropping for that
// subscriber.
func New(queueDepth int) *PubSub {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	p := &PubSub{
		queueDepth: queueDepth,
		topics:     make(map[string]map[uuid.UUID]chan any),
		register:   make(chan registration),
		unregister: make(chan unregistration),
		publish:    make(chan publication, 1024),
	}
	go p.loop()
	return p
}

// loop owns all subscriber bookkeeping, so topics/subscriber maps never
// need their own lock (spec §5: PubSub's subscriber lists are guarded
// independently of book locks).
func (p *PubSub) loop() {
	for {
		select {
		case reg := <-p.register:
			subs, ok := p.topics[reg.topic]
			if !ok {
				subs = make(map[uuid.UUID]chan any)
				p.topics[reg.topic] = subs
			}
			subs[reg.id] = reg.ch
		case unreg := <-p.unregister:
			if subs, ok := p.topics[unreg.topic]; ok {
				if ch, ok := subs[unreg.id]; ok {
					close(ch)
					delete(subs, unreg.id)
				}
				if len(subs) == 0 {
					delete(p.topics, unreg.topic)
				}
			}
		case pub := <-p.publish:
			for id, ch := range p.topics[pub.topic] {
				select {
				case ch <- pub.event:
				default:
					log.Warn().
						Str("topic", pub.topic).
						Str("subscriber", id.String()).
						Msg("dropping event for slow subscriber")
				}
			}
		}
	}
}

// Subscribe registers a new subscriber on topic and returns a handle to its
// event stream.
func (p *PubSub) Subscribe(topic string) Subscription {
	ch := make(chan any, p.queueDepth)
	id := uuid.New()
	p.register <- registration{topic: topic, id: id, ch: ch}
	return Subscription{ID: id, Events: ch}
}

// Unsubscribe removes a subscriber and closes its event channel.
func (p *PubSub) Unsubscribe(topic string, id uuid.UUID) {
	p.unregister <- unregistration{topic: topic, id: id}
}

func tradesTopic(symbol string) string     { return "trades/" + symbol }
func marketDataTopic(symbol string) string { return "marketdata/" + symbol }

// SubscribeTrades registers for trades/<symbol>.
func (p *PubSub) SubscribeTrades(symbol string) Subscription { return p.Subscribe(tradesTopic(symbol)) }

// SubscribeMarketData registers for marketdata/<symbol>.
func (p *PubSub) SubscribeMarketData(symbol string) Subscription {
	return p.Subscribe(marketDataTopic(symbol))
}

// PublishTrades emits one TradeEvent per trade, preserving trade-emission
// order.
func (p *PubSub) PublishTrades(symbol string, trades []*domain.Trade) {
	topic := tradesTopic(symbol)
	for _, t := range trades {
		p.publish <- publication{topic: topic, event: TradeEvent{
			Timestamp:     t.Timestamp,
			Symbol:        t.Symbol,
			TradeID:       t.ID,
			Price:         t.Price,
			Quantity:      t.Quantity,
			AggressorSide: t.AggressorSide,
			MakerOrderID:  t.MakerOrderID,
			TakerOrderID:  t.TakerOrderID,
		}}
	}
}

// PublishMarketData emits a fresh snapshot to marketdata/<symbol>.
func (p *PubSub) PublishMarketData(symbol string, snapshot MarketDataSnapshot) {
	p.publish <- publication{topic: marketDataTopic(symbol), event: snapshot}
}
