// Package event provides a small in-process bus for claim lifecycle
// events. Delivery is synchronous: publishers run subscribers inline, so
// an event observed after a transaction commits reflects committed state.
package event

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Type string

const (
	TypeClaimSubmitted   Type = "claim.submitted"
	TypeVoteCast         Type = "claim.vote_cast"
	TypePayoutRedeemed   Type = "claim.payout_redeemed"
	TypeDepositRetrieved Type = "claim.deposit_retrieved"
	TypePauseChanged     Type = "pause.changed"
	TypeVotesUndone      Type = "remediation.votes_undone"
	TypeVotingExtended   Type = "remediation.voting_extended"
)

type Event struct {
	Type      Type
	Timestamp time.Time
	Data      any
}

func New(eventType Type, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type HandlerFunc func(Event)

type SubscriberID int

type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type]map[SubscriberID]HandlerFunc
	lastSubID   SubscriberID
	published   *prometheus.CounterVec
}

func NewBus(promRegistry prometheus.Registerer) *Bus {
	b := &Bus{
		subscribers: make(map[Type]map[SubscriberID]HandlerFunc),
	}
	if promRegistry != nil {
		b.published = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stakesure_events_published_total",
				Help: "Lifecycle events published, by type",
			},
			[]string{"type"},
		)
		promRegistry.MustRegister(b.published)
	}
	return b
}

// SubscribeFunc registers a handler for one event type and returns an id
// usable with Unsubscribe.
func (b *Bus) SubscribeFunc(eventType Type, handler HandlerFunc) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSubID++
	id := b.lastSubID
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[SubscriberID]HandlerFunc)
	}
	b.subscribers[eventType][id] = handler
	return id
}

func (b *Bus) Unsubscribe(eventType Type, id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers[eventType], id)
}

func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(b.subscribers[evt.Type]))
	for _, handler := range b.subscribers[evt.Type] {
		handlers = append(handlers, handler)
	}
	b.mu.RUnlock()

	if b.published != nil {
		b.published.WithLabelValues(string(evt.Type)).Inc()
	}

	for _, handler := range handlers {
		handler(evt)
	}
}

// Types lists every event type the bus carries, for bridges that forward
// all traffic.
func Types() []Type {
	return []Type{
		TypeClaimSubmitted,
		TypeVoteCast,
		TypePayoutRedeemed,
		TypeDepositRetrieved,
		TypePauseChanged,
		TypeVotesUndone,
		TypeVotingExtended,
	}
}
