package event

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(prometheus.NewRegistry())

	var got []Event
	bus.SubscribeFunc(TypeClaimSubmitted, func(evt Event) {
		got = append(got, evt)
	})
	bus.SubscribeFunc(TypeVoteCast, func(evt Event) {
		t.Fatalf("vote handler should not fire for claim event")
	})

	bus.Publish(New(TypeClaimSubmitted, ClaimSubmitted{ClaimID: 7}))

	if len(got) != 1 {
		t.Fatalf("delivered %d events", len(got))
	}
	data, ok := got[0].Data.(ClaimSubmitted)
	if !ok || data.ClaimID != 7 {
		t.Fatalf("payload = %#v", got[0].Data)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(nil)

	count := 0
	id := bus.SubscribeFunc(TypePauseChanged, func(Event) { count++ })

	bus.Publish(New(TypePauseChanged, PauseChanged{}))
	bus.Unsubscribe(TypePauseChanged, id)
	bus.Publish(New(TypePauseChanged, PauseChanged{}))

	if count != 1 {
		t.Fatalf("handler ran %d times", count)
	}
}
