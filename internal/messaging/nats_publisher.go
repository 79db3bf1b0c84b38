// Package messaging bridges the in-process event bus to NATS so
// downstream payout processors and operator tooling can consume claim
// lifecycle events without polling the ledger.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"stakesure/internal/bootstrap/logging"
	"stakesure/internal/errs"
	"stakesure/internal/event"
)

type Publisher struct {
	conn    *nats.Conn
	prefix  string
	subIDs  map[event.Type]event.SubscriberID
	bus     *event.Bus
	baseCtx context.Context
}

func NewPublisher(ctx context.Context, url, subjectPrefix string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("stakesure-claims"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats %q", url)
	}

	return &Publisher{
		conn:    conn,
		prefix:  subjectPrefix,
		subIDs:  make(map[event.Type]event.SubscriberID),
		baseCtx: ctx,
	}, nil
}

// Attach forwards every bus event type to NATS as JSON on
// <prefix>.<type>. Publish failures are logged, never propagated: the
// ledger transaction has already committed by the time the event fires.
func (p *Publisher) Attach(bus *event.Bus) {
	p.bus = bus
	for _, eventType := range event.Types() {
		p.subIDs[eventType] = bus.SubscribeFunc(eventType, p.forward)
	}
}

func (p *Publisher) forward(evt event.Event) {
	ctx := logging.WithAttrs(p.baseCtx, slog.String("component", "messaging.nats"))

	body, err := json.Marshal(struct {
		Type      string    `json:"type"`
		Timestamp time.Time `json:"timestamp"`
		Data      any       `json:"data"`
	}{
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp,
		Data:      evt.Data,
	})
	if err != nil {
		logging.Error(ctx, "encode event failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	subject := p.prefix + "." + string(evt.Type)
	if err := p.conn.Publish(subject, body); err != nil {
		logging.Error(ctx, "publish event failed",
			slog.String("subject", subject),
			slog.Any("err", errs.Loggable(err)))
	}
}

func (p *Publisher) Close() {
	if p.bus != nil {
		for eventType, id := range p.subIDs {
			p.bus.Unsubscribe(eventType, id)
		}
	}
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
