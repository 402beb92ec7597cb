// Package notify publishes booking lifecycle events to a message broker on
// a best-effort, fire-and-forget basis. Delivery failures are logged and
// swallowed; they never surface to the request that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/carebridge/carebridge/internal/platform/metrics"
)

// Event is a single notification message.
type Event struct {
	Kind       string    `json:"kind"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Resource   string    `json:"resource,omitempty"`
	ResourceID uuid.UUID `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers a single event to the sink.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// ---------------------------------------------------------------------------
// AMQP publisher
// ---------------------------------------------------------------------------

// AMQPPublisher publishes events to a fanout exchange. Publishes run behind
// a circuit breaker so a dead broker degrades to fast failures instead of
// holding request goroutines.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	cb       *gobreaker.CircuitBreaker
}

// NewAMQPPublisher connects to the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-amqp",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, cb: cb}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(
			ctx,
			p.exchange,
			evt.Kind, // routing key, ignored by fanout but useful in traces
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    evt.OccurredAt,
				Body:         body,
			},
		)
	})
	return err
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// ---------------------------------------------------------------------------
// Log publisher
// ---------------------------------------------------------------------------

// LogPublisher writes events to the log only. It stands in for the broker
// when AMQP_URL is unset.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) error {
	p.log.Info().
		Str("kind", evt.Kind).
		Str("user_id", evt.UserID.String()).
		Str("resource", evt.Resource).
		Str("resource_id", evt.ResourceID.String()).
		Msg("notification event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// ---------------------------------------------------------------------------
// MultiPublisher
// ---------------------------------------------------------------------------

// MultiPublisher fans an event out to several publishers. Every publisher
// is attempted; the first error is returned.
type MultiPublisher struct {
	pubs []Publisher
}

func Multi(pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{pubs: pubs}
}

func (m *MultiPublisher) Publish(ctx context.Context, evt Event) error {
	var first error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *MultiPublisher) Close() error {
	var first error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

const dispatchTimeout = 5 * time.Second

// Dispatcher hands events to the publisher asynchronously. At most one
// delivery attempt is made per event.
type Dispatcher struct {
	pub Publisher
	log zerolog.Logger
}

func NewDispatcher(pub Publisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, log: log}
}

// Dispatch publishes the event in the background. The caller's context is
// not reused: the request that produced the event may already be done.
func (d *Dispatcher) Dispatch(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Msg("notification dispatch panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.pub.Publish(ctx, evt); err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.log.Warn().Err(err).
				Str("kind", evt.Kind).
				Str("user_id", evt.UserID.String()).
				Msg("notification publish failed")
			return
		}
		metrics.NotificationsTotal.WithLabelValues("published").Inc()
	}()
}
