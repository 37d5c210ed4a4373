package service

// This file provides the domain event publishers.  Publishing is
// fire-and-forget: a failure to reach RabbitMQ is logged and never fails the
// request that produced the event.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/queue"
)

// ErrEventDropped is returned by AMQPPublisher.Publish when the outbound
// buffer is full.
var ErrEventDropped = errors.New("event buffer full")

// EventPublisher accepts domain events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher discards every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }

// AMQPPublisher buffers events in memory and publishes them to a durable
// queue from a single background goroutine started by Run.  Messages are
// marked persistent.
type AMQPPublisher struct {
	url    string
	queue  string
	events chan queue.Event
}

// NewAMQPPublisher returns a publisher for the given broker URL and queue.
// buffer bounds the number of events held while the broker is unreachable.
func NewAMQPPublisher(url, queueName string, buffer int) *AMQPPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &AMQPPublisher{url: url, queue: queueName, events: make(chan queue.Event, buffer)}
}

// Publish enqueues ev without blocking.
func (p *AMQPPublisher) Publish(_ context.Context, ev queue.Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	select {
	case p.events <- ev:
		return nil
	default:
		log.Warn().Str("type", ev.Type).Msg("rabbitmq: event buffer full, dropping event")
		return ErrEventDropped
	}
}

// Run publishes buffered events until ctx is cancelled, reconnecting with
// exponential backoff when the broker goes away.
func (p *AMQPPublisher) Run(ctx context.Context) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("rabbitmq: dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		if err := p.publishLoop(ctx, conn); err != nil {
			log.Warn().Err(err).Msg("rabbitmq: publish loop ended, reconnecting")
		}
		_ = conn.Close()
	}
}

func (p *AMQPPublisher) publishLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case ev := <-p.events:
			if err := p.publish(ctx, ch, ev); err != nil {
				log.Warn().Err(err).Str("type", ev.Type).Msg("rabbitmq: publish failed")
				return err
			}
		}
	}
}

func (p *AMQPPublisher) publish(ctx context.Context, ch *amqp.Channel, ev queue.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(pctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		})
}

// emit publishes ev and logs, rather than returns, any failure.
func emit(ctx context.Context, p EventPublisher, ev queue.Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("type", ev.Type).Msg("event not published")
	}
}
