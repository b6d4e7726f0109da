package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultDialTimeout bounds how long a mutation response can wait on an
// unreachable broker.
const DefaultDialTimeout = 2 * time.Second

// RabbitPublisher dials per publish, nothing stays open between requests.
type RabbitPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	log         *zap.Logger
}

func NewRabbitPublisher(url, queue string, log *zap.Logger) *RabbitPublisher {
	if queue == "" {
		queue = "hotel.bookings"
	}
	return &RabbitPublisher{
		url:         url,
		queue:       queue,
		dialTimeout: DefaultDialTimeout,
		log:         log.With(zap.String("publisher", "rabbitmq")),
	}
}

// WithDialTimeout overrides DefaultDialTimeout. Non-positive values are ignored.
func (p *RabbitPublisher) WithDialTimeout(timeout time.Duration) *RabbitPublisher {
	if timeout > 0 {
		p.dialTimeout = timeout
	}
	return p
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable so events survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(ev.Type),
		MessageId:    ev.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
	defer cancel()

	if err := ch.PublishWithContext(pubCtx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	p.log.Debug("Event published",
		zap.String("type", string(ev.Type)),
		zap.String("booking_id", ev.BookingID),
	)
	return nil
}
