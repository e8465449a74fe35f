// Package broker publishes domain events to RabbitMQ and consumes them back.
package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/events"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     *config.RabbitMQConfig
	logger  *zap.Logger
}

// Dial connects and declares the topic exchange events are published to.
func Dial(cfg *config.RabbitMQConfig, logger *zap.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &RabbitMQ{conn: conn, channel: ch, cfg: cfg, logger: logger.Named("rabbitmq")}, nil
}

// SetupAuditQueue declares the durable audit queue and binds it to every event.
func (r *RabbitMQ) SetupAuditQueue() error {
	if _, err := r.channel.QueueDeclare(
		r.cfg.AuditQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", r.cfg.AuditQueue, err)
	}

	if err := r.channel.QueueBind(r.cfg.AuditQueue, "#", r.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", r.cfg.AuditQueue, err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if err := r.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	if err := r.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Handle publishes e with its type as routing key. It makes RabbitMQ usable
// as an events.Sink.
func (r *RabbitMQ) Handle(ctx context.Context, e events.Event) error {
	msg, err := newPublishing(e)
	if err != nil {
		return err
	}

	return r.channel.PublishWithContext(ctx,
		r.cfg.Exchange, // exchange
		e.Type,         // routing key
		false,          // mandatory
		false,          // immediate
		msg,
	)
}

func newPublishing(e events.Event) (amqp.Publishing, error) {
	body, err := e.Encode()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("could not marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Type:         e.Type,
		Timestamp:    e.OccurredAt,
		Body:         body,
	}, nil
}

// Consume reads the audit queue until ctx is done or the channel closes.
// Messages that cannot be decoded are dropped; handler failures are requeued.
func (r *RabbitMQ) Consume(ctx context.Context, consumer string, handler func(context.Context, events.Event) error) error {
	msgs, err := r.channel.Consume(
		r.cfg.AuditQueue,
		consumer, // consumer tag
		false,    // auto-ack
		false,    // exclusive
		false,    // no-local
		false,    // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			settle(ctx, r.logger, d.Body, d, handler)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ctx context.Context, logger *zap.Logger, body []byte, ack acknowledger, handler func(context.Context, events.Event) error) {
	e, err := events.Decode(body)
	if err != nil {
		logger.Warn("Dropping undecodable message", zap.Error(err))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := handler(ctx, e); err != nil {
		logger.Error("Failed to handle event",
			zap.String("type", e.Type),
			zap.String("id", e.ID),
			zap.Error(err))
		if err := ack.Nack(false, true); err != nil {
			logger.Error("Failed to nack message", zap.Error(err))
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("Failed to ack message", zap.Error(err))
	}
}
