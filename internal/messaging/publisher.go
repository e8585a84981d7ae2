package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fables-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Event types carried by FableEventPayload.
const (
	EventFableCreated  = "fable_created"
	EventFableLiked    = "fable_liked"
	EventFableDisliked = "fable_disliked"
)

// FableEventPublisher defines the interface for publishing fable activity
// events.
type FableEventPublisher interface {
	PublishFableEvent(ctx context.Context, payload models.FableEventPayload) error
}

// Compile-time check to ensure rabbitMQPublisher implements FableEventPublisher
var _ FableEventPublisher = (*rabbitMQPublisher)(nil)

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQFableEventPublisher opens a channel on the given connection and
// declares the durable event queue.
func NewRabbitMQFableEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (FableEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("fable event publisher: failed to open channel: %w", err)
	}

	// Queue parameters must match any consumer declaring the same queue.
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("fable event publisher: failed to declare queue '%s': %w", queueName, err)
	}

	logger = logger.Named("FableEventPublisher")
	logger.Info("Fable event queue declared", zap.String("queue", queueName))
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: logger}, nil
}

// PublishFableEvent serializes the payload and publishes it with persistent
// delivery.
func (p *rabbitMQPublisher) PublishFableEvent(ctx context.Context, payload models.FableEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to serialize fable event",
			zap.String("event", payload.EventType),
			zap.String("fableID", payload.FableID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to serialize fable event %s: %w", payload.EventType, err)
	}
	return p.publishMessage(ctx, body)
}

// publishMessage publishes a message with a small bounded retry.
func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key (queue name)
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "fables-server",
			},
		)
		if err == nil {
			p.logger.Debug("Message published", zap.String("queue", p.queueName), zap.Int("attempt", attempt))
			return nil
		}
		p.logger.Warn("Failed to publish message, retrying",
			zap.String("queue", p.queueName),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
