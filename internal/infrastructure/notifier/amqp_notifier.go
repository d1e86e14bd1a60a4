package notifier

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pay-chain.backend/internal/domain/repositories"
	"pay-chain.backend/pkg/logger"
)

const queueName = "account.notifications"

// Message is the wire shape published to the notification queue. A
// downstream mailer consumes these and renders the actual emails.
type Message struct {
	Kind      repositories.NotificationKind `json:"kind"`
	Recipient string                        `json:"recipient"`
	Payload   map[string]string             `json:"payload,omitempty"`
	Timestamp time.Time                     `json:"timestamp"`
}

// AMQPNotifier publishes notification messages to RabbitMQ. Send
// returns immediately; publishing happens on a background goroutine
// with its own timeout, and failures are logged, never surfaced. The
// state transition that triggered the message has already committed by
// the time Send runs.
type AMQPNotifier struct {
	url     string
	timeout time.Duration
}

var dialAMQP = amqp.Dial

// NewAMQPNotifier creates a new AMQP notifier
func NewAMQPNotifier(url string) *AMQPNotifier {
	return &AMQPNotifier{
		url:     url,
		timeout: 10 * time.Second,
	}
}

// Send dispatches a notification message, fire-and-forget.
func (n *AMQPNotifier) Send(_ context.Context, kind repositories.NotificationKind, recipient string, payload map[string]string) {
	msg := Message{
		Kind:      kind,
		Recipient: recipient,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}

	// Detached from the request context: the caller's response must not
	// wait on the broker, and abandoning the request must not cancel a
	// message for a transition that already committed.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.publish(ctx, msg); err != nil {
			logger.Warn(ctx, "notification dispatch failed",
				zap.String("kind", string(kind)),
				zap.String("recipient", recipient),
				zap.Error(err),
			)
		}
	}()
}

func (n *AMQPNotifier) publish(ctx context.Context, msg Message) error {
	conn, err := dialAMQP(n.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
}
