package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kendall-kelly/restaurant-floor-api/config"
)

// RabbitMQPublisher sends events to a fanout exchange with publisher confirms.
// The event type travels as the routing key so topic rebinding stays possible.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// rabbitMQURL builds the AMQP URL from config
func rabbitMQURL(cfg *config.Config) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.RabbitMQUser, cfg.RabbitMQPassword),
		Host:   fmt.Sprintf("%s:%d", cfg.RabbitMQHost, cfg.RabbitMQPort),
	}
	// an empty path selects the default "/" vhost
	if vhost := cfg.RabbitMQVHost; vhost != "" && vhost != "/" {
		u.Path = "/" + vhost
	}
	return u.String()
}

// NewRabbitMQPublisher dials the broker, declares the exchange and enables confirms
func NewRabbitMQPublisher(cfg *config.Config) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(rabbitMQURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.RabbitMQExchange, // name
		"fanout",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", cfg.RabbitMQExchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &RabbitMQPublisher{conn: conn, ch: ch, exchange: cfg.RabbitMQExchange}, nil
}

// Publish sends the event and waits for the broker ack
func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// each publish gets its own confirmation tagged with its delivery tag
	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("no confirm for %s: %w", event.Type, err)
	}
	if !acked {
		return fmt.Errorf("broker nacked %s", event.Type)
	}
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
