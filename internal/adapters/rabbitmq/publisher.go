package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"eventmenu/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "eventmenu"
	ExchangeKind = "topic"
)

// Publisher publishes JSON messages to a durable topic exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewPublisher dials url and declares the exchange.
func NewPublisher(url string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, ExchangeKind, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, logger: logger}, nil
}

func (p *Publisher) Publish(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Publish(
		ExchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Debug("message published", "exchange", ExchangeName, "routing_key", routingKey, "bytes", len(body))
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a MessagePublisher that only logs; used when no broker is configured.
func NewNoopPublisher(logger *slog.Logger) domain.MessagePublisher {
	return &noopPublisher{logger: logger}
}

func (n *noopPublisher) Publish(routingKey string, payload any) error {
	n.logger.Debug("message would be published (noop)", "routing_key", routingKey)
	return nil
}
