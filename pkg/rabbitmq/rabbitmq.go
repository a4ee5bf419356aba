package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tokocart/pkg/logger"

	amqp "github.com/streadway/amqp"
)

// Topology of the order events.
const (
	ExchangeOrders = "orders"
	QueueOrders    = "order_queue"
	BindingOrders  = "order.#"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("rabbitmq: client is closed")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel; amqp channels are not safe for concurrent publishing
	log     *logger.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the orders topic exchange together with its
// durable queue.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Info("RabbitMQ client connected", "exchange", ExchangeOrders, "queue", QueueOrders)
	return &Client{conn: conn, channel: ch, log: log}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeOrders, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeOrders, err)
	}

	if _, err := ch.QueueDeclare(
		QueueOrders, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", QueueOrders, err)
	}

	if err := ch.QueueBind(QueueOrders, BindingOrders, ExchangeOrders, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", QueueOrders, ExchangeOrders, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// Publish sends a persistent JSON message to exchange under routingKey.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil {
		return ErrClosed
	}

	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.log.Debug("sent order event", "exchange", exchange, "routing_key", routingKey, "bytes", len(body))
	return nil
}

// ConsumeOrderEvents starts a goroutine that hands every message on the order queue to
// handler. Handled messages are acked; failed ones are rejected without requeue so a poison
// message cannot loop forever.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return ErrClosed
	}

	msgs, err := ch.Consume(
		QueueOrders, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info("waiting for order events", "queue", QueueOrders)

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				c.log.Warn("failed to process order event", "delivery_tag", msg.DeliveryTag, "routing_key", msg.RoutingKey, "error", err)
				if nackErr := msg.Nack(false, false); nackErr != nil {
					c.log.Error("failed to nack order event", "delivery_tag", msg.DeliveryTag, "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.log.Error("failed to ack order event", "delivery_tag", msg.DeliveryTag, "error", ackErr)
			}
		}
		c.log.Info("order event consumer stopped")
	}()

	return nil
}
