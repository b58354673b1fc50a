package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Client publishes events to a durable direct exchange, routed by event type.
type Client struct {
	conn         *amqp091.Connection
	mu           sync.Mutex // amqp091 channels are not safe for concurrent publishing
	channel      *amqp091.Channel
	exchangeName string
}

func NewClient(url, exchangeName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return client, nil
}

func (c *Client) Publish(ctx context.Context, e Event) error {
	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		string(e.Type), // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.At,
			Body:         body,
		},
	)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	slog.DebugContext(ctx, "published event",
		"type", e.Type,
		"entity_id", e.EntityID,
		"exchange", c.exchangeName)
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
