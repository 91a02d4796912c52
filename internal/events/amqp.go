package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the topic exchange order events are published to.
const Exchange = "spicestory.orders"

const publishTimeout = 5 * time.Second

// AMQPPublisher publishes JSON messages to a RabbitMQ topic exchange and
// reconnects lazily when the connection or channel drops.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger

	// lock is a one-slot semaphore so waiting publishers honor their context.
	lock    chan struct{}
	conn    *amqp.Connection
	channel *amqp.Channel
}

func newAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger, lock: make(chan struct{}, 1)}
}

// DialAMQP connects to url, retrying with exponential backoff for up to
// maxWait, and declares the exchange.
func DialAMQP(ctx context.Context, url string, maxWait time.Duration, logger *slog.Logger) (*AMQPPublisher, error) {
	p := newAMQPPublisher(url, logger)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait

	connect := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		return p.connect(attemptCtx)
	}
	err := backoff.RetryNotify(connect, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		logger.Warn("rabbitmq connection failed, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}
	return p, nil
}

// dialer returns an amqp dial func whose TCP connect and handshake end by
// the deadline of ctx.
func dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(publishTimeout)
		}
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		// amqp clears the deadline once the handshake completes.
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// connect must be called with the lock held or before the publisher is shared.
func (p *AMQPPublisher) connect(ctx context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.DialConfig(p.url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      dialer(ctx),
		})
		if err != nil {
			return fmt.Errorf("dialing: %w", err)
		}
		p.conn, p.channel = conn, nil
	}
	if p.channel != nil && !p.channel.IsClosed() {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.conn.Close()
		return fmt.Errorf("opening channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("declaring exchange %s: %w", Exchange, err)
	}

	p.channel = ch
	return nil
}

// Publish sends msg as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling %s message: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	select {
	case p.lock <- struct{}{}:
		defer func() { <-p.lock }()
	case <-ctx.Done():
		return fmt.Errorf("publishing %s: %w", routingKey, ctx.Err())
	}

	if err := p.connect(ctx); err != nil {
		return fmt.Errorf("reconnecting: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		Exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", routingKey, err)
	}

	p.logger.Debug("event published", "routing_key", routingKey, "size", len(body))
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.lock <- struct{}{}
	defer func() { <-p.lock }()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
