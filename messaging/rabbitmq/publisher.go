// Package rabbitmq publishes compensating erasure jobs to RabbitMQ.
//
// Jobs are sent as persistent JSON messages on a durable topic exchange. Each publish
// waits for a broker confirmation, so a nil error means the broker accepted the job.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/deletion"
)

// ErrNotConnected is returned when no channel can be opened.
var ErrNotConnected = errors.New("rabbitmq connection is not available")

const defaultPublishTimeout = 10 * time.Second

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends erasure follow-up jobs.
type Publisher struct {
	open       func() (Channel, error)
	exchange   string
	routingKey string
	timeout    time.Duration
	mu         sync.Mutex
}

// Dial connects to the broker described by cfg.
func Dial(cfg *config.RabbitMQ) (*amqp.Connection, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("rabbitmq: url is empty")
	}
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Heartbeat: cfg.HeartbeatInterval,
		Dial:      amqp.DefaultDial(cfg.ConnectionTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	return conn, nil
}

// NewPublisher publishes over conn.
func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) *Publisher {
	return newPublisher(func() (Channel, error) {
		if conn == nil || conn.IsClosed() {
			return nil, ErrNotConnected
		}
		return conn.Channel()
	}, cfg)
}

func newPublisher(open func() (Channel, error), cfg *config.RabbitMQ) *Publisher {
	p := &Publisher{open: open, timeout: defaultPublishTimeout}
	if cfg != nil {
		p.exchange = cfg.Exchange
		p.routingKey = cfg.RoutingKey
		if cfg.ConnectionTimeout > 0 {
			p.timeout = cfg.ConnectionTimeout
		}
	}
	return p
}

// ensureTopology declares the exchange and a queue bound under the routing key
func (p *Publisher) ensureTopology(ch Channel) error {
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(p.routingKey, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, p.routingKey, p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

// PublishFollowUp publishes job and waits for the broker to confirm it.
func (p *Publisher) PublishFollowUp(ctx context.Context, job deletion.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := p.ensureTopology(ch); err != nil {
		return err
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to put channel in confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, p.exchange, p.routingKey, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.RequestedAt,
		Type:         "erasure.followup",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	select {
	case confirmed, ok := <-confirms:
		if !ok {
			return errors.New("confirmation channel closed")
		}
		if !confirmed.Ack {
			return errors.New("broker rejected the job")
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish confirmation: %w", ctx.Err())
	}
}
