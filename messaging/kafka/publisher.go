// Package kafka publishes erasure follow-up jobs to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/studyhub/collab/config"
	"github.com/studyhub/collab/deletion"
)

// Writer is the subset of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher sends erasure follow-up jobs keyed by user id, so the jobs of one
// user land on one partition in order.
type Publisher struct {
	w       Writer
	timeout time.Duration
}

var _ deletion.FollowUp = (*Publisher)(nil)

// NewPublisher creates a publisher writing to cfg.Topic on cfg.Brokers.
func NewPublisher(cfg *config.Kafka) (*Publisher, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: brokers are empty")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is empty")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}
	return newPublisher(w, cfg.WriteTimeout), nil
}

func newPublisher(w Writer, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{w: w, timeout: timeout}
}

// PublishFollowUp writes job and waits for the brokers to acknowledge it.
func (p *Publisher) PublishFollowUp(ctx context.Context, job deletion.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("kafka: encode job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.UserID),
		Value: body,
		Time:  job.RequestedAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("erasure.followup")},
			{Key: "job_id", Value: []byte(job.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka: publish %s: %w", job.ID, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
