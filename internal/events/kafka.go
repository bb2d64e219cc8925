// Package events publishes Entity Store changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"recytoken-up-go/internal/models"
	"recytoken-up-go/internal/store"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultTopic = "recytoken-up.changes"
	writeTimeout = 5 * time.Second
)

// messageWriter is the subset of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements store.ChangePublisher on a Kafka topic. Writes are
// asynchronous; delivery failures are logged and counted, never returned.
type Publisher struct {
	writer messageWriter
	topic  string
	failed atomic.Int64
}

var _ store.ChangePublisher = (*Publisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Publisher{topic: topic}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
		Async:        true,
		Completion:   p.completed,
	}
	return p
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func NewPublisher(cfg models.KafkaConfig) (store.ChangePublisher, func()) {
	if len(cfg.Brokers) == 0 {
		zap.L().Info("No Kafka brokers configured, change events disabled")
		return store.NopPublisher{}, func() {}
	}
	p := NewKafkaPublisher(cfg.Brokers, cfg.Topic)
	zap.L().Info("Publishing change events to Kafka",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", p.topic))
	return p, func() {
		if err := p.Close(); err != nil {
			zap.L().Warn("Failed to close Kafka writer", zap.Error(err))
		}
	}
}

func (p *Publisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	message, err := buildMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write change event to kafka: %w", err)
	}
	return nil
}

// completed runs on the writer's goroutine once a batch is acknowledged or dropped
func (p *Publisher) completed(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	p.failed.Add(int64(len(messages)))
	keys := make([]string, len(messages))
	for i, m := range messages {
		keys[i] = string(m.Key)
	}
	zap.L().Warn("Failed to deliver change events",
		zap.String("topic", p.topic),
		zap.Strings("keys", keys),
		zap.Error(err))
}

// Failed returns how many change events could not be delivered
func (p *Publisher) Failed() int64 {
	return p.failed.Load()
}

// Close flushes pending asynchronous writes
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// buildMessage keys events by entity id so one entity's changes stay ordered
func buildMessage(event models.ChangeEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal change event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Entity + ":" + event.Id),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type())},
		},
	}, nil
}
