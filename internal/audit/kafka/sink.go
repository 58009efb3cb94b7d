// Package kafka mirrors audit events to a Kafka topic for downstream
// consumers (compliance exports, ops dashboards). The mirror is strictly
// best-effort: produce failures are logged and the event still lands in the
// primary store.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"campusgate/internal/audit"
)

// Sink produces audit events to a Kafka topic.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewSink connects to the given brokers. The caller owns Close.
func NewSink(brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// Publish sends one event, keyed by subject email so per-principal history
// stays ordered within a partition. Fire-and-forget.
func (s *Sink) Publish(ctx context.Context, event audit.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("audit event marshal failed", "kind", string(event.Kind), "error", err)
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.SubjectEmail),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Warn("audit mirror produce failed", "kind", string(event.Kind), "error", err)
		}
	})
}

// Close flushes outstanding records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
