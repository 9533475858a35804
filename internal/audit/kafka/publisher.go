// Package kafka publishes audit events to a Kafka topic so downstream
// compliance consumers get the same trail the in-process store keeps.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/twmb/franz-go/pkg/kgo"

	"marksman/internal/audit"
)

type Publisher struct {
	client   *kgo.Client
	topic    string
	failures prometheus.Counter
}

// New connects a producer to the given brokers. The caller owns Close.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Publisher{
		client: client,
		topic:  topic,
		failures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "marksman_audit_kafka_publish_failures_total",
			Help: "Audit events that failed to publish to Kafka.",
		}),
	}, nil
}

// Publish produces one event, keyed by subject so per-item ordering survives
// partitioning.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		p.failures.Inc()
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() { p.client.Close() }
