// Package publisher provides audit event sinks. Services depend only on the
// Emit interface; wiring picks the sink per environment (Kafka in production,
// store-backed or log-only for dev and tests).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "restyle/pkg/platform/audit"
)

// StorePublisher appends events to an audit.Store before fanning out to an
// optional next sink. Store failures fail the emit: the review core must not
// acknowledge a decision whose trail was lost.
type StorePublisher struct {
	store audit.Store
	next  Publisher
}

// Publisher is the emit side of the audit pipeline.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

func NewStorePublisher(store audit.Store, next Publisher) *StorePublisher {
	return &StorePublisher{store: store, next: next}
}

func (p *StorePublisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if p.next != nil {
		return p.next.Emit(ctx, event)
	}
	return nil
}

// KafkaPublisher ships audit events to a Kafka topic, keyed by subject so all
// events for one entity land in one partition in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event audit.Event) error {
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
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// LogPublisher writes audit events to the structured log. Used when no Kafka
// brokers are configured; the log line carries the full event.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event audit.Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"log_type", "audit",
		"category", string(event.Category),
		"subject", event.Subject,
		"action", event.Action,
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"actor_id", event.ActorID,
	)
	return nil
}
