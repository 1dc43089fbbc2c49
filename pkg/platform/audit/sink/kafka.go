// Package sink forwards audit events to external systems.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"spectra/internal/platform/kafka/producer"
	audit "spectra/pkg/platform/audit"
)

// Producer is the subset of the Kafka producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaSink publishes each event as a JSON record keyed by user id.
type KafkaSink struct {
	producer Producer
	topic    string
}

func NewKafkaSink(p Producer, topic string) *KafkaSink {
	return &KafkaSink{producer: p, topic: topic}
}

func (k *KafkaSink) Emit(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: k.topic,
		Value: value,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	}
	if !event.UserID.IsNil() {
		msg.Key = []byte(event.UserID.String())
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}
	return k.producer.Produce(ctx, msg)
}
