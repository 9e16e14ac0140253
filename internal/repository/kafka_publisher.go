package repository

import (
	"context"

	"Sully/internal/domain/models"
	"Sully/pkg/kafka"
)

// KafkaPublisher pushes derived alerts to a broker topic, keyed by symbol
// so per-symbol ordering holds across partitions.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher creates an alert publisher over an existing producer.
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(alerts))
	for _, a := range alerts {
		msgs = append(msgs, kafka.Message{Key: []byte(a.Symbol), Value: a})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
