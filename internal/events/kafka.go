package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes every classified test transaction to a topic, keyed by transaction id.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) PublishClassification(ctx context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) error {
	value, err := json.Marshal(newClassificationEvent(tx, result, stats))
	if err != nil {
		return fmt.Errorf("failed to marshal classification event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.TransactionID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("kafka publish %s: %w", tx.TransactionID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
