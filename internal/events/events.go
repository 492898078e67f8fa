// Package events publishes classified test transactions to Kafka and NATS.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

const (
	SubjectStats = "dashboard.stats"
	SubjectFraud = "dashboard.fraud"
)

// ClassificationEvent is the message body written for every scored test transaction.
type ClassificationEvent struct {
	Transaction *models.TestTransaction      `json:"transaction"`
	Prediction  *models.ClassificationResult `json:"prediction"`
	Stats       state.Stats                  `json:"stats"`
	FraudRate   float64                      `json:"fraud_rate"`
	Timestamp   time.Time                    `json:"timestamp"`
}

func newClassificationEvent(tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) ClassificationEvent {
	return ClassificationEvent{
		Transaction: tx,
		Prediction:  result,
		Stats:       stats,
		FraudRate:   stats.FraudRate(),
		Timestamp:   time.Now().UTC(),
	}
}

// Publisher is a publisher that can be composed with others.
type Publisher interface {
	PublishClassification(ctx context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) error
	Close() error
}

// MultiPublisher fans out to every configured publisher and joins their errors.
type MultiPublisher struct {
	publishers []Publisher
}

func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	out := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return &MultiPublisher{publishers: out}
}

func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}

func (m *MultiPublisher) PublishClassification(ctx context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.PublishClassification(ctx, tx, result, stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
