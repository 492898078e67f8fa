package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

// Conn is the subset of *nats.Conn used here.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher announces stats after every classification on SubjectStats and
// fraud verdicts on SubjectFraud.
type NATSPublisher struct {
	conn Conn
}

func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("fraud-dashboard"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

func NewNATSPublisher(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) PublishClassification(_ context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) error {
	event := newClassificationEvent(tx, result, stats)

	statsJSON, err := json.Marshal(struct {
		state.Stats
		FraudRate float64 `json:"fraud_rate"`
	}{Stats: stats, FraudRate: event.FraudRate})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(SubjectStats, statsJSON); err != nil {
		return fmt.Errorf("nats publish %s: %w", SubjectStats, err)
	}

	if !result.IsFraud {
		return nil
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(SubjectFraud, eventJSON); err != nil {
		return fmt.Errorf("nats publish %s: %w", SubjectFraud, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
