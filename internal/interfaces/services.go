package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

// ScoringService is the ML fraud scoring service.
type ScoringService interface {
	Health(ctx context.Context) error
	Predict(ctx context.Context, tx *models.TestTransaction) (*models.ClassificationResult, error)
}

// AlertService is the fraud alert service.
type AlertService interface {
	Health(ctx context.Context) error
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)
	Summary(ctx context.Context) (*models.AlertSummary, error)
	SendAlert(ctx context.Context, req models.AlertRequest) error
}

// EventPublisher fans classified test transactions out to downstream consumers.
type EventPublisher interface {
	PublishClassification(ctx context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) error
	Close() error
}

// SubmissionLockRepository guards a transaction id while it is being scored
type SubmissionLockRepository interface {
	Acquire(ctx context.Context, transactionID string) (bool, error)
	Release(ctx context.Context, transactionID string) error
}
