package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/interfaces"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

// ErrDuplicateSubmission is returned when the transaction id is already being scored.
var ErrDuplicateSubmission = errors.New("transaction is already being submitted")

// Submission is the outcome of one test transaction.
type Submission struct {
	Transaction *models.TestTransaction      `json:"transaction,omitempty"`
	Result      *models.ClassificationResult `json:"result,omitempty"`
	Banner      render.Banner                `json:"banner"`
	Stats       state.Stats                  `json:"stats"`
}

// SubmitterOptions configures optional side effects of a submission.
type SubmitterOptions struct {
	Publisher     interfaces.EventPublisher
	Locks         interfaces.SubmissionLockRepository
	AlertService  interfaces.AlertService
	ForwardAlerts bool
	Now           func() time.Time
}

// Submitter runs the test transaction pipeline:
// build → classify → banner → stream → stats/trend.
type Submitter struct {
	state   *state.DashboardState
	scoring interfaces.ScoringService
	opts    SubmitterOptions
}

func NewSubmitter(st *state.DashboardState, scoring interfaces.ScoringService, opts SubmitterOptions) *Submitter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Submitter{state: st, scoring: scoring, opts: opts}
}

// Submit parses the form inputs and runs the pipeline. The returned Submission
// always carries a banner, including on error.
func (s *Submitter) Submit(ctx context.Context, in models.TestTransactionInput) (*Submission, error) {
	tx, err := models.ParseTestTransaction(models.NewTestTransactionID(s.opts.Now()), in)
	if err != nil {
		telemetry.TestTransactions.WithLabelValues("invalid").Inc()
		return &Submission{Banner: render.ErrorBanner(err), Stats: s.state.Stats()}, err
	}
	return s.SubmitTransaction(ctx, tx)
}

// SubmitTransaction classifies an already built transaction.
func (s *Submitter) SubmitTransaction(ctx context.Context, tx *models.TestTransaction) (*Submission, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "submit test transaction")
	defer span.End()

	fail := func(err error) (*Submission, error) {
		telemetry.TestTransactions.WithLabelValues("error").Inc()
		telemetry.Logger.Warn("Test transaction failed",
			zap.String("transaction_id", tx.TransactionID),
			zap.Error(err),
		)
		span.RecordError(err)
		return &Submission{Transaction: tx, Banner: render.ErrorBanner(err), Stats: s.state.Stats()}, err
	}

	if s.opts.Locks != nil {
		acquired, err := s.opts.Locks.Acquire(ctx, tx.TransactionID)
		switch {
		case err != nil:
			telemetry.Logger.Warn("Submission lock unavailable, continuing without it",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(err),
			)
		case !acquired:
			return fail(fmt.Errorf("%w: %s", ErrDuplicateSubmission, tx.TransactionID))
		default:
			defer func() {
				if err := s.opts.Locks.Release(context.WithoutCancel(ctx), tx.TransactionID); err != nil {
					telemetry.Logger.Warn("Failed to release submission lock", zap.Error(err))
				}
			}()
		}
	}

	result, err := s.scoring.Predict(ctx, tx)
	if err != nil {
		return fail(err)
	}

	banner := render.ResultBanner(*result)
	stats := s.state.ApplyClassification(*tx, *result)

	outcome := "normal"
	if result.IsFraud {
		outcome = "fraud"
	}
	telemetry.TestTransactions.WithLabelValues(outcome).Inc()
	telemetry.FraudRate.Set(stats.FraudRate())
	telemetry.Logger.Info("Test transaction classified",
		zap.String("transaction_id", tx.TransactionID),
		zap.Float64("amount", tx.Amount),
		zap.Bool("is_fraud", result.IsFraud),
		zap.Float64("fraud_probability", result.FraudProbability),
		zap.String("risk_level", string(result.RiskLevel)),
	)

	s.afterClassification(ctx, tx, result, stats)

	return &Submission{Transaction: tx, Result: result, Banner: banner, Stats: stats}, nil
}

// afterClassification runs the best-effort side effects. Failures are logged only.
func (s *Submitter) afterClassification(ctx context.Context, tx *models.TestTransaction, result *models.ClassificationResult, stats state.Stats) {
	if s.opts.Publisher != nil {
		if err := s.opts.Publisher.PublishClassification(ctx, tx, result, stats); err != nil {
			telemetry.Logger.Warn("Failed to publish classification",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(err),
			)
		}
	}

	if s.opts.ForwardAlerts && result.IsFraud && s.opts.AlertService != nil {
		if err := s.opts.AlertService.SendAlert(ctx, models.AlertRequest{Transaction: tx, Prediction: result}); err != nil {
			telemetry.Logger.Warn("Failed to forward fraud alert",
				zap.String("transaction_id", tx.TransactionID),
				zap.Error(err),
			)
		}
	}
}
