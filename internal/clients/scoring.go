package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
)

// ScoringClient calls the ML fraud scoring service.
type ScoringClient struct {
	baseClient
}

func NewScoringClient(baseURL string, timeout time.Duration) *ScoringClient {
	return &ScoringClient{baseClient: newBaseClient(string(models.ServiceScoring), baseURL, timeout)}
}

// Health returns nil when the service answers its health check with 2xx.
func (c *ScoringClient) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
}

// Predict scores one test transaction.
func (c *ScoringClient) Predict(ctx context.Context, tx *models.TestTransaction) (*models.ClassificationResult, error) {
	var result models.ClassificationResult
	if err := c.do(ctx, "predict", http.MethodPost, "/predict", tx, &result); err != nil {
		return nil, err
	}
	if result.FraudProbability < 0 || result.FraudProbability > 1 {
		return nil, fmt.Errorf("%w: fraud probability %v out of range", ErrMalformedResponse, result.FraudProbability)
	}
	if result.RiskLevel == "" {
		return nil, fmt.Errorf("%w: missing risk level", ErrMalformedResponse)
	}
	return &result, nil
}
