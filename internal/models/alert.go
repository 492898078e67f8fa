package models

import "time"

// Alert is one fraud alert as returned by the alert service.
type Alert struct {
	AlertID          string    `json:"alert_id,omitempty"`
	Timestamp        string    `json:"timestamp,omitempty"`
	TransactionID    string    `json:"transaction_id"`
	Amount           float64   `json:"amount"`
	FraudProbability float64   `json:"fraud_probability"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// AlertSummary counts alerts by risk level.
type AlertSummary struct {
	TotalAlerts int `json:"total_alerts"`
	HighRisk    int `json:"high_risk"`
	MediumRisk  int `json:"medium_risk"`
	LowRisk     int `json:"low_risk"`
}

// AlertRequest is the payload accepted by the alert service's alert endpoint.
type AlertRequest struct {
	Transaction *TestTransaction      `json:"transaction"`
	Prediction  *ClassificationResult `json:"prediction"`
}

type ServiceName string

const (
	ServiceScoring ServiceName = "ml-service"
	ServiceAlerts  ServiceName = "alert-service"
)

type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// ServiceHealth is the last probe outcome for one external service.
type ServiceHealth struct {
	Service   ServiceName  `json:"service"`
	Status    HealthStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	CheckedAt time.Time    `json:"checked_at"`
}
