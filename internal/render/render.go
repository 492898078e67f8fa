// Package render projects dashboard state onto view models. It holds no state.
package render

import (
	"strconv"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

const (
	AlertsPlaceholder        = "No alerts yet"
	AlertsLoadingPlaceholder = "Loading alerts..."
	StreamPlaceholder        = "Waiting for transactions..."

	FraudTitle  = "FRAUD DETECTED"
	NormalTitle = "NORMAL TRANSACTION"

	ChartLabel = "Fraud Rate (%)"
)

type Badge struct {
	Label  string              `json:"label"`
	Status models.HealthStatus `json:"status"`
	Class  string              `json:"class"`
	Error  string              `json:"error,omitempty"`
}

type Banner struct {
	Kind        string           `json:"kind"`
	Class       string           `json:"class"`
	Title       string           `json:"title"`
	Probability string           `json:"probability,omitempty"`
	RiskLevel   models.RiskLevel `json:"risk_level,omitempty"`
	RiskClass   string           `json:"risk_class,omitempty"`
	Message     string           `json:"message,omitempty"`
}

type StatsView struct {
	Total     string `json:"total"`
	Fraud     string `json:"fraud"`
	Normal    string `json:"normal"`
	FraudRate string `json:"fraud_rate"`
}

type ChartView struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	YMin   float64   `json:"y_min"`
	YMax   float64   `json:"y_max"`
	Suffix string    `json:"tick_suffix"`
}

type StreamItem struct {
	TransactionID string           `json:"transaction_id"`
	Amount        string           `json:"amount"`
	Type          string           `json:"type"`
	RiskLevel     models.RiskLevel `json:"risk_level"`
	RiskClass     string           `json:"risk_class"`
	Probability   string           `json:"probability"`
	Class         string           `json:"class"`
}

type AlertItem struct {
	TransactionID string           `json:"transaction_id"`
	Amount        string           `json:"amount"`
	RiskLevel     models.RiskLevel `json:"risk_level"`
	RiskClass     string           `json:"risk_class"`
	Probability   string           `json:"probability"`
}

type SummaryView struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Dashboard is everything the page, the terminal view and the JSON API show.
type Dashboard struct {
	SessionID string `json:"session_id"`
	Version   uint64 `json:"version"`

	MLStatus    Badge `json:"ml_status"`
	AlertStatus Badge `json:"alert_status"`

	Stats StatsView `json:"stats"`
	Chart ChartView `json:"chart"`

	Stream            []StreamItem `json:"stream"`
	StreamPlaceholder string       `json:"stream_placeholder,omitempty"`

	Alerts            []AlertItem  `json:"alerts"`
	AlertsPlaceholder string       `json:"alerts_placeholder,omitempty"`
	AlertsStale       bool         `json:"alerts_stale"`
	AlertsNote        string       `json:"alerts_note,omitempty"`
	AlertSummary      *SummaryView `json:"alert_summary,omitempty"`
}

// NewDashboard projects a snapshot onto the dashboard view.
func NewDashboard(snap state.Snapshot) Dashboard {
	d := Dashboard{
		SessionID:   snap.SessionID,
		Version:     snap.Version,
		MLStatus:    HealthBadge("ML Service", snap.ScoringHealth),
		AlertStatus: HealthBadge("Alert Service", snap.AlertHealth),
		Stats:       NewStatsView(snap.Stats),
		Chart: ChartView{
			Label:  ChartLabel,
			Labels: nonNil(snap.TrendLabels),
			Data:   nonNilFloats(snap.TrendData),
			YMin:   0,
			YMax:   100,
			Suffix: "%",
		},
		Stream: make([]StreamItem, 0, len(snap.Stream)),
		Alerts: make([]AlertItem, 0, len(snap.Alerts)),
	}

	for _, entry := range snap.Stream {
		d.Stream = append(d.Stream, NewStreamItem(entry))
	}
	if len(d.Stream) == 0 {
		d.StreamPlaceholder = StreamPlaceholder
	}

	for _, alert := range snap.Alerts {
		d.Alerts = append(d.Alerts, NewAlertItem(alert))
	}
	switch {
	case !snap.AlertsLoaded:
		d.AlertsPlaceholder = AlertsLoadingPlaceholder
	case len(d.Alerts) == 0:
		d.AlertsPlaceholder = AlertsPlaceholder
	}
	if snap.AlertsStale {
		d.AlertsStale = true
		d.AlertsNote = "stale"
		if !snap.AlertsUpdatedAt.IsZero() {
			d.AlertsNote = "stale since " + snap.AlertsUpdatedAt.Format(state.TrendLabelLayout)
		}
	}

	if s := snap.AlertSummary; s != nil {
		d.AlertSummary = &SummaryView{Total: s.TotalAlerts, High: s.HighRisk, Medium: s.MediumRisk, Low: s.LowRisk}
	}
	return d
}

func HealthBadge(name string, h models.ServiceHealth) Badge {
	b := Badge{Label: name + ": ●", Status: h.Status, Error: h.Error}
	switch h.Status {
	case models.HealthHealthy:
		b.Class = "bg-success"
	case models.HealthUnhealthy:
		b.Class = "bg-danger"
	default:
		b.Status = models.HealthUnknown
		b.Class = "bg-secondary"
	}
	return b
}

func NewStatsView(s state.Stats) StatsView {
	rate := "0%"
	if s.TotalTransactions > 0 {
		rate = Rate(s.FraudRate())
	}
	return StatsView{
		Total:     strconv.Itoa(s.TotalTransactions),
		Fraud:     strconv.Itoa(s.FraudCount),
		Normal:    strconv.Itoa(s.NormalCount),
		FraudRate: rate,
	}
}

// ResultBanner is shown after a test transaction is classified.
func ResultBanner(result models.ClassificationResult) Banner {
	b := Banner{
		Kind:        "normal",
		Class:       "success",
		Title:       NormalTitle,
		Probability: Percent(result.FraudProbability, 2),
		RiskLevel:   result.RiskLevel,
		RiskClass:   RiskClass(result.RiskLevel),
	}
	if result.IsFraud {
		b.Kind = "fraud"
		b.Class = "danger"
		b.Title = FraudTitle
	}
	return b
}

// ErrorBanner is shown inline when a submission fails.
func ErrorBanner(err error) Banner {
	return Banner{
		Kind:    "error",
		Class:   "danger",
		Title:   "Error",
		Message: "Error: " + err.Error(),
	}
}

func NewStreamItem(entry state.StreamEntry) StreamItem {
	class := "normal"
	if entry.Result.IsFraud {
		class = "fraud"
	}
	return StreamItem{
		TransactionID: entry.Transaction.TransactionID,
		Amount:        Currency(entry.Transaction.Amount),
		Type:          entry.Transaction.TransactionType,
		RiskLevel:     entry.Result.RiskLevel,
		RiskClass:     RiskClass(entry.Result.RiskLevel),
		Probability:   Percent(entry.Result.FraudProbability, 1),
		Class:         class,
	}
}

func NewAlertItem(alert models.Alert) AlertItem {
	return AlertItem{
		TransactionID: alert.TransactionID,
		Amount:        Currency(alert.Amount),
		RiskLevel:     alert.RiskLevel,
		RiskClass:     RiskClass(alert.RiskLevel),
		Probability:   Percent(alert.FraudProbability, 1),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
