package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/interfaces"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

const DefaultAlertLimit = 5

// AlertFeedPoller refreshes the recent alert list and the alert summary.
type AlertFeedPoller struct {
	state  *state.DashboardState
	alerts interfaces.AlertService
	limit  int
	now    func() time.Time
}

func NewAlertFeedPoller(st *state.DashboardState, alerts interfaces.AlertService, limit int, now func() time.Time) *AlertFeedPoller {
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	if now == nil {
		now = time.Now
	}
	return &AlertFeedPoller{state: st, alerts: alerts, limit: limit, now: now}
}

// Poll replaces the alert list on success. On failure the previous list stays
// on screen and is flagged stale.
func (p *AlertFeedPoller) Poll(ctx context.Context) {
	alerts, err := p.alerts.RecentAlerts(ctx, p.limit)
	if err != nil {
		telemetry.AlertPolls.WithLabelValues("error").Inc()
		telemetry.Logger.Warn("Error loading alerts", zap.Error(err))
		p.state.MarkAlertsStale(err)
		return
	}
	telemetry.AlertPolls.WithLabelValues("ok").Inc()
	p.state.ReplaceAlerts(alerts, p.now())

	summary, err := p.alerts.Summary(ctx)
	if err != nil {
		telemetry.Logger.Debug("Error loading alert summary", zap.Error(err))
		return
	}
	p.state.SetAlertSummary(*summary)
}

func (p *AlertFeedPoller) Run(ctx context.Context, interval time.Duration) {
	runEvery(ctx, interval, p.Poll)
}
