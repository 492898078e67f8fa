package service

import (
	"context"
	"sync"
	"time"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/interfaces"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

// Intervals of the two background pollers.
type Intervals struct {
	Health time.Duration
	Alerts time.Duration
}

// Runner owns the background pollers of one dashboard.
type Runner struct {
	Health    *HealthPoller
	Alerts    *AlertFeedPoller
	intervals Intervals
}

func NewRunner(st *state.DashboardState, scoring interfaces.ScoringService, alerts interfaces.AlertService, alertLimit int, intervals Intervals) *Runner {
	if intervals.Health <= 0 {
		intervals.Health = 5 * time.Second
	}
	if intervals.Alerts <= 0 {
		intervals.Alerts = 10 * time.Second
	}
	return &Runner{
		Health: NewHealthPoller(st, map[models.ServiceName]HealthChecker{
			models.ServiceScoring: scoring,
			models.ServiceAlerts:  alerts,
		}, nil),
		Alerts:    NewAlertFeedPoller(st, alerts, alertLimit, nil),
		intervals: intervals,
	}
}

// Run blocks until ctx is cancelled and both pollers have stopped.
func (r *Runner) Run(ctx context.Context) {
	telemetry.Logger.Info("Starting pollers")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.Health.Run(ctx, r.intervals.Health)
	}()
	go func() {
		defer wg.Done()
		r.Alerts.Run(ctx, r.intervals.Alerts)
	}()
	wg.Wait()

	telemetry.Logger.Info("Pollers stopped")
}
