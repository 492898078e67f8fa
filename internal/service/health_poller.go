package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

// HealthChecker is anything with a health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthPoller probes every service on each tick. Probes are independent:
// one service failing never changes another's indicator.
type HealthPoller struct {
	state   *state.DashboardState
	targets map[models.ServiceName]HealthChecker
	now     func() time.Time
}

func NewHealthPoller(st *state.DashboardState, targets map[models.ServiceName]HealthChecker, now func() time.Time) *HealthPoller {
	if now == nil {
		now = time.Now
	}
	return &HealthPoller{state: st, targets: targets, now: now}
}

// Poll probes all targets concurrently and returns once every indicator is updated.
func (p *HealthPoller) Poll(ctx context.Context) {
	var wg sync.WaitGroup
	for name, target := range p.targets {
		wg.Add(1)
		go func(name models.ServiceName, target HealthChecker) {
			defer wg.Done()
			p.probe(ctx, name, target)
		}(name, target)
	}
	wg.Wait()
}

func (p *HealthPoller) probe(ctx context.Context, name models.ServiceName, target HealthChecker) {
	err := target.Health(ctx)
	p.state.SetHealth(name, err, p.now())

	if err != nil {
		telemetry.HealthChecks.WithLabelValues(string(name), string(models.HealthUnhealthy)).Inc()
		telemetry.Logger.Debug("Health check failed",
			zap.String("service", string(name)),
			zap.Error(err),
		)
		return
	}
	telemetry.HealthChecks.WithLabelValues(string(name), string(models.HealthHealthy)).Inc()
}

// Run polls immediately and then on every interval until ctx is done.
func (p *HealthPoller) Run(ctx context.Context, interval time.Duration) {
	runEvery(ctx, interval, p.Poll)
}

func runEvery(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
