package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/clients"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/repository"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

type fakeScoring struct {
	mu        sync.Mutex
	healthErr error
	result    *models.ClassificationResult
	err       error
	received  []*models.TestTransaction
}

func (f *fakeScoring) Health(context.Context) error {
	return f.healthErr
}

func (f *fakeScoring) Predict(_ context.Context, tx *models.TestTransaction) (*models.ClassificationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, tx)
	if f.err != nil {
		return nil, f.err
	}
	result := *f.result
	return &result, nil
}

type fakeAlerts struct {
	mu         sync.Mutex
	healthErr  error
	alerts     []models.Alert
	alertsErr  error
	summary    *models.AlertSummary
	summaryErr error
	sent       []models.AlertRequest
	limits     []int
}

func (f *fakeAlerts) Health(context.Context) error {
	return f.healthErr
}

func (f *fakeAlerts) RecentAlerts(_ context.Context, limit int) ([]models.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.alerts, f.alertsErr
}

func (f *fakeAlerts) Summary(context.Context) (*models.AlertSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary == nil {
		return &models.AlertSummary{}, nil
	}
	return f.summary, nil
}

func (f *fakeAlerts) SendAlert(_ context.Context, req models.AlertRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

type fakePublisher struct {
	calls []string
	err   error
}

func (p *fakePublisher) PublishClassification(_ context.Context, tx *models.TestTransaction, _ *models.ClassificationResult, _ state.Stats) error {
	p.calls = append(p.calls, tx.TransactionID)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestHealthPoller_ScoringDownAlertsUp(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	st := state.NewDashboardState(nil)
	poller := NewHealthPoller(st, map[models.ServiceName]HealthChecker{
		models.ServiceScoring: clients.NewScoringClient(slow.URL, 50*time.Millisecond),
		models.ServiceAlerts:  clients.NewAlertClient(ok.URL, time.Second),
	}, nil)

	poller.Poll(context.Background())

	assert.Equal(t, models.HealthUnhealthy, st.Health(models.ServiceScoring).Status)
	assert.Equal(t, models.HealthHealthy, st.Health(models.ServiceAlerts).Status)
}

func TestHealthPoller_RecoversOnNextTick(t *testing.T) {
	st := state.NewDashboardState(nil)
	scoring := &fakeScoring{healthErr: errors.New("connection refused")}
	alerts := &fakeAlerts{healthErr: errors.New("503")}
	poller := NewHealthPoller(st, map[models.ServiceName]HealthChecker{
		models.ServiceScoring: scoring,
		models.ServiceAlerts:  alerts,
	}, nil)

	poller.Poll(context.Background())
	assert.Equal(t, models.HealthUnhealthy, st.Health(models.ServiceScoring).Status)
	assert.Equal(t, models.HealthUnhealthy, st.Health(models.ServiceAlerts).Status)

	scoring.healthErr = nil
	poller.Poll(context.Background())
	assert.Equal(t, models.HealthHealthy, st.Health(models.ServiceScoring).Status)
	assert.Equal(t, models.HealthUnhealthy, st.Health(models.ServiceAlerts).Status)
}

func TestAlertFeedPoller(t *testing.T) {
	st := state.NewDashboardState(nil)
	alerts := &fakeAlerts{
		alerts:  []models.Alert{{TransactionID: "TXN1", Amount: 10, RiskLevel: models.RiskHigh, FraudProbability: 0.9}},
		summary: &models.AlertSummary{TotalAlerts: 1, HighRisk: 1},
	}
	poller := NewAlertFeedPoller(st, alerts, 0, nil)

	poller.Poll(context.Background())
	snap := st.Snapshot()
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, []int{DefaultAlertLimit}, alerts.limits)
	require.NotNil(t, snap.AlertSummary)
	assert.Equal(t, 1, snap.AlertSummary.HighRisk)

	alerts.alerts = nil
	alerts.alertsErr = errors.New("connection refused")
	poller.Poll(context.Background())
	snap = st.Snapshot()
	require.Len(t, snap.Alerts, 1, "failed poll keeps the previous list")
	assert.True(t, snap.AlertsStale)

	alerts.alerts = []models.Alert{}
	alerts.alertsErr = nil
	poller.Poll(context.Background())
	d := render.NewDashboard(st.Snapshot())
	assert.Empty(t, d.Alerts)
	assert.Equal(t, render.AlertsPlaceholder, d.AlertsPlaceholder)
	assert.False(t, d.AlertsStale)
}

func TestAlertFeedPoller_SummaryFailureKeepsAlerts(t *testing.T) {
	st := state.NewDashboardState(nil)
	alerts := &fakeAlerts{
		alerts:     []models.Alert{{TransactionID: "TXN1"}},
		summaryErr: errors.New("404"),
	}
	NewAlertFeedPoller(st, alerts, 5, nil).Poll(context.Background())

	snap := st.Snapshot()
	assert.Len(t, snap.Alerts, 1)
	assert.Nil(t, snap.AlertSummary)
	assert.False(t, snap.AlertsStale)
}

func TestSubmitter_FraudScenario(t *testing.T) {
	st := state.NewDashboardState(fixedClock())
	scoring := &fakeScoring{result: &models.ClassificationResult{IsFraud: true, FraudProbability: 0.87, RiskLevel: models.RiskHigh}}
	alerts := &fakeAlerts{}
	publisher := &fakePublisher{}
	sub := NewSubmitter(st, scoring, SubmitterOptions{
		Publisher:     publisher,
		Locks:         repository.NewInMemorySubmissionLockRepository(),
		AlertService:  alerts,
		ForwardAlerts: true,
		Now:           fixedClock(),
	})

	res, err := sub.Submit(context.Background(), models.TestTransactionInput{Amount: "100.50", Hour: "23", Type: "online", Day: "6"})
	require.NoError(t, err)

	require.Len(t, scoring.received, 1)
	tx := scoring.received[0]
	assert.True(t, bool(tx.IsWeekend))
	assert.True(t, bool(tx.IsNight))
	assert.InDelta(t, math.Log1p(100.50), tx.AmountLog, 1e-12)
	assert.Equal(t, models.NewTestTransactionID(fixedClock()()), tx.TransactionID)

	assert.Equal(t, "FRAUD DETECTED", res.Banner.Title)
	assert.Equal(t, "87.00%", res.Banner.Probability)
	assert.Equal(t, models.RiskHigh, res.Banner.RiskLevel)
	assert.Equal(t, state.Stats{TotalTransactions: 1, FraudCount: 1, NormalCount: 0}, res.Stats)

	d := render.NewDashboard(st.Snapshot())
	assert.Equal(t, "100.0%", d.Stats.FraudRate)
	require.Len(t, d.Stream, 1)
	assert.Equal(t, tx.TransactionID, d.Stream[0].TransactionID)
	assert.Equal(t, []string{"12:00:00"}, d.Chart.Labels)

	assert.Equal(t, []string{tx.TransactionID}, publisher.calls)
	require.Len(t, alerts.sent, 1)
	assert.Equal(t, tx.TransactionID, alerts.sent[0].Transaction.TransactionID)
}

func TestSubmitter_NormalNotForwarded(t *testing.T) {
	st := state.NewDashboardState(nil)
	alerts := &fakeAlerts{}
	sub := NewSubmitter(st, &fakeScoring{result: &models.ClassificationResult{FraudProbability: 0.05, RiskLevel: models.RiskLow}},
		SubmitterOptions{AlertService: alerts, ForwardAlerts: true})

	res, err := sub.Submit(context.Background(), models.TestTransactionInput{Amount: "5", Hour: "12", Type: "atm", Day: "2"})
	require.NoError(t, err)
	assert.Equal(t, "NORMAL TRANSACTION", res.Banner.Title)
	assert.Empty(t, alerts.sent)
	assert.Equal(t, state.Stats{TotalTransactions: 1, NormalCount: 1}, st.Stats())
}

func TestSubmitter_ScoringFailureLeavesStateUntouched(t *testing.T) {
	st := state.NewDashboardState(nil)
	publisher := &fakePublisher{}
	sub := NewSubmitter(st, &fakeScoring{err: errors.New("ml-service request failed: connection refused")},
		SubmitterOptions{Publisher: publisher})

	res, err := sub.Submit(context.Background(), models.TestTransactionInput{Amount: "5", Hour: "12", Type: "atm", Day: "2"})
	require.Error(t, err)
	assert.Equal(t, "error", res.Banner.Kind)
	assert.Equal(t, "Error: ml-service request failed: connection refused", res.Banner.Message)

	snap := st.Snapshot()
	assert.Equal(t, state.Stats{}, snap.Stats)
	assert.Empty(t, snap.Stream)
	assert.Empty(t, snap.TrendData)
	assert.Empty(t, publisher.calls)
}

func TestSubmitter_InvalidInput(t *testing.T) {
	st := state.NewDashboardState(nil)
	scoring := &fakeScoring{result: &models.ClassificationResult{RiskLevel: models.RiskLow}}
	sub := NewSubmitter(st, scoring, SubmitterOptions{})

	res, err := sub.Submit(context.Background(), models.TestTransactionInput{Amount: "lots", Hour: "12", Type: "atm", Day: "2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.Equal(t, "error", res.Banner.Kind)
	assert.Empty(t, scoring.received)
}

func TestSubmitter_DuplicateIDRejected(t *testing.T) {
	st := state.NewDashboardState(nil)
	locks := repository.NewInMemorySubmissionLockRepository()
	scoring := &fakeScoring{result: &models.ClassificationResult{RiskLevel: models.RiskLow}}
	sub := NewSubmitter(st, scoring, SubmitterOptions{Locks: locks})

	tx, err := models.NewTestTransaction("TEST_1", 1, 1, 1, "atm")
	require.NoError(t, err)

	ok, err := locks.Acquire(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = sub.SubmitTransaction(context.Background(), tx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSubmission))
	assert.Empty(t, scoring.received)

	require.NoError(t, locks.Release(context.Background(), tx.TransactionID))
	_, err = sub.SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)

	// released again after the submission finished
	ok, err = locks.Acquire(context.Background(), tx.TransactionID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmitter_PublisherFailureStillSucceeds(t *testing.T) {
	st := state.NewDashboardState(nil)
	sub := NewSubmitter(st, &fakeScoring{result: &models.ClassificationResult{IsFraud: true, FraudProbability: 0.9, RiskLevel: models.RiskHigh}},
		SubmitterOptions{Publisher: &fakePublisher{err: errors.New("broker down")}})

	_, err := sub.Submit(context.Background(), models.TestTransactionInput{Amount: "5", Hour: "12", Type: "atm", Day: "2"})
	require.NoError(t, err)
	assert.Equal(t, 1, st.Stats().FraudCount)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	st := state.NewDashboardState(nil)
	alerts := &fakeAlerts{alerts: []models.Alert{}}
	runner := NewRunner(st, &fakeScoring{}, alerts, 5, Intervals{Health: 10 * time.Millisecond, Alerts: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		snap := st.Snapshot()
		return snap.AlertsLoaded && snap.ScoringHealth.Status == models.HealthHealthy && snap.AlertHealth.Status == models.HealthHealthy
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestSimulator_Generate(t *testing.T) {
	sim := NewSimulator(nil, 42)
	for i := 0; i < 200; i++ {
		tx := sim.Generate()
		assert.GreaterOrEqual(t, tx.Amount, 0.0)
		assert.GreaterOrEqual(t, tx.Hour, 0)
		assert.LessOrEqual(t, tx.Hour, 23)
		assert.Contains(t, models.TransactionTypes, tx.TransactionType)
		assert.Equal(t, models.IsNightHour(tx.Hour), bool(tx.IsNight))
		assert.Equal(t, models.IsWeekendDay(tx.DayOfWeek), bool(tx.IsWeekend))
	}
}

func TestSimulator_Run(t *testing.T) {
	st := state.NewDashboardState(nil)
	scoring := &fakeScoring{result: &models.ClassificationResult{IsFraud: true, FraudProbability: 0.9, RiskLevel: models.RiskHigh}}
	sim := NewSimulator(NewSubmitter(st, scoring, SubmitterOptions{}), 1)

	var reported []int
	res := sim.Run(context.Background(), 3, 0, func(n int, _ *Submission, err error) {
		assert.NoError(t, err)
		reported = append(reported, n)
	})

	assert.Equal(t, SimulationResult{Total: 3, Fraud: 3}, res)
	assert.InDelta(t, 100.0, res.FraudRate(), 1e-9)
	assert.Equal(t, []int{1, 2, 3}, reported)
	assert.Equal(t, 3, st.Stats().TotalTransactions)
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	st := state.NewDashboardState(nil)
	scoring := &fakeScoring{err: errors.New("down")}
	sim := NewSimulator(NewSubmitter(st, scoring, SubmitterOptions{}), 1)

	ctx, cancel := context.WithCancel(context.Background())
	res := sim.Run(ctx, 100, time.Hour, func(int, *Submission, error) { cancel() })

	assert.Equal(t, SimulationResult{Total: 1, Failed: 1}, res)
	assert.Zero(t, res.FraudRate())
}
