package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
)

// stepClock advances one second per call so every trend label is distinct.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestTracker_RecordInvariants(t *testing.T) {
	pattern := []bool{true, false, false, true, false, false, false}
	tracker := NewTracker(stepClock())

	fraud := 0
	for i := 0; i < 30; i++ {
		isFraud := pattern[i%len(pattern)]
		if isFraud {
			fraud++
		}
		stats := tracker.Record(isFraud)

		n := i + 1
		assert.Equal(t, n, stats.TotalTransactions)
		assert.Equal(t, stats.TotalTransactions, stats.FraudCount+stats.NormalCount)
		assert.Equal(t, fraud, stats.FraudCount)
		assert.InDelta(t, RoundTenth(100*float64(fraud)/float64(n)), stats.FraudRate(), 1e-9)
		assert.Equal(t, len(tracker.Trend().Labels()), len(tracker.Trend().Data()))
		assert.LessOrEqual(t, tracker.Trend().Len(), MaxTrendPoints)
	}
}

func TestStats_FraudRate(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{name: "empty", stats: Stats{}, want: 0},
		{name: "all fraud", stats: Stats{TotalTransactions: 1, FraudCount: 1}, want: 100},
		{name: "two thirds", stats: Stats{TotalTransactions: 3, FraudCount: 2, NormalCount: 1}, want: 66.7},
		{name: "one third", stats: Stats{TotalTransactions: 3, FraudCount: 1, NormalCount: 2}, want: 33.3},
		{name: "one in seven", stats: Stats{TotalTransactions: 7, FraudCount: 1, NormalCount: 6}, want: 14.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.stats.FraudRate(), 1e-9)
		})
	}
}

func TestTrendBuffer_EvictsOldestFirst(t *testing.T) {
	clock := stepClock()
	tracker := NewTracker(clock)

	var labels []string
	ref := stepClock()
	for i := 0; i < 25; i++ {
		tracker.Record(i%2 == 0)
		labels = append(labels, ref().Format(TrendLabelLayout))
	}

	trend := tracker.Trend()
	require.Equal(t, MaxTrendPoints, trend.Len())
	assert.Equal(t, labels[5:], trend.Labels())
	assert.Len(t, trend.Data(), MaxTrendPoints)
}

func TestStream_KeepsMostRecentTen(t *testing.T) {
	stream := NewStream(MaxStreamEntries)
	for i := 1; i <= 12; i++ {
		stream.Append(models.TestTransaction{TransactionID: fmt.Sprintf("TEST_%d", i)}, models.ClassificationResult{})
	}

	entries := stream.Entries()
	require.Len(t, entries, MaxStreamEntries)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("TEST_%d", 12-i), entry.Transaction.TransactionID)
	}
}

func TestDashboardState_HealthIsIndependent(t *testing.T) {
	s := NewDashboardState(stepClock())
	now := time.Now()

	s.SetHealth(models.ServiceScoring, errors.New("connection refused"), now)
	s.SetHealth(models.ServiceAlerts, nil, now)

	assert.Equal(t, models.HealthUnhealthy, s.Health(models.ServiceScoring).Status)
	assert.Equal(t, "connection refused", s.Health(models.ServiceScoring).Error)
	assert.Equal(t, models.HealthHealthy, s.Health(models.ServiceAlerts).Status)
}

func TestDashboardState_AlertsStaleKeepsPrevious(t *testing.T) {
	s := NewDashboardState(stepClock())
	s.ReplaceAlerts([]models.Alert{{TransactionID: "TXN1"}}, time.Now())

	s.MarkAlertsStale(errors.New("timeout"))

	snap := s.Snapshot()
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, "TXN1", snap.Alerts[0].TransactionID)
	assert.True(t, snap.AlertsStale)
	assert.Equal(t, "timeout", snap.AlertsError)

	s.ReplaceAlerts(nil, time.Now())
	snap = s.Snapshot()
	assert.Empty(t, snap.Alerts)
	assert.True(t, snap.AlertsLoaded)
	assert.False(t, snap.AlertsStale)
}

func TestDashboardState_ApplyClassification(t *testing.T) {
	s := NewDashboardState(stepClock())
	tx := models.TestTransaction{TransactionID: "TEST_1"}

	stats := s.ApplyClassification(tx, models.ClassificationResult{IsFraud: true, FraudProbability: 0.87, RiskLevel: models.RiskHigh})

	assert.Equal(t, Stats{TotalTransactions: 1, FraudCount: 1}, stats)
	snap := s.Snapshot()
	require.Len(t, snap.Stream, 1)
	assert.Equal(t, "TEST_1", snap.Stream[0].Transaction.TransactionID)
	assert.InDelta(t, 100.0, snap.FraudRate, 1e-9)
	assert.Equal(t, []float64{100}, snap.TrendData)
}

func TestDashboardState_ConcurrentUpdates(t *testing.T) {
	s := NewDashboardState(stepClock())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			s.ApplyClassification(models.TestTransaction{TransactionID: fmt.Sprintf("TEST_%d", i)}, models.ClassificationResult{IsFraud: i%3 == 0})
		}(i)
		go func() {
			defer wg.Done()
			s.SetHealth(models.ServiceScoring, nil, time.Now())
		}()
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			assert.Equal(t, snap.Stats.TotalTransactions, snap.Stats.FraudCount+snap.Stats.NormalCount)
			assert.Equal(t, len(snap.TrendLabels), len(snap.TrendData))
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, 50, snap.Stats.TotalTransactions)
	assert.Equal(t, 17, snap.Stats.FraudCount)
	assert.Len(t, snap.Stream, MaxStreamEntries)
	assert.Len(t, snap.TrendData, MaxTrendPoints)
}

func TestDashboardState_SubscribeSignalsChanges(t *testing.T) {
	s := NewDashboardState(stepClock())
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Record(false)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected change signal")
	}

	cancel()
	s.Record(true)
	select {
	case <-ch:
		t.Fatal("unexpected signal after cancel")
	default:
	}
}

func TestDashboardState_SessionID(t *testing.T) {
	a := NewDashboardState(nil)
	b := NewDashboardState(nil)
	assert.NotEmpty(t, a.SessionID())
	assert.NotEqual(t, a.SessionID(), b.SessionID())
	assert.Equal(t, models.HealthUnknown, a.Health(models.ServiceAlerts).Status)
}
