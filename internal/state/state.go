// Package state holds the in-memory dashboard state shared by the pollers,
// the test transaction pipeline and every view.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
)

// Snapshot is a consistent, detached copy of the dashboard state.
type Snapshot struct {
	SessionID string `json:"session_id"`
	Version   uint64 `json:"version"`

	ScoringHealth models.ServiceHealth `json:"scoring_health"`
	AlertHealth   models.ServiceHealth `json:"alert_health"`

	Stats       Stats     `json:"stats"`
	FraudRate   float64   `json:"fraud_rate"`
	TrendLabels []string  `json:"trend_labels"`
	TrendData   []float64 `json:"trend_data"`

	Stream []StreamEntry `json:"stream"`

	Alerts          []models.Alert       `json:"alerts"`
	AlertsLoaded    bool                 `json:"alerts_loaded"`
	AlertsStale     bool                 `json:"alerts_stale"`
	AlertsError     string               `json:"alerts_error,omitempty"`
	AlertsUpdatedAt time.Time            `json:"alerts_updated_at"`
	AlertSummary    *models.AlertSummary `json:"alert_summary,omitempty"`
}

// DashboardState is the single session-scoped state of one dashboard process.
// It lives from startup to shutdown and has no reset path.
type DashboardState struct {
	sessionID string

	mu      sync.RWMutex
	version uint64
	tracker *Tracker
	stream  *Stream
	health  map[models.ServiceName]models.ServiceHealth

	alerts          []models.Alert
	alertsLoaded    bool
	alertsStale     bool
	alertsErr       string
	alertsUpdatedAt time.Time
	alertSummary    *models.AlertSummary

	subMu       sync.Mutex
	subscribers map[chan struct{}]struct{}
}

func NewDashboardState(now func() time.Time) *DashboardState {
	return &DashboardState{
		sessionID: uuid.NewString(),
		tracker:   NewTracker(now),
		stream:    NewStream(MaxStreamEntries),
		health: map[models.ServiceName]models.ServiceHealth{
			models.ServiceScoring: {Service: models.ServiceScoring, Status: models.HealthUnknown},
			models.ServiceAlerts:  {Service: models.ServiceAlerts, Status: models.HealthUnknown},
		},
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (s *DashboardState) SessionID() string {
	return s.sessionID
}

// SetHealth records one probe outcome. A nil err means the service answered 2xx.
func (s *DashboardState) SetHealth(service models.ServiceName, err error, at time.Time) {
	h := models.ServiceHealth{
		Service:   service,
		Status:    models.HealthHealthy,
		CheckedAt: at,
	}
	if err != nil {
		h.Status = models.HealthUnhealthy
		h.Error = err.Error()
	}

	s.mu.Lock()
	s.health[service] = h
	s.version++
	s.mu.Unlock()

	s.notify()
}

func (s *DashboardState) Health(service models.ServiceName) models.ServiceHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.health[service]; ok {
		return h
	}
	return models.ServiceHealth{Service: service, Status: models.HealthUnknown}
}

// ReplaceAlerts swaps the displayed alert list for a freshly fetched one.
func (s *DashboardState) ReplaceAlerts(alerts []models.Alert, at time.Time) {
	s.mu.Lock()
	s.alerts = append([]models.Alert(nil), alerts...)
	s.alertsLoaded = true
	s.alertsStale = false
	s.alertsErr = ""
	s.alertsUpdatedAt = at
	s.version++
	s.mu.Unlock()

	s.notify()
}

// MarkAlertsStale keeps the previous alert list and flags it as out of date.
func (s *DashboardState) MarkAlertsStale(err error) {
	s.mu.Lock()
	s.alertsStale = true
	if err != nil {
		s.alertsErr = err.Error()
	}
	s.version++
	s.mu.Unlock()

	s.notify()
}

func (s *DashboardState) SetAlertSummary(summary models.AlertSummary) {
	s.mu.Lock()
	s.alertSummary = &summary
	s.version++
	s.mu.Unlock()

	s.notify()
}

// AppendTransaction adds a classified transaction to the stream.
func (s *DashboardState) AppendTransaction(tx models.TestTransaction, result models.ClassificationResult) {
	s.mu.Lock()
	s.stream.Append(tx, result)
	s.version++
	s.mu.Unlock()

	s.notify()
}

// Record updates the rolling stats and the trend.
func (s *DashboardState) Record(isFraud bool) Stats {
	s.mu.Lock()
	stats := s.tracker.Record(isFraud)
	s.version++
	s.mu.Unlock()

	s.notify()
	return stats
}

// ApplyClassification appends to the stream and then records the stats under
// one lock, so no snapshot sees one without the other.
func (s *DashboardState) ApplyClassification(tx models.TestTransaction, result models.ClassificationResult) Stats {
	s.mu.Lock()
	s.stream.Append(tx, result)
	stats := s.tracker.Record(result.IsFraud)
	s.version++
	s.mu.Unlock()

	s.notify()
	return stats
}

func (s *DashboardState) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Stats()
}

func (s *DashboardState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.tracker.Stats()
	snap := Snapshot{
		SessionID:       s.sessionID,
		Version:         s.version,
		ScoringHealth:   s.health[models.ServiceScoring],
		AlertHealth:     s.health[models.ServiceAlerts],
		Stats:           stats,
		FraudRate:       stats.FraudRate(),
		TrendLabels:     s.tracker.Trend().Labels(),
		TrendData:       s.tracker.Trend().Data(),
		Stream:          s.stream.Entries(),
		Alerts:          append([]models.Alert(nil), s.alerts...),
		AlertsLoaded:    s.alertsLoaded,
		AlertsStale:     s.alertsStale,
		AlertsError:     s.alertsErr,
		AlertsUpdatedAt: s.alertsUpdatedAt,
	}
	if s.alertSummary != nil {
		summary := *s.alertSummary
		snap.AlertSummary = &summary
	}
	return snap
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce; a slow reader only sees that something changed.
func (s *DashboardState) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, ch)
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *DashboardState) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
