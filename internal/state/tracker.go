package state

import (
	"math"
	"time"
)

const (
	// MaxTrendPoints bounds the fraud-rate trend; older points are evicted first.
	MaxTrendPoints = 20

	TrendLabelLayout = "15:04:05"
)

// Stats counts classified test transactions for the session.
type Stats struct {
	TotalTransactions int `json:"total_transactions"`
	FraudCount        int `json:"fraud_count"`
	NormalCount       int `json:"normal_count"`
}

// FraudRate is 100*fraud/total rounded to one decimal, or 0 before the first record.
func (s Stats) FraudRate() float64 {
	if s.TotalTransactions == 0 {
		return 0
	}
	return RoundTenth(100 * float64(s.FraudCount) / float64(s.TotalTransactions))
}

// RoundTenth rounds v to one decimal place, half away from zero.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// TrendBuffer keeps labels and values in lockstep.
type TrendBuffer struct {
	labels []string
	data   []float64
	max    int
}

func NewTrendBuffer(max int) *TrendBuffer {
	if max <= 0 {
		max = MaxTrendPoints
	}
	return &TrendBuffer{
		labels: make([]string, 0, max+1),
		data:   make([]float64, 0, max+1),
		max:    max,
	}
}

// Push appends a point and evicts from the front past the bound.
func (b *TrendBuffer) Push(label string, value float64) {
	b.labels = append(b.labels, label)
	b.data = append(b.data, value)
	for len(b.labels) > b.max {
		b.labels = b.labels[1:]
		b.data = b.data[1:]
	}
}

func (b *TrendBuffer) Len() int {
	return len(b.labels)
}

func (b *TrendBuffer) Labels() []string {
	return append([]string(nil), b.labels...)
}

func (b *TrendBuffer) Data() []float64 {
	return append([]float64(nil), b.data...)
}

// Tracker owns the rolling stats and the trend buffer. It is not safe for
// concurrent use; DashboardState serializes access to it.
type Tracker struct {
	stats Stats
	trend *TrendBuffer
	now   func() time.Time
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		trend: NewTrendBuffer(MaxTrendPoints),
		now:   now,
	}
}

// Record counts one classified transaction and appends the new fraud rate to the trend.
func (t *Tracker) Record(isFraud bool) Stats {
	t.stats.TotalTransactions++
	if isFraud {
		t.stats.FraudCount++
	} else {
		t.stats.NormalCount++
	}

	t.trend.Push(t.now().Format(TrendLabelLayout), t.stats.FraudRate())
	return t.stats
}

func (t *Tracker) Stats() Stats {
	return t.stats
}

func (t *Tracker) Trend() *TrendBuffer {
	return t.trend
}
