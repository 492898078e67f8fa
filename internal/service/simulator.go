package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

// DefaultSuspiciousRatio is the share of generated transactions drawn from the
// high-amount profile.
const DefaultSuspiciousRatio = 0.1

// typeWeights mirror the traffic mix the scoring model was trained on.
var typeWeights = []struct {
	name   string
	weight float64
}{
	{"online", 0.5},
	{"in-store", 0.4},
	{"atm", 0.1},
}

// SimulationResult summarizes one simulator run.
type SimulationResult struct {
	Total  int
	Fraud  int
	Failed int
}

// FraudRate is the percentage of scored transactions flagged as fraud.
func (r SimulationResult) FraudRate() float64 {
	scored := r.Total - r.Failed
	if scored <= 0 {
		return 0
	}
	return float64(r.Fraud) / float64(scored) * 100
}

// Simulator feeds random test transactions through a Submitter.
type Simulator struct {
	submitter       *Submitter
	rng             *rand.Rand
	suspiciousRatio float64
	now             func() time.Time
}

func NewSimulator(submitter *Submitter, seed int64) *Simulator {
	return &Simulator{
		submitter:       submitter,
		rng:             rand.New(rand.NewSource(seed)),
		suspiciousRatio: DefaultSuspiciousRatio,
		now:             time.Now,
	}
}

// Generate draws one transaction. Normal traffic is gamma(2, 50) dollars at any
// hour; suspicious traffic is gamma(3, 800) dollars, mostly at night.
func (s *Simulator) Generate() *models.TestTransaction {
	var amount float64
	var hour int
	if s.rng.Float64() < s.suspiciousRatio {
		amount = s.gamma(3, 800)
		hour = (22 + s.rng.Intn(9)) % 24
	} else {
		amount = s.gamma(2, 50)
		hour = s.rng.Intn(24)
	}
	amount = float64(int64(amount*100)) / 100

	tx, err := models.NewTestTransaction(models.NewTestTransactionID(s.now()), amount, hour, s.rng.Intn(7), s.pickType())
	if err != nil {
		// Generated values are always in range.
		panic(err)
	}
	return tx
}

// Run submits count transactions, waiting delay between them, and calls report
// after each one. It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, count int, delay time.Duration, report func(n int, sub *Submission, err error)) SimulationResult {
	var res SimulationResult
	for i := 1; i <= count; i++ {
		if ctx.Err() != nil {
			break
		}

		sub, err := s.submitter.SubmitTransaction(ctx, s.Generate())
		res.Total++
		switch {
		case err != nil:
			res.Failed++
		case sub.Result.IsFraud:
			res.Fraud++
		}
		if report != nil {
			report(i, sub, err)
		}

		if i < count && delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
	}

	telemetry.Logger.Info("Simulation finished",
		zap.Int("total", res.Total),
		zap.Int("fraud", res.Fraud),
		zap.Int("failed", res.Failed),
	)
	return res
}

// gamma samples an integer-shape gamma distribution as a sum of exponentials.
func (s *Simulator) gamma(shape int, scale float64) float64 {
	var sum float64
	for i := 0; i < shape; i++ {
		sum += s.rng.ExpFloat64()
	}
	return sum * scale
}

func (s *Simulator) pickType() string {
	r := s.rng.Float64()
	for _, t := range typeWeights {
		if r < t.weight {
			return t.name
		}
		r -= t.weight
	}
	return typeWeights[len(typeWeights)-1].name
}
