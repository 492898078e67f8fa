package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/clients"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/config"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/events"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/interfaces"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/repository"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/telemetry"
)

// app holds everything a command needs to score test transactions.
type app struct {
	cfg       *config.Config
	state     *state.DashboardState
	scoring   *clients.ScoringClient
	alerts    *clients.AlertClient
	submitter *service.Submitter
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, forwardAlerts bool) (*app, error) {
	a := &app{
		cfg:     cfg,
		state:   state.NewDashboardState(nil),
		scoring: clients.NewScoringClient(cfg.ScoringURL, cfg.HTTPTimeout),
		alerts:  clients.NewAlertClient(cfg.AlertsURL, cfg.HTTPTimeout),
	}

	locks, err := a.connectLocks(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := a.connectPublishers()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.submitter = service.NewSubmitter(a.state, a.scoring, service.SubmitterOptions{
		Publisher:     publisher,
		Locks:         locks,
		AlertService:  a.alerts,
		ForwardAlerts: forwardAlerts,
	})
	return a, nil
}

// connectLocks uses Redis when configured and an in-process lock otherwise.
func (a *app) connectLocks(ctx context.Context) (interfaces.SubmissionLockRepository, error) {
	if a.cfg.RedisURL == "" {
		return repository.NewInMemorySubmissionLockRepository(), nil
	}

	opts := &redis.Options{Addr: a.cfg.RedisURL}
	if strings.Contains(a.cfg.RedisURL, "://") {
		parsed, err := redis.ParseURL(a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis.url: %w", err)
		}
		opts = parsed
	}
	redisClient := redis.NewClient(opts)
	a.closers = append(a.closers, redisClient.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		telemetry.Logger.Warn("Redis unreachable, submission lock will retry per request",
			zap.String("addr", opts.Addr),
			zap.Error(err),
		)
	} else {
		telemetry.Logger.Info("Connected to Redis", zap.String("addr", opts.Addr))
	}
	return repository.NewSubmissionLockRepository(redisClient), nil
}

func (a *app) connectPublishers() (interfaces.EventPublisher, error) {
	var publishers []events.Publisher

	if len(a.cfg.KafkaBrokers) > 0 {
		publishers = append(publishers, events.NewKafkaPublisher(events.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)))
		telemetry.Logger.Info("Publishing classifications to Kafka",
			zap.Strings("brokers", a.cfg.KafkaBrokers),
			zap.String("topic", a.cfg.KafkaTopic),
		)
	}

	if a.cfg.NatsURL != "" {
		nc, err := events.ConnectNATS(a.cfg.NatsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publishers = append(publishers, events.NewNATSPublisher(nc))
		telemetry.Logger.Info("Publishing stats to NATS", zap.String("url", a.cfg.NatsURL))
	}

	if len(publishers) == 0 {
		return nil, nil
	}
	multi := events.NewMultiPublisher(publishers...)
	a.closers = append(a.closers, multi.Close)
	return multi, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			telemetry.Logger.Warn("Error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}
