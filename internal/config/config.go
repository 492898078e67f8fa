package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "FRAUD_DASHBOARD"

type Config struct {
	Port string

	ScoringURL    string
	AlertsURL     string
	AlertLimit    int
	ForwardAlerts bool

	HealthInterval time.Duration
	AlertsInterval time.Duration
	HTTPTimeout    time.Duration

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	NatsURL      string

	TracingEndpoint string
	LogLevel        string
	LogFormat       string
}

// SetDefaults registers every key with its default so env vars resolve
// even when no config file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("scoring.url", "http://localhost:5002")
	v.SetDefault("alerts.url", "http://localhost:5001")
	v.SetDefault("alerts.limit", 5)
	v.SetDefault("alerts.forward", false)
	v.SetDefault("poll.health_interval", 5*time.Second)
	v.SetDefault("poll.alerts_interval", 10*time.Second)
	v.SetDefault("http.timeout", 3*time.Second)
	v.SetDefault("redis.url", "")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "transactions")
	v.SetDefault("nats.url", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// BindEnv makes FRAUD_DASHBOARD_SCORING_URL resolve scoring.url and so on.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the resolved settings out of v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("port"),
		ScoringURL:      strings.TrimRight(v.GetString("scoring.url"), "/"),
		AlertsURL:       strings.TrimRight(v.GetString("alerts.url"), "/"),
		AlertLimit:      v.GetInt("alerts.limit"),
		ForwardAlerts:   v.GetBool("alerts.forward"),
		HealthInterval:  v.GetDuration("poll.health_interval"),
		AlertsInterval:  v.GetDuration("poll.alerts_interval"),
		HTTPTimeout:     v.GetDuration("http.timeout"),
		RedisURL:        v.GetString("redis.url"),
		KafkaBrokers:    splitList(v.GetString("kafka.brokers")),
		KafkaTopic:      v.GetString("kafka.topic"),
		NatsURL:         v.GetString("nats.url"),
		TracingEndpoint: v.GetString("tracing.endpoint"),
		LogLevel:        v.GetString("logging.level"),
		LogFormat:       v.GetString("logging.format"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ScoringURL == "" {
		return fmt.Errorf("scoring.url is required")
	}
	if c.AlertsURL == "" {
		return fmt.Errorf("alerts.url is required")
	}
	if c.AlertLimit <= 0 {
		return fmt.Errorf("alerts.limit must be positive, got %d", c.AlertLimit)
	}
	if c.HealthInterval <= 0 || c.AlertsInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
