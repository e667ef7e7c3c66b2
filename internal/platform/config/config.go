package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `envconfig:"SERVICE_NAME" default:"polity"`
	HTTPPort     string   `envconfig:"HTTP_PORT" default:"8080"`
	PostgresDSN  string   `envconfig:"POSTGRES_DSN"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	// InitialAdmin is granted default_admin and admin on first boot.
	InitialAdmin string `envconfig:"INITIAL_ADMIN" default:"root"`
	// ComplianceManager may flip ledger compliance flags alongside the
	// membership service itself.
	ComplianceManager string `envconfig:"COMPLIANCE_MANAGER" default:"compliance-manager"`

	DefaultVotingPeriod     time.Duration `envconfig:"DEFAULT_VOTING_PERIOD" default:"168h"`
	DefaultQuorumPercentage uint64        `envconfig:"DEFAULT_QUORUM_PERCENTAGE" default:"10"`

	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config from environment: %w", err)
	}
	if cfg.DefaultQuorumPercentage == 0 || cfg.DefaultQuorumPercentage > 100 {
		return Config{}, fmt.Errorf("DEFAULT_QUORUM_PERCENTAGE must be in (0,100], got %d", cfg.DefaultQuorumPercentage)
	}
	return cfg, nil
}

// HTTPAddr normalizes the configured port into a listen address.
func (c Config) HTTPAddr() string {
	port := strings.TrimSpace(c.HTTPPort)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
