package main

import (
	"log/slog"
	"time"

	"github.com/Amit7053/lucky-draw/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	MetricsPort     uint16        `env:"APP_METRICS_PORT" default:"9090"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	Postgres config.PostgresConfig

	// Empty address disables the balance cache.
	RedisAddr       string        `env:"REDIS_ADDR" default:""`
	BalanceCacheTTL time.Duration `env:"BALANCE_CACHE_TTL" default:"5s"`

	// Empty broker list disables ledger event publishing.
	KafkaBrokers     string `env:"KAFKA_BROKERS" default:""`
	LedgerEventTopic string `env:"LEDGER_EVENTS_TOPIC" default:"ledger_events"`

	PayoutMultiplier   int64         `env:"PAYOUT_MULTIPLIER" default:"2"`
	SettleMaxAttempts  int           `env:"SETTLE_MAX_ATTEMPTS" default:"5"`
	SettleRetryBackoff time.Duration `env:"SETTLE_RETRY_BACKOFF" default:"100ms"`
}
