package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is the process configuration, parsed from environment variables.
// A .env file loaded before parsing can supply them in development.
type Config struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port uint16 `env:"PORT" envDefault:"8080"`

	DatabaseURL string `env:"DB_URL,required"`
	RedisURL    string `env:"REDIS_URL,required"`

	PresenceTTL      time.Duration `env:"PRESENCE_TTL" envDefault:"12h"`
	MessageRetention time.Duration `env:"MESSAGE_RETENTION" envDefault:"48h"`
	HistoryPageSize  int           `env:"HISTORY_PAGE_SIZE" envDefault:"50"`

	WorkerConcurrency int            `env:"ASYNQ_CONCURRENCY" envDefault:"10"`
	WorkerQueues      map[string]int `env:"ASYNQ_QUEUES" envSeparator:","`
}

// Parse reads the configuration from the environment.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
