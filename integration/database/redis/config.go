package redis

import "time"

// Config holds Redis connection configuration with environment variable support.
type Config struct {
	// ConnectionURL left empty means Redis is not configured; callers decide
	// whether that is fatal or a fallback to a local store.
	ConnectionURL  string        `env:"REDIS_URL"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
