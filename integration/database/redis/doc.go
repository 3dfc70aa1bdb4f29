// Package redis provides production-ready Redis client initialization and
// health checking for the shared counters used by the rate limiter.
//
// It wraps the go-redis client with URL validation, retry logic with
// exponential backoff, and a ping verification before the client is handed
// to callers.
//
// # Configuration
//
// All configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// An empty REDIS_URL makes Connect fail with ErrEmptyConnectionURL; callers
// that support a local fallback check the URL before connecting.
//
// Both redis:// and rediss:// (TLS) URL schemes are supported.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("failed to connect to redis:", err)
//	}
//	defer client.Close()
//
// # Health Checking
//
// Healthcheck returns a function suitable for readiness probes:
//
//	check := redis.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// report unhealthy
//	}
//
// # Error Handling
//
// Domain-specific errors can be checked with errors.Is():
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrEmptyConnectionURL,
// ErrHealthcheckFailed.
package redis
