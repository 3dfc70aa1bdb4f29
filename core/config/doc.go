// Package config provides type-safe environment variable loading with caching.
// Each configuration type is loaded once and cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/gatekit/core/config"
//
//	type RedisConfig struct {
//		URL            string        `env:"REDIS_URL,required"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
//	func main() {
//		var redis RedisConfig
//
//		// Load with error handling
//		if err := config.Load(&redis); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&redis)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 RedisConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 RedisConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently, so component configs
// (rate limiter, transfer scheduler, server) can each be loaded where
// they are needed without re-reading the environment.
package config
