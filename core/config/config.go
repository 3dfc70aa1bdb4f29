package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalidTarget is returned when the load target is not a non-nil struct pointer.
var ErrInvalidTarget = errors.New("config target must be a non-nil struct pointer")

var (
	mu     sync.Mutex
	cache  = make(map[reflect.Type]any)
	dotenv sync.Once
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct with `env` tags. The parsed value is cached by struct type, so
// repeated loads of the same type return identical configuration without
// re-reading the environment.
func Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	// Missing .env files are expected outside local development.
	dotenv.Do(func() { _ = godotenv.Load() })

	typ := rv.Elem().Type()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[typ]; ok {
		rv.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", typ, err)
	}

	cache[typ] = rv.Elem().Interface()
	return nil
}

// MustLoad is like Load but panics on failure. Intended for application
// startup where a missing required variable should abort the process.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
