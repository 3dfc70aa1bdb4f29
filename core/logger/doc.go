// Package logger provides structured logging utilities built on Go's standard
// slog package: a factory with environment-driven configuration and a set of
// nil-safe attribute helpers for common logging patterns.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/gatekit/core/logger"
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("app", "gateway")),
//	)
//
//	log.Info("server starting",
//		logger.Component("server"),
//		logger.Event("startup"),
//	)
//
// Or load the level and format from the environment:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.NewFromConfig(cfg)
//
// # Attribute Helpers
//
// Attribute helpers use the empty Attr pattern for nil safety, so calls like
// log.Info("msg", logger.Error(err)) need no explicit nil checks:
//
//	log.Warn("store unavailable",
//		logger.Component("ratelimiter"),
//		logger.Error(err),
//	)
package logger
