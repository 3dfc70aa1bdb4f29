package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration with environment variable support.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"
}

type options struct {
	level  slog.Level
	json   bool
	output io.Writer
	attrs  []slog.Attr
}

// Option configures the logger factory.
type Option func(*options)

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithJSONFormatter switches output to JSON, the format expected by log
// aggregators in production.
func WithJSONFormatter() Option {
	return func(o *options) { o.json = true }
}

// WithTextFormatter switches output to human-readable text.
func WithTextFormatter() Option {
	return func(o *options) { o.json = false }
}

// WithOutput sets the output destination (default: os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr adds attributes attached to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) { o.attrs = append(o.attrs, attrs...) }
}

// New creates a slog.Logger with the given options.
// Defaults to text format at info level on stdout.
func New(opts ...Option) *slog.Logger {
	o := options{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(o.output, handlerOpts)
	}

	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}

	return slog.New(handler)
}

// NewFromConfig creates a logger from environment-sourced configuration.
// Unknown level strings fall back to info.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	configOpts := []Option{WithLevel(ParseLevel(cfg.Level))}
	if strings.EqualFold(cfg.Format, "json") {
		configOpts = append(configOpts, WithJSONFormatter())
	}
	return New(append(configOpts, opts...)...)
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
