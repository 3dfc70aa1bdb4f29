package ratelimiter

import "time"

// Class is a named category of traffic with its own quota.
type Class string

const (
	ClassLogin  Class = "login"
	ClassUpload Class = "upload"
	ClassExport Class = "export"
	ClassAPI    Class = "api"
	ClassPublic Class = "public"
	ClassGlobal Class = "global"
)

// Config defines a quota: at most Limit requests per Window.
type Config struct {
	Limit  int
	Window time.Duration
}

// GlobalConfig holds the only externally tunable quota, the global per-IP
// burst limit applied to every request.
type GlobalConfig struct {
	RPS int `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"100"`
}

// defaultClasses are the deploy-time quotas. Endpoint quotas are a security
// boundary, not a user preference, so they are fixed in code. Only
// ClassGlobal is meant to be overridden (WithClass) from environment
// configuration.
func defaultClasses() map[Class]Config {
	return map[Class]Config{
		ClassLogin:  {Limit: 5, Window: time.Minute},
		ClassUpload: {Limit: 100, Window: time.Hour},
		ClassExport: {Limit: 5, Window: time.Hour},
		ClassAPI:    {Limit: 1000, Window: time.Minute},
		ClassPublic: {Limit: 60, Window: time.Minute},
		ClassGlobal: {Limit: 100, Window: time.Second},
	}
}
