// Command gateway runs a demo admission gateway: per-endpoint rate limits,
// a circuit breaker around the Redis limit store, and transfer admission on
// upload/download routes. Without REDIS_URL it falls back to the in-process
// limit store, which is fine for a single instance but not for a fleet.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/gatekit/core/config"
	"github.com/dmitrymomot/gatekit/core/health"
	"github.com/dmitrymomot/gatekit/core/logger"
	"github.com/dmitrymomot/gatekit/core/server"
	redisdb "github.com/dmitrymomot/gatekit/integration/database/redis"
	"github.com/dmitrymomot/gatekit/middleware"
	"github.com/dmitrymomot/gatekit/pkg/breaker"
	"github.com/dmitrymomot/gatekit/pkg/clientip"
	"github.com/dmitrymomot/gatekit/pkg/ratelimiter"
	"github.com/dmitrymomot/gatekit/pkg/transfer"
)

type appConfig struct {
	Logger   logger.Config
	Server   server.Config
	Redis    redisdb.Config
	Breaker  breaker.Config
	Global   ratelimiter.GlobalConfig
	Transfer transfer.Config
	ClientIP clientip.Config
}

func main() {
	if err := run(); err != nil {
		slog.Error("gateway exited", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg.Logger); err != nil {
		return err
	}
	if err := config.Load(&cfg.Server); err != nil {
		return err
	}
	if err := config.Load(&cfg.Redis); err != nil {
		return err
	}
	if err := config.Load(&cfg.Breaker); err != nil {
		return err
	}
	if err := config.Load(&cfg.Global); err != nil {
		return err
	}
	if err := config.Load(&cfg.Transfer); err != nil {
		return err
	}
	if err := config.Load(&cfg.ClientIP); err != nil {
		return err
	}

	log := logger.NewFromConfig(cfg.Logger, logger.WithAttr(logger.Component("gateway")))
	slog.SetDefault(log)

	g, ctx := errgroup.WithContext(ctx)

	// Redis when configured, in-process store otherwise.
	var (
		store  ratelimiter.Store
		checks []func(context.Context) error
	)
	if cfg.Redis.ConnectionURL != "" {
		client, err := redisdb.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		store = ratelimiter.NewRedisStore(client)
		checks = append(checks, redisdb.Healthcheck(client))
		log.InfoContext(ctx, "rate limit store: redis")
	} else {
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log))
		g.Go(mem.Run(ctx))
		store = mem
		checks = append(checks, mem.Healthcheck)
		log.InfoContext(ctx, "rate limit store: in-memory")
	}

	storeBreaker := breaker.New("ratelimit-store", cfg.Breaker, breaker.WithLogger(log))

	limiter, err := ratelimiter.New(store,
		ratelimiter.WithBreaker(storeBreaker),
		ratelimiter.WithLogger(log),
		ratelimiter.WithClass(ratelimiter.ClassGlobal, ratelimiter.Config{
			Limit:  cfg.Global.RPS,
			Window: time.Second,
		}),
	)
	if err != nil {
		return err
	}

	sched := transfer.NewScheduler(cfg.Transfer, transfer.WithSchedulerLogger(log))
	resolver := clientip.NewResolver(cfg.ClientIP)

	mux := http.NewServeMux()
	mux.Handle("POST /login", limited(limiter, ratelimiter.ClassLogin, loginHandler()))
	mux.Handle("POST /upload", limited(limiter, ratelimiter.ClassUpload,
		middleware.TransferUpload(sched)(uploadHandler())))
	mux.Handle("GET /download/{name}", limited(limiter, ratelimiter.ClassPublic,
		middleware.TransferDownload(sched)(downloadHandler())))
	mux.Handle("POST /export", limited(limiter, ratelimiter.ClassExport, exportHandler()))
	mux.Handle("GET /api/", limited(limiter, ratelimiter.ClassAPI, apiHandler()))
	mux.Handle("GET /stats", statsHandler(storeBreaker, sched, store))
	mux.Handle("GET /health/live", health.Liveness())
	mux.Handle("GET /health/ready", health.Readiness(log, checks...))

	handler := middleware.ClientIP(resolver)(
		middleware.RequestID()(
			middleware.LoggingWithConfig(middleware.LoggingConfig{
				Logger:        log,
				SlowThreshold: time.Second,
				Skip:          func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/health/") },
			})(
				middleware.RateLimitWithConfig(middleware.RateLimitConfig{
					Limiter: limiter,
					Class:   ratelimiter.ClassGlobal,
					Logger:  log,
					Skip:    func(r *http.Request) bool { return strings.HasPrefix(r.URL.Path, "/health/") },
				})(mux))))

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}
	g.Go(srv.Run(ctx, handler))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// limited applies a class-specific quota on top of the global limiter that
// wraps the whole mux.
func limited(limiter *ratelimiter.Limiter, class ratelimiter.Class, next http.Handler) http.Handler {
	return middleware.RateLimit(limiter, class)(next)
}

func loginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
	})
}

func uploadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := io.Reader(r.Body)
		if permit, ok := middleware.GetPermit(r.Context()); ok {
			body = permit.Reader(r.Context(), r.Body)
		}
		n, err := io.Copy(io.Discard, body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "upload_failed"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"received_bytes": n})
	})
}

func downloadHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Demo payload; a real deployment streams from object storage here.
		payload := make([]byte, 1<<20)

		out := io.Writer(w)
		if permit, ok := middleware.GetPermit(r.Context()); ok {
			out = permit.Writer(r.Context(), w)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = out.Write(payload)
	})
}

func exportHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "export_queued"})
	})
}

func apiHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// statsHandler exposes breaker and scheduler state for operators.
func statsHandler(cb *breaker.CircuitBreaker, sched *transfer.Scheduler, store ratelimiter.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"breaker":   cb.Metrics(),
			"transfers": sched.Stats(),
		}
		if mem, ok := store.(*ratelimiter.MemoryStore); ok {
			payload["limit_store"] = mem.Stats()
		}
		writeJSON(w, http.StatusOK, payload)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
