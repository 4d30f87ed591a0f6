// Command quizd wires the platform's caching and quota layers into an HTTP
// service: configuration from the environment, structured logging, lazy
// Redis-backed caching with graceful degradation, and fixed-window rate
// limiting on the guest-play and AI-generation routes.
//
// The relational query layer and the AI pipeline are external collaborators;
// quizd stands them in with canned data so the wiring can run end to end.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"

	"github.com/quizora/platform/middlewares"
	"github.com/quizora/platform/pkg/cache"
	"github.com/quizora/platform/pkg/health"
	"github.com/quizora/platform/pkg/logger"
	"github.com/quizora/platform/pkg/quota"
)

type config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	Log   logger.Config
	Cache cache.Config

	GuestPlay  quota.Config `envPrefix:"QUOTA_GUEST_PLAY_"`
	Generation quota.Config `envPrefix:"QUOTA_GENERATION_"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", "error", err)
		os.Exit(1)
	}
	// The AI budget defaults to a system-wide ceiling; guest plays do not
	// carry one.
	if cfg.Generation.GlobalLimit == 0 {
		cfg.Generation.GlobalLimit = 100
	}

	log := logger.NewWithSentry(cfg.Log).With("app", "quizd")

	store := cache.New(cfg.Cache, cache.WithLogger(log))
	defer store.Close()

	plays := quota.NewTracker(cfg.GuestPlay, quota.WithTrackerLogger(log))
	defer plays.Close()

	generations := quota.NewTracker(cfg.Generation, quota.WithTrackerLogger(log))
	defer generations.Close()

	r := chi.NewRouter()
	r.Use(middlewares.RequestID())

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(health.Checks{
		"cache": store.Healthcheck(),
	}))

	r.Get("/quizzes", listQuizzesHandler(store, cfg.Cache))
	r.Get("/quizzes/{id}", quizDetailHandler(store, cfg.Cache))

	r.With(middlewares.RateLimit(plays, middlewares.WithRateLimitLogger(log))).
		Post("/quizzes/{id}/play", playHandler())

	r.With(middlewares.RateLimit(generations,
		middlewares.WithIdentity(userIdentity),
		middlewares.WithRateLimitLogger(log),
	)).Post("/generate", generateHandler())

	r.Get("/quota/plays", quotaStatusHandler(plays))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting server", "addr", cfg.Addr, "cache_enabled", store.Enabled())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// userIdentity resolves the authenticated user for quota purposes. The real
// session layer lives outside this subsystem; until it is mounted here the
// user id arrives as a header from the gateway.
func userIdentity(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return middlewares.ClientIP(r)
}
