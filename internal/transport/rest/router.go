// Package rest exposes the interview workflow over HTTP/JSON.
package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	RateLimit      int
	RateWindow     time.Duration
}

type Deps struct {
	Interviews *InterviewsHandler
	Tokens     TokenVerifier
	Limiter    Limiter
	// Health reports whether the store is reachable.
	Health func(ctx context.Context) error
	Log    *slog.Logger
}

func NewRouter(cfg RouterConfig, deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "rest"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(cfg.AllowedOrigins))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", healthHandler(deps.Health))

	r.Route("/interviews", func(r chi.Router) {
		r.Use(Authenticate(deps.Tokens, log))

		h := deps.Interviews
		r.Get("/", h.List)
		r.Get("/my", h.ListMine)
		r.Get("/calendar", h.Calendar)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(deps.Limiter, cfg.RateLimit, cfg.RateWindow))
			r.Post("/", h.Propose)
			r.Patch("/{id}", h.UpdateDetails)
			r.Patch("/{id}/confirm", h.Confirm)
			r.Patch("/{id}/cancel", h.Cancel)
			r.Patch("/{id}/complete", h.Complete)
			r.Patch("/{id}/no-show", h.NoShow)
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Idempotency-Key",
			"X-Request-Id",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return cors.Handler(opts)
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
