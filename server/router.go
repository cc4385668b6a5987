package server

import (
	"context"
	"net/http"
	"time"

	"casino/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps groups what NewRouter needs
type RouterDeps struct {
	Accounts  interfaces.AccountService
	Blackjack interfaces.BlackjackService
	Roulette  interfaces.RouletteService

	Authenticator      *Authenticator
	RateLimiter        *RateLimiter
	CORSAllowedOrigins []string

	// Metrics serves /metrics when set
	Metrics http.Handler
	// HealthCheck reports dependency health for /health when set
	HealthCheck func(ctx context.Context) error
}

// NewRouter wires every route and middleware.
//
// Public: /health, /metrics, /leaderboard. Everything else passes
// authentication and then the per user rate limit.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	h := NewHandler(deps.Accounts, deps.Blackjack, deps.Roulette)

	r.Get("/health", healthHandler(deps.HealthCheck))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}
	r.Get("/leaderboard", h.Leaderboard)

	r.Group(func(r chi.Router) {
		r.Use(deps.Authenticator.Middleware)
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		r.Route("/account", func(r chi.Router) {
			r.Post("/", h.OpenAccount)
			r.Get("/", h.GetProfile)
			r.Get("/history", h.GetBalanceHistory)
		})

		r.Route("/blackjack", func(r chi.Router) {
			r.Post("/deal", h.Deal)
			r.Post("/hit", h.Hit)
			r.Post("/stand", h.Stand)
			r.Get("/session", h.ActiveSession)
		})

		r.Post("/roulette/spin", h.Spin)
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeErrorResponse(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
