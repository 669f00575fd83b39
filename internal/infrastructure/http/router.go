package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/handlers"
	"github.com/julien-rg/wheelbase-server/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	UsersHandler  *handlers.UsersHandler
	HealthHandler *handlers.HealthHandler
	// Actor resolves the optional bearer token into the request actor.
	// It runs on every /api route and never rejects.
	Actor       func(http.Handler) http.Handler
	Log         zerolog.Logger
	Secure      func(http.Handler) http.Handler
	CORS        func(http.Handler) http.Handler
	IPRateLimit func(http.Handler) http.Handler
	Metrics     bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		if cfg.Actor != nil {
			r.Use(cfg.Actor)
		}
		r.Post("/register", cfg.UsersHandler.Register)
		r.Post("/login", cfg.UsersHandler.Login)
		r.Get("/", cfg.UsersHandler.Search)
		r.Post("/follow", cfg.UsersHandler.Follow)
		r.Post("/unfollow", cfg.UsersHandler.Unfollow)
		r.Get("/{id}", cfg.UsersHandler.Get)
		r.Put("/{id}", cfg.UsersHandler.Update)
		r.Put("/{id}/password", cfg.UsersHandler.ChangePassword)
		r.Get("/{id}/followers", cfg.UsersHandler.Followers)
		r.Get("/{id}/following", cfg.UsersHandler.Following)
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
