// Package router wires every HTTP endpoint of the admin API behind the
// shared middleware chain.
package router

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-admin-go/internal/album"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/task"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/teammember"
	"github.com/ovaphlow/pitchfork/service-admin-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-admin-go/pkg/utilities"
)

const (
	APIPrefix   = "/api"
	HealthPath  = APIPrefix + "/health"
	MetricsPath = "/metrics"
)

// PublicPaths are served without a session.
var PublicPaths = []string{
	APIPrefix + "/auth/login",
	APIPrefix + "/auth/register",
	APIPrefix + "/auth/logout",
	HealthPath,
	MetricsPath,
}

// Deps is everything the routes need. All of it is built once at startup.
type Deps struct {
	DB          *sqlx.DB
	Logger      *zap.SugaredLogger
	Auth        *auth.Service
	Tokens      *auth.TokenCodec
	CookieName  string
	// CORSOrigins lists the allowed cross-origin callers. Empty disables
	// CORS; "*" allows any origin without credentials.
	CORSOrigins []string
	IDs         *utilities.SnowflakeGenerator
	// Registry receives the HTTP metrics and backs /metrics. NewRegistry
	// is used when nil.
	Registry *prometheus.Registry
}

// New builds the API handler.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	reg := d.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	metrics := NewMetrics(reg)
	gate := auth.NewGate(d.Tokens, d.CookieName, PublicPaths, logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware(d.IDs))
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(SecurityHeadersMiddleware())
	if len(d.CORSOrigins) > 0 {
		r.Use(corsHandler(d.CORSOrigins))
	}
	r.Use(gate.Middleware)

	r.Method(http.MethodGet, MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler(d.DB, logger))
		r.Route("/auth", auth.NewHandler(d.Auth, d.CookieName, logger).Mount)
		r.Route("/users", user.NewHandler(d.DB, d.CookieName, logger).Mount)
		r.Route("/albums", album.NewHandler(d.DB, logger).Mount)
		r.Route("/tasks", task.NewHandler(d.DB, logger).Mount)
		r.Route("/team-members", teammember.NewHandler(d.DB, logger).Mount)
	})
	return r
}

// corsHandler allows the listed origins. A "*" entry allows any origin, and
// then credentials are never allowed so the session cookie stays same-site.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	})
}

func healthHandler(db *sqlx.DB, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			utilities.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		utilities.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
