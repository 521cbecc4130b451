/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     Request logging through logrus
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for frontend
  6. RateLimit:  Token bucket per client IP

ROUTE GROUPS:
  /api/users/*          Users, snapshot inputs, statistics, balance, anomalies
  /api/anomalies        Scan over all active users
  /api/holidays/*       Statutory + company holidays
  /api/regions          State codes
  /api/scenarios/*      Demo scenarios
  /api/health           Liveness and last background scan

SECURITY NOTE:
  No authentication middleware. All endpoints are public; deploy behind
  an authenticating proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	AllowedOrigins  []string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if opts.RateLimitPerSec > 0 {
		r.Use(RateLimit(NewIPRateLimiter(rate.Limit(opts.RateLimitPerSec), max(opts.RateLimitBurst, 1))))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{id}", h.GetUser)
			r.Delete("/{id}", h.DeleteUser)
			r.Post("/{id}/entries", h.SaveEntries)
			r.Delete("/{id}/entries/{entryID}", h.DeleteEntry)
			r.Post("/{id}/absences", h.SaveAbsences)
			r.Delete("/{id}/absences/{absenceID}", h.DeleteAbsence)
			r.Get("/{id}/statistics/year", h.YearStatistics)
			r.Get("/{id}/statistics/month", h.MonthStatistics)
			r.Get("/{id}/statistics/week", h.WeekStatistics)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/anomalies", h.UserAnomalies)
		})

		r.Get("/anomalies", h.AllAnomalies)

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Get("/custom", h.ListCustomHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Get("/regions", h.ListRegions)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": middleware.GetReqID(r.Context()),
					"remote":     r.RemoteAddr,
				}).Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
