// Package router assembles the HTTP surface: middleware stack, CORS
// policy and route table.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/student-api/internal/config"
	"github.com/aanand-mishra/student-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-api/internal/http/middleware"
	"github.com/aanand-mishra/student-api/internal/storage"
	"github.com/aanand-mishra/student-api/internal/utils/response"
)

// Options carries the dependencies of the router.
type Options struct {
	Storage  storage.Storage
	CORS     config.CORS
	Logger   *slog.Logger
	Registry *prometheus.Registry
}

// New returns the application handler.
//
// Route table:
//
//	GET  /          welcome message
//	GET  /students  list all students
//	POST /students  add a student
//	GET  /health    database reachability
//	GET  /metrics   Prometheus exposition
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(registry)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Handler)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(CORSOptions(opts.CORS)))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusNotFound, response.Message("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed, response.Message("Method Not Allowed"))
	})

	r.Get("/", student.Welcome())
	r.Get("/students", student.List(opts.Storage))
	r.Post("/students", student.New(opts.Storage))
	r.Get("/health", student.Health(opts.Storage))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

// CORSOptions turns the configured policy into go-chi/cors options: the
// listed origins only, every method and header, credentials allowed.
func CORSOptions(c config.CORS) cors.Options {
	return cors.Options{
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodConnect,
			http.MethodTrace,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}
}
