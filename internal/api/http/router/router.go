package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fjcero/ClearGDPR/internal/api/http/handler"
	"github.com/fjcero/ClearGDPR/internal/api/http/middleware"
	"github.com/fjcero/ClearGDPR/internal/logger"
	"github.com/fjcero/ClearGDPR/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router represents an HTTP router for vault operations.
// It manages route registration and middleware configuration.
type Router struct {
	vaultService     *service.Vault
	processorService *service.Processors
	db               Pinger
	registry         *prometheus.Registry
	logger           *logger.Logger
}

// New creates new HTTP Router instance.
func New(
	vaultService *service.Vault,
	processorService *service.Processors,
	db Pinger,
	registry *prometheus.Registry,
	logger *logger.Logger,
) *Router {
	return &Router{
		vaultService:     vaultService,
		processorService: processorService,
		db:               db,
		registry:         registry,
		logger:           logger,
	}
}

// Register registers all routes and middleware.
// It sets up the chi router with request logging and the operational
// endpoints next to the vault API.
//
// Returns the configured router.
func (r *Router) Register() *chi.Mux {
	logging := middleware.NewLogging(r.logger)

	mux := chi.NewRouter()
	mux.Use(logging.Handle)

	r.registerSubjectRoutes(mux)
	r.registerProcessorRoutes(mux)

	mux.Get("/healthz", r.healthz)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))

	return mux
}

func (r *Router) registerSubjectRoutes(mux *chi.Mux) {
	vaultHandler := handler.NewVault(r.vaultService, r.logger)
	vaultHandler.Register(mux)
}

func (r *Router) registerProcessorRoutes(mux *chi.Mux) {
	processorHandler := handler.NewProcessor(r.processorService, r.vaultService, r.logger)
	processorHandler.Register(mux)
}

func (r *Router) healthz(w http.ResponseWriter, req *http.Request) {
	if err := r.db.Ping(req.Context()); err != nil {
		r.logger.Error("health check failed", "error", err)
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
