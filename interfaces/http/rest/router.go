package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"skilltree-backend/infrastructure/di"
	"skilltree-backend/interfaces/http/rest/handlers"
	"skilltree-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.container.Config
	logger := rt.container.Logger

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))
	if cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.container.Metrics))
	}

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if cfg.EnableMetrics {
		router.Handle("/metrics", rt.container.Metrics.Handler())
	}

	skillHandler := handlers.NewSkillHandler(
		rt.container.SkillService,
		rt.container.AggregationService,
		rt.container.Metrics,
		logger,
	)
	counterHandler := handlers.NewCounterHandler(rt.container.CounterService, rt.container.Metrics, logger)
	transferHandler := handlers.NewTransferHandler(rt.container.TransferService, logger)

	router.Route("/api", func(r chi.Router) {
		r.Route("/skills", func(r chi.Router) {
			r.Post("/", skillHandler.CreateSkill)
			r.Get("/", skillHandler.ListSkills)

			// Fixed segments first so they never match as {skillID}
			r.Get("/tree", skillHandler.GetForest)
			r.Get("/summary", skillHandler.GetRootsSummary)
			r.Get("/export", transferHandler.Export)
			r.Post("/import", transferHandler.ImportAdditive)
			r.Put("/import", transferHandler.ImportReplace)

			r.Route("/{skillID}", func(r chi.Router) {
				r.Get("/", skillHandler.GetSkill)
				r.Patch("/", skillHandler.UpdateSkill)
				r.Delete("/", skillHandler.DeleteSkill)
				r.Post("/children", skillHandler.CreateChild)
				r.Get("/tree", skillHandler.GetSubtree)
				r.Get("/summary", skillHandler.GetSummary)
				r.Post("/counters", counterHandler.CreateCounter)
			})
		})

		r.Route("/counters", func(r chi.Router) {
			r.Post("/", counterHandler.CreateCounter)
			r.Get("/", counterHandler.ListCounters)
			r.Route("/{counterID}", func(r chi.Router) {
				r.Get("/", counterHandler.GetCounter)
				r.Patch("/", counterHandler.UpdateCounter)
				r.Delete("/", counterHandler.DeleteCounter)
				r.Post("/increment", counterHandler.IncrementCounter)
			})
		})

		r.Delete("/data", transferHandler.ClearData)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
