package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vanj900/precisionlocked/internal/api/handlers"
	mw "github.com/vanj900/precisionlocked/internal/api/middleware"
	"github.com/vanj900/precisionlocked/internal/buildconfig"
	"github.com/vanj900/precisionlocked/internal/config"
	"github.com/vanj900/precisionlocked/internal/domain"
	"github.com/vanj900/precisionlocked/internal/service"
	"github.com/vanj900/precisionlocked/internal/store"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Retention *service.RetentionService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	agentStore := store.NewAgentStore(db)
	runStore := store.NewRunStore(db)

	// Services
	agentSvc := service.NewAgentService(agentStore)
	simSvc := service.NewSimulationService(runStore, agentStore, logger)
	simSvc.MaxSteps = config.MaxTrajectorySteps()

	retentionAge := time.Duration(config.RunRetentionDays()) * 24 * time.Hour
	retentionSvc := service.NewRetentionService(runStore, retentionAge, logger)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(tenantStore)
	agentHandler := handlers.NewAgentHandler(agentSvc)
	simHandler := handlers.NewSimulationHandler(simSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Retention: retentionSvc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Tenant creation (no auth — bootstrap endpoint)
	r.Post("/v1/tenants", tenantHandler.Create)

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(tenantStore))

		// Agents
		r.Route("/agents", func(r chi.Router) {
			r.Post("/", agentHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", agentHandler.GetByID)
				r.Get("/simulations", simHandler.ListByAgent)
			})
		})

		// Simulation runs
		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", simHandler.Create)
			r.Post("/compare", simHandler.Compare)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", simHandler.GetByID)
				r.Get("/trajectory", simHandler.GetTrajectory)
			})
		})
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage lifecycle
// themselves.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"version":        buildconfig.Version(),
			"commit":         buildconfig.Commit(),
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.TenantStore = (*store.TenantStore)(nil)
	_ domain.AgentStore  = (*store.AgentStore)(nil)
	_ domain.RunStore    = (*store.RunStore)(nil)
)
