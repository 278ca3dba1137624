package rest

import (
	"net/http"
	"time"

	"memoryhub/application/commands/bus"
	querybus "memoryhub/application/queries/bus"
	"memoryhub/interfaces/http/rest/handlers"
	"memoryhub/interfaces/http/rest/middleware"
	pkgerrors "memoryhub/pkg/errors"
	"memoryhub/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig holds the HTTP-facing settings
type RouterConfig struct {
	AllowedOrigins   []string
	EnableCORS       bool
	RequestTimeout   time.Duration
	RecallConfigured bool
	StorageBackend   string
	Auth             middleware.AuthConfig
	ReadinessChecks  map[string]handlers.ReadinessCheck
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	authService  handlers.Authenticator
	metrics      *observability.Collector
	errorHandler *pkgerrors.ErrorHandler
	config       RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	authService handlers.Authenticator,
	metrics *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		authService:  authService,
		metrics:      metrics,
		errorHandler: errorHandler,
		config:       config,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	if rt.config.RequestTimeout > 0 {
		router.Use(chimiddleware.Timeout(rt.config.RequestTimeout))
	}

	if rt.config.EnableCORS {
		// Credentials cannot be combined with a wildcard origin
		allowCredentials := true
		for _, origin := range rt.config.AllowedOrigins {
			if origin == "*" {
				allowCredentials = false
			}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: allowCredentials,
			MaxAge:           300,
		}))
	}

	health := handlers.NewHealthHandler(rt.config.RecallConfigured, rt.config.StorageBackend, rt.config.ReadinessChecks, rt.logger)
	router.Get("/", health.Root)
	router.Get("/health", health.Health)
	router.Get("/ready", health.Ready)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := handlers.NewAuthHandler(rt.authService, rt.errorHandler, rt.logger)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/memories", func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.config.Auth))

			memoryHandler := handlers.NewMemoryHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
			r.Post("/", memoryHandler.CreateMemory)
			r.Get("/", memoryHandler.ListMemories)
			r.Post("/search", memoryHandler.SearchMemories)
			r.Post("/add", memoryHandler.AddMemoryLegacy)
			r.Get("/projects", memoryHandler.ListProjects)
			r.Get("/{memoryID}", memoryHandler.GetMemory)
			r.Delete("/{memoryID}", memoryHandler.DeleteMemory)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return router
}
