package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/interfaces/http/rest/handlers"
	"scholarmind/interfaces/http/rest/middleware"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	sessions *store.SessionStore
	data     *store.DataStore
	tokens   *auth.TokenService
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	sessions *store.SessionStore,
	data *store.DataStore,
	tokens *auth.TokenService,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Router {
	return &Router{
		sessions: sessions,
		data:     data,
		tokens:   tokens,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:19006"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and metrics
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", observability.Handler(rt.gatherer))

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := handlers.NewAuthHandler(rt.sessions, rt.tokens, rt.logger)

		// Public auth endpoints
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/state", authHandler.State)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokens, rt.sessions, rt.logger))
			r.Use(rateLimiter.Middleware())

			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/passcode", authHandler.SetupPasscode)
			r.Post("/auth/passcode/verify", authHandler.VerifyPasscode)
			r.Post("/auth/unlock", authHandler.Unlock)

			r.Route("/goals", func(r chi.Router) {
				goalHandler := handlers.NewGoalHandler(rt.data, rt.logger)
				r.Post("/", goalHandler.CreateGoal)
				r.Get("/", goalHandler.ListGoals)
				r.Put("/{goalID}", goalHandler.UpdateGoal)
				r.Delete("/{goalID}", goalHandler.DeleteGoal)
				r.Post("/{goalID}/toggle", goalHandler.ToggleGoal)
			})

			r.Route("/subjects", func(r chi.Router) {
				subjectHandler := handlers.NewSubjectHandler(rt.data, rt.logger)
				r.Post("/", subjectHandler.CreateSubject)
				r.Get("/", subjectHandler.ListSubjects)
				r.Delete("/{subjectID}", subjectHandler.DeleteSubject)
			})

			r.Route("/sessions", func(r chi.Router) {
				sessionHandler := handlers.NewSessionHandler(rt.data, rt.logger)
				r.Post("/", sessionHandler.CreateSession)
				r.Get("/", sessionHandler.ListSessions)
			})

			r.Get("/stats/completion", handlers.NewStatsHandler(rt.data, rt.logger).CompletionRate)
		})
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
