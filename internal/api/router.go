package api

import (
	"net/http"
	"time"

	"ml_arena/internal/api/handler"
	"ml_arena/internal/app/service"
	"ml_arena/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	metricService *service.MetricService,
	submissionService *service.SubmissionService,
	leaderboardService *service.LeaderboardService,
	webhookService *service.WebhookService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts claims in context.
	// Enforcement happens per route group via middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Problem routes (some public, some author/admin)
		problemHandler := handler.NewProblemHandler(problemService)
		leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
		v1.Route("/problems", func(pr chi.Router) {
			problemHandler.RegisterRoutes(pr)
			pr.Get("/{problemID}/leaderboard", leaderboardHandler.GetProblemLeaderboard)
		})

		// Metric routes (list public, create admin)
		metricHandler := handler.NewMetricHandler(metricService)
		v1.Route("/metrics", metricHandler.RegisterRoutes)

		// Submission routes (authenticated)
		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		// Leaderboard routes (public)
		v1.Route("/leaderboards", leaderboardHandler.RegisterRoutes)

		// Webhook routes (reachable by the evaluator only; keep off
		// any public ingress in deployment)
		webhookHandler := handler.NewWebhookHandler(webhookService)
		v1.Route("/webhook", webhookHandler.RegisterRoutes)
	})

	return r
}
