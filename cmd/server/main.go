package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ml_arena/internal/api"
	"ml_arena/internal/app/service"
	"ml_arena/internal/app/worker"
	"ml_arena/internal/common/security"
	"ml_arena/internal/domain/repository"
	"ml_arena/internal/platform/config"
	"ml_arena/internal/platform/database"
	"ml_arena/internal/platform/queue"

	"github.com/lmittmann/tint"
)

func main() {
	// 1. Structured logging
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	// 2. Load Configuration
	config.Load()
	slog.Info("configuration loaded")

	// 3. Initialize JWT
	security.InitJWT()

	// 4. Initialize Database
	database.Connect()
	defer database.Close()
	slog.Info("database connected")

	// 5. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	slog.Info("redis connected")

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	metricRepo := repository.NewPgMetricRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo, metricRepo, database.DB)
	metricService := service.NewMetricService(metricRepo)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, queue.RDB, database.DB)
	leaderboardService := service.NewLeaderboardService(
		submissionRepo, problemRepo, metricRepo,
		queue.RDB,
		time.Duration(config.AppConfig.LeaderboardCacheTTLSeconds)*time.Second,
	)
	webhookService := service.NewWebhookService(submissionRepo)

	// 8. Evaluation worker (as a goroutine)
	evaluationWorker := worker.NewEvaluationWorker(queue.RDB, submissionRepo, problemRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go evaluationWorker.Start(workerCtx)
	slog.Info("evaluation worker started")

	// 9. Router & HTTP Server
	router := api.NewRouter(authService, problemService, metricService, submissionService, leaderboardService, webhookService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	slog.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	slog.Info("server and worker stopped gracefully")
}
