package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studypals/studypals/internal/analytics"
	"github.com/studypals/studypals/internal/api"
	"github.com/studypals/studypals/internal/config"
	"github.com/studypals/studypals/internal/db"
	"github.com/studypals/studypals/internal/jobs"
	"github.com/studypals/studypals/internal/logger"
	"github.com/studypals/studypals/internal/repository/sqlite"
	"github.com/studypals/studypals/internal/services"
	"github.com/studypals/studypals/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("StudyPals Analytics Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", loc)
	log.Debug("recompute_worker_count=%d", cfg.RecomputeWorkerCount)
	log.Debug("recompute_queue_size=%d", cfg.RecomputeQueueSize)
	log.Debug("recent_score_window=%d", cfg.RecentScoreWindow)

	ctx, cancel := context.WithCancel(logger.NewContext(context.Background(), log))
	defer cancel()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	sessions := sqlite.NewSessionRepository(database.DB)
	quizzes := sqlite.NewQuizRepository(database.DB)
	reviews := sqlite.NewReviewRepository(database.DB)
	cards := sqlite.NewFlashcardRepository(database.DB)
	snapshots := sqlite.NewAnalyticsRepository(database.DB)

	calc := analytics.NewCalculator(
		analytics.WithLocation(loc),
		analytics.WithRecentScoreWindow(cfg.RecentScoreWindow),
	)

	recomputePool := worker.NewPool(cfg.RecomputeWorkerCount, cfg.RecomputeQueueSize)
	analyticsService := services.NewAnalyticsService(sessions, quizzes, reviews, snapshots, calc)
	queue := jobs.NewWorkerQueue(recomputePool, analyticsService)

	srv := &api.Server{
		AnalyticsService: analyticsService,
		SessionService:   services.NewSessionService(sessions, quizzes, analyticsService, queue),
		FlashcardService: services.NewFlashcardService(cards, reviews, nil),
		RecomputeQueue:   queue,
		DB:               database,
	}

	recomputePool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Queued recomputes are drained before the database closes.
	log.Debug("stopping recompute pool")
	recomputePool.Stop()

	log.Info("===========================================")
	log.Info("StudyPals Analytics Server Stopped")
	log.Info("===========================================")
}
