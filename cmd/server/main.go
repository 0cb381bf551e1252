package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"proposal-reviewer/api/handlers"
	"proposal-reviewer/api/routes"
	"proposal-reviewer/config"
	"proposal-reviewer/internal/repository"
	"proposal-reviewer/internal/service/review"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/server.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.GetServiceConfig()

	ctx := context.Background()
	repo, err := repository.NewPostgres(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", logger.Error(err))
	}
	defer repo.Close()

	taskQueue, err := queue.NewAsynqQueue(&queue.Config{
		RedisAddr: cfg.RedisAddr,
		RedisDB:   cfg.RedisDB,
	})
	if err != nil {
		log.Fatal("Failed to create task queue", logger.Error(err))
	}
	defer taskQueue.Close()

	svc := review.NewService(review.Deps{
		Repo:   repo,
		Queue:  taskQueue,
		Logger: log,
	})

	h := handlers.NewHandlers(svc, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	// periodic poll in addition to the /check_proposal trigger
	var scheduler *cron.Cron
	if cfg.PollSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.PollSchedule, func() {
			if _, _, err := svc.CheckProposals(context.Background()); err != nil {
				log.Error("Scheduled proposal check failed", logger.Error(err))
			}
		})
		if err != nil {
			log.Fatal("Invalid poll schedule", logger.String("schedule", cfg.PollSchedule), logger.Error(err))
		}
		scheduler.Start()
		log.Info("Proposal polling scheduled", logger.String("schedule", cfg.PollSchedule))
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
