package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"proposal-reviewer/config"
	"proposal-reviewer/internal/agent"
	"proposal-reviewer/internal/fetch"
	"proposal-reviewer/internal/notify"
	"proposal-reviewer/internal/pipeline"
	"proposal-reviewer/internal/service/review"
	"proposal-reviewer/internal/vision"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
	"proposal-reviewer/pkg/storage"
	"proposal-reviewer/pkg/worker"
)

func main() {
	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.GetServiceConfig()

	workerCfg, err := config.LoadWorkerFile(os.Getenv("WORKER_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load worker config", logger.Error(err))
	}

	fetcher := fetch.New(cfg.BackendURL, log)

	visionClient := vision.NewClient(*config.GetVisionConfig())
	defer visionClient.Close()

	agentCfg := config.GetAgentConfig()
	reviewer := agent.NewReviewer(&agent.Client{
		BaseURL: agentCfg.BaseURL,
		APIKey:  agentCfg.APIKey,
		Model:   agentCfg.Model,
	}, log)

	pipe := pipeline.New(fetcher, visionClient, reviewer, log)
	notifier := notify.New(cfg.ReviewEndpoint, log)

	// archive is optional: skipped entirely when MinIO is not configured
	var archive storage.Storage
	if minioCfg := config.GetMinioConfig(); minioCfg != nil {
		archive, err = storage.New(storage.TypeMinio, minioCfg, log)
		if err != nil {
			log.Error("Failed to create archive storage, continuing without it", logger.Error(err))
			archive = nil
		}
	}

	taskQueue, err := queue.NewAsynqQueue(&workerCfg.Queue)
	if err != nil {
		log.Fatal("Failed to create task queue", logger.Error(err))
	}
	defer taskQueue.Close()

	svc := review.NewService(review.Deps{
		Queue:    taskQueue,
		Pipeline: pipe,
		Notifier: notifier,
		Archive:  archive,
		Logger:   log,
	})

	reviewWorker, err := worker.NewReviewWorker(&workerCfg.Worker, svc, log)
	if err != nil {
		log.Fatal("Failed to create review worker", logger.Error(err))
	}

	// periodic retention sweep over archived review artifacts
	var sweeper *cron.Cron
	if archive != nil && cfg.ArchiveSweepSchedule != "" {
		retention := time.Duration(cfg.ArchiveRetentionDays) * 24 * time.Hour
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.ArchiveSweepSchedule, func() {
			if err := svc.SweepArchive(context.Background(), retention); err != nil {
				log.Error("Archive sweep failed", logger.Error(err))
			}
		})
		if err != nil {
			log.Fatal("Invalid archive sweep schedule",
				logger.String("schedule", cfg.ArchiveSweepSchedule), logger.Error(err))
		}
		sweeper.Start()
		log.Info("Archive sweep scheduled",
			logger.String("schedule", cfg.ArchiveSweepSchedule),
			logger.Int("retentionDays", cfg.ArchiveRetentionDays),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reviewWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start worker", logger.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	if sweeper != nil {
		sweeper.Stop()
	}
	reviewWorker.Stop()
	log.Info("Worker stopped")
}
