package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
)

// TaskHandler processes one dequeued review task.
type TaskHandler interface {
	HandleTask(ctx context.Context, task *models.ReviewTask) error
}

// ReviewWorker consumes review:document tasks.
type ReviewWorker struct {
	BaseWorker
	handler TaskHandler
}

// NewReviewWorker creates a worker bound to the given handler.
func NewReviewWorker(cfg *Config, handler TaskHandler, log logger.Logger) (*ReviewWorker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = map[string]int{"default": 1}
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &ReviewWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		handler: handler,
	}
	w.mux.HandleFunc(queue.TaskTypeDocumentReview, w.handleReview)
	return w, nil
}

func (w *ReviewWorker) handleReview(ctx context.Context, t *asynq.Task) error {
	var task models.ReviewTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("could not unmarshal review task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("unmarshal review task: %w", err)
	}

	if task.ID == "" || task.ProposalID == "" || task.AttachmentPath == "" {
		w.logger.Error("review task missing required fields",
			logger.String("taskId", task.ID),
			logger.String("proposalId", task.ProposalID),
		)
		return fmt.Errorf("invalid review task: missing required fields")
	}

	w.logger.Info("processing review task",
		logger.String("taskId", task.ID),
		logger.String("proposalId", task.ProposalID),
		logger.String("attachmentPath", task.AttachmentPath),
	)
	return w.handler.HandleTask(ctx, &task)
}

// Start runs the worker in the background and stops it when ctx ends.
func (w *ReviewWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
