package worker

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"

	"proposal-reviewer/pkg/logger"
)

// Worker runs background review tasks until stopped.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config defines worker connection and concurrency settings.
type Config struct {
	RedisAddr   string         `yaml:"redisAddr"`
	RedisDB     int            `yaml:"redisDB"`
	Concurrency int            `yaml:"concurrency"`
	Queues      map[string]int `yaml:"queues"`
}

// BaseWorker carries the asynq server plumbing shared by workers.
type BaseWorker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	logger   logger.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// Stop shuts the worker down. Both the signal handler and the
// context-cancel goroutine installed by Start can reach this during
// shutdown, so it must tolerate being called more than once.
func (w *BaseWorker) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.server.Stop()
	})
	return nil
}
