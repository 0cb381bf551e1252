// Package queue dispatches attachment reviews to background workers
// over Redis.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"proposal-reviewer/internal/models"
)

// TaskTypeDocumentReview is the asynq task type for one attachment.
const TaskTypeDocumentReview = "review:document"

// statusTTL bounds how long terminal task statuses stay queryable.
const statusTTL = 24 * time.Hour

// Queue enqueues review tasks and records their terminal status.
type Queue interface {
	Enqueue(ctx context.Context, task *models.ReviewTask) error
	SaveStatus(ctx context.Context, status *TaskStatus) error
	Status(ctx context.Context, taskID string) (*TaskStatus, error)
	Close() error
}

// TaskStatus is the terminal record of one review task, kept in Redis
// so the HTTP surface can answer status queries after the worker is
// done with the task.
type TaskStatus struct {
	TaskID     string    `json:"taskId"`
	ProposalID string    `json:"proposalId"`
	Status     string    `json:"status"`
	Outcome    string    `json:"outcome,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// Config defines queue connection and dispatch settings.
type Config struct {
	RedisAddr      string        `yaml:"redisAddr"`
	RedisDB        int           `yaml:"redisDB"`
	MaxRetries     int           `yaml:"maxRetries"`
	ProcessTimeout time.Duration `yaml:"processTimeout"`
	QueueName      string        `yaml:"queueName"`
}

// AsynqQueue implements Queue on asynq plus a plain Redis client for
// status records.
type AsynqQueue struct {
	client    *asynq.Client
	redis     *redis.Client
	queueName string
	cfg       *Config
}

// NewAsynqQueue creates a queue instance.
func NewAsynqQueue(cfg *Config) (*AsynqQueue, error) {
	if cfg.QueueName == "" {
		cfg.QueueName = "default"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = 10 * time.Minute
	}

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		redis:     redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}),
		queueName: cfg.QueueName,
		cfg:       cfg,
	}, nil
}

// Enqueue schedules one attachment review. The task ID doubles as the
// asynq task ID, so re-enqueueing the same review is a no-op while the
// first is still pending.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *models.ReviewTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal review task: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(q.queueName),
		asynq.MaxRetry(q.cfg.MaxRetries),
		asynq.Timeout(q.cfg.ProcessTimeout),
		asynq.TaskID(task.ID),
	}
	t := asynq.NewTask(TaskTypeDocumentReview, payload, opts...)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue review task: %w", err)
	}
	return nil
}

// SaveStatus records a task's terminal status with a bounded TTL.
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal task status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.TaskID), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("save task status: %w", err)
	}
	return nil
}

// Status returns a previously saved terminal status.
func (q *AsynqQueue) Status(ctx context.Context, taskID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(taskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("task %s: status not found", taskID)
		}
		return nil, fmt.Errorf("get task status: %w", err)
	}
	var status TaskStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("unmarshal task status: %w", err)
	}
	return &status, nil
}

// Close releases both connections.
func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

func statusKey(taskID string) string {
	return "review_status:" + taskID
}
