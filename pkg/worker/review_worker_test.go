package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
)

type handlerFunc func(ctx context.Context, task *models.ReviewTask) error

func (f handlerFunc) HandleTask(ctx context.Context, task *models.ReviewTask) error {
	return f(ctx, task)
}

func newTestWorker(t *testing.T, handler TaskHandler) *ReviewWorker {
	t.Helper()
	w, err := NewReviewWorker(&Config{RedisAddr: "127.0.0.1:6379"}, handler, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewReviewWorker: %v", err)
	}
	return w
}

// Stop is reachable from both the signal handler and the
// context-cancel goroutine; a second call must not panic.
func TestStopIdempotent(t *testing.T) {
	w := newTestWorker(t, handlerFunc(func(context.Context, *models.ReviewTask) error {
		return nil
	}))

	if err := w.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestHandleReviewDelegates(t *testing.T) {
	var got *models.ReviewTask
	w := newTestWorker(t, handlerFunc(func(_ context.Context, task *models.ReviewTask) error {
		got = task
		return nil
	}))

	payload, err := json.Marshal(&models.ReviewTask{
		ID:             "t1",
		ProposalID:     "p1",
		DocumentID:     "d1",
		AttachmentPath: "uploads/a.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	task := asynq.NewTask(queue.TaskTypeDocumentReview, payload)
	if err := w.handleReview(context.Background(), task); err != nil {
		t.Fatalf("handleReview: %v", err)
	}
	if got == nil || got.ID != "t1" || got.AttachmentPath != "uploads/a.pdf" {
		t.Fatalf("handler got %+v", got)
	}
}

func TestHandleReviewMalformedPayload(t *testing.T) {
	w := newTestWorker(t, handlerFunc(func(context.Context, *models.ReviewTask) error {
		t.Error("handler should not run for a malformed payload")
		return nil
	}))

	task := asynq.NewTask(queue.TaskTypeDocumentReview, []byte("not json"))
	if err := w.handleReview(context.Background(), task); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleReviewMissingFields(t *testing.T) {
	w := newTestWorker(t, handlerFunc(func(context.Context, *models.ReviewTask) error {
		t.Error("handler should not run for an incomplete task")
		return nil
	}))

	payload, _ := json.Marshal(&models.ReviewTask{ID: "t1"})
	task := asynq.NewTask(queue.TaskTypeDocumentReview, payload)
	if err := w.handleReview(context.Background(), task); err == nil {
		t.Fatal("expected error")
	}
}
