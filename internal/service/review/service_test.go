package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/internal/notify"
	"proposal-reviewer/internal/pipeline"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
)

type fakeRepo struct {
	pending []string
	docs    map[string][]models.DocumentProposal
	err     error
}

func (r *fakeRepo) PendingProposalIDs(ctx context.Context) ([]string, error) {
	return r.pending, r.err
}

func (r *fakeRepo) DocumentProposals(ctx context.Context, proposalID string) ([]models.DocumentProposal, error) {
	return r.docs[proposalID], nil
}

func (r *fakeRepo) Close() {}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []*models.ReviewTask
	statuses []*queue.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *models.ReviewTask) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, task)
	return nil
}

func (q *fakeQueue) SaveStatus(ctx context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statuses = append(q.statuses, status)
	return nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (*queue.TaskStatus, error) {
	return nil, nil
}

func (q *fakeQueue) Close() error { return nil }

type fakeArchive struct {
	mu         sync.Mutex
	storedKeys []string
	thresholds []time.Time
	err        error
}

func (a *fakeArchive) Store(ctx context.Context, reader io.Reader, key string, size int64) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.storedKeys = append(a.storedKeys, key)
	return key, nil
}

func (a *fakeArchive) CleanupBefore(ctx context.Context, threshold time.Time) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thresholds = append(a.thresholds, threshold)
	return nil
}

func TestCheckProposalsEnqueuesPerDocument(t *testing.T) {
	repo := &fakeRepo{
		pending: []string{"p1", "p2"},
		docs: map[string][]models.DocumentProposal{
			"p1": {
				{ID: "d1", ProposalID: "p1", AttachmentPath: "uploads/a.pdf"},
				{ID: "d2", ProposalID: "p1", AttachmentPath: "uploads/b.docx"},
			},
			"p2": {
				{ID: "d3", ProposalID: "p2", AttachmentPath: "uploads/c.md"},
			},
		},
	}
	q := &fakeQueue{}
	svc := NewService(Deps{Repo: repo, Queue: q, Logger: logger.NewTestLogger()})

	ids, enqueued, err := svc.CheckProposals(context.Background())
	if err != nil {
		t.Fatalf("CheckProposals: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2", len(ids))
	}
	if enqueued != 3 {
		t.Fatalf("enqueued = %d, want 3", enqueued)
	}
	seen := make(map[string]bool)
	for _, task := range q.enqueued {
		if task.ID == "" {
			t.Fatal("task without id")
		}
		seen[task.AttachmentPath] = true
	}
	for _, path := range []string{"uploads/a.pdf", "uploads/b.docx", "uploads/c.md"} {
		if !seen[path] {
			t.Fatalf("no task enqueued for %s", path)
		}
	}
}

func TestCheckProposalsRepoError(t *testing.T) {
	repo := &fakeRepo{err: fmt.Errorf("connection refused")}
	svc := NewService(Deps{Repo: repo, Queue: &fakeQueue{}, Logger: logger.NewTestLogger()})

	if _, _, err := svc.CheckProposals(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPendingProposals(t *testing.T) {
	repo := &fakeRepo{pending: []string{"p7"}}
	svc := NewService(Deps{Repo: repo, Logger: logger.NewTestLogger()})

	ids, err := svc.PendingProposals(context.Background())
	if err != nil {
		t.Fatalf("PendingProposals: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p7" {
		t.Fatalf("ids = %v", ids)
	}
}

type fetcherFunc func(ctx context.Context, attachmentPath string) (string, string, error)

func (f fetcherFunc) Fetch(ctx context.Context, attachmentPath string) (string, string, error) {
	return f(ctx, attachmentPath)
}

type deciderFunc func(ctx context.Context, documentText string) models.Decision

func (f deciderFunc) Decide(ctx context.Context, documentText string) models.Decision {
	return f(ctx, documentText)
}

// HandleTask delivers the decision and records a terminal status even
// when the pipeline rejects.
func TestHandleTaskDeliversDecision(t *testing.T) {
	var delivered notify.ReviewPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&delivered); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := logger.NewTestLogger()
	fetcher := fetcherFunc(func(ctx context.Context, attachmentPath string) (string, string, error) {
		tmp, err := os.CreateTemp("", "attachment-*.md")
		if err != nil {
			return "", "", err
		}
		tmp.WriteString("proposal body text")
		tmp.Close()
		return tmp.Name(), "text/markdown", nil
	})
	decider := deciderFunc(func(ctx context.Context, documentText string) models.Decision {
		return models.Decision{Outcome: models.OutcomeAccept, Rationale: "looks complete"}
	})
	pipe := pipeline.New(fetcher, nil, decider, log)

	q := &fakeQueue{}
	svc := NewService(Deps{
		Queue:    q,
		Pipeline: pipe,
		Notifier: notify.New(srv.URL, log),
		Logger:   log,
	})

	task := &models.ReviewTask{ID: "t1", ProposalID: "p1", DocumentID: "d1", AttachmentPath: "uploads/a.md"}
	if err := svc.HandleTask(context.Background(), task); err != nil {
		t.Fatalf("HandleTask: %v", err)
	}

	if delivered.ProposalID != "p1" || !delivered.Approve || delivered.Respond != "looks complete" {
		t.Fatalf("delivered payload = %+v", delivered)
	}
	if len(q.statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(q.statuses))
	}
	if q.statuses[0].Outcome != string(models.OutcomeAccept) {
		t.Fatalf("status outcome = %q", q.statuses[0].Outcome)
	}
}

// Delivery failures are non-fatal: the task still completes so it is
// not retried into a duplicate review.
func TestHandleTaskDeliveryFailureNonFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	log := logger.NewTestLogger()
	fetcher := fetcherFunc(func(ctx context.Context, attachmentPath string) (string, string, error) {
		return "", "", fmt.Errorf("backend unreachable")
	})
	decider := deciderFunc(func(ctx context.Context, documentText string) models.Decision {
		return models.Reject("unused")
	})
	pipe := pipeline.New(fetcher, nil, decider, log)

	q := &fakeQueue{}
	svc := NewService(Deps{
		Queue:    q,
		Pipeline: pipe,
		Notifier: notify.New(srv.URL, log),
		Logger:   log,
	})

	task := &models.ReviewTask{ID: "t2", ProposalID: "p2", DocumentID: "d2", AttachmentPath: "uploads/gone.pdf"}
	if err := svc.HandleTask(context.Background(), task); err != nil {
		t.Fatalf("HandleTask: %v", err)
	}
	if len(q.statuses) != 1 || q.statuses[0].Outcome != string(models.OutcomeReject) {
		t.Fatalf("statuses = %+v", q.statuses)
	}
}

func TestHandleTaskArchivesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	log := logger.NewTestLogger()
	fetcher := fetcherFunc(func(ctx context.Context, attachmentPath string) (string, string, error) {
		return "", "", fmt.Errorf("backend unreachable")
	})
	decider := deciderFunc(func(ctx context.Context, documentText string) models.Decision {
		return models.Reject("unused")
	})

	archive := &fakeArchive{}
	svc := NewService(Deps{
		Queue:    &fakeQueue{},
		Pipeline: pipeline.New(fetcher, nil, decider, log),
		Notifier: notify.New(srv.URL, log),
		Archive:  archive,
		Logger:   log,
	})

	task := &models.ReviewTask{ID: "t3", ProposalID: "p3", DocumentID: "d3", AttachmentPath: "uploads/a.pdf"}
	if err := svc.HandleTask(context.Background(), task); err != nil {
		t.Fatalf("HandleTask: %v", err)
	}
	if len(archive.storedKeys) != 1 || archive.storedKeys[0] != "reviews/p3/d3.json" {
		t.Fatalf("stored keys = %v", archive.storedKeys)
	}
}

func TestSweepArchive(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewService(Deps{Archive: archive, Logger: logger.NewTestLogger()})

	retention := 30 * 24 * time.Hour
	before := time.Now().Add(-retention)
	if err := svc.SweepArchive(context.Background(), retention); err != nil {
		t.Fatalf("SweepArchive: %v", err)
	}
	after := time.Now().Add(-retention)

	if len(archive.thresholds) != 1 {
		t.Fatalf("cleanup calls = %d, want 1", len(archive.thresholds))
	}
	got := archive.thresholds[0]
	if got.Before(before) || got.After(after) {
		t.Fatalf("threshold = %v, want within [%v, %v]", got, before, after)
	}
}

func TestSweepArchiveError(t *testing.T) {
	archive := &fakeArchive{err: fmt.Errorf("bucket gone")}
	svc := NewService(Deps{Archive: archive, Logger: logger.NewTestLogger()})

	if err := svc.SweepArchive(context.Background(), time.Hour); err == nil {
		t.Fatal("expected error")
	}
}

func TestSweepArchiveDisabled(t *testing.T) {
	svc := NewService(Deps{Logger: logger.NewTestLogger()})
	if err := svc.SweepArchive(context.Background(), time.Hour); err != nil {
		t.Fatalf("SweepArchive without archive: %v", err)
	}
}
