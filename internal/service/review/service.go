// Package review coordinates proposal polling, task dispatch, and the
// per-attachment review flow.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/internal/notify"
	"proposal-reviewer/internal/pipeline"
	"proposal-reviewer/internal/repository"
	"proposal-reviewer/pkg/logger"
	"proposal-reviewer/pkg/queue"
	"proposal-reviewer/pkg/storage"
)

// Deps wires a Service. The server side needs Repo and Queue; the
// worker side needs Pipeline and Notifier. Archive is optional on the
// worker side.
type Deps struct {
	Repo     repository.ProposalRepository
	Queue    queue.Queue
	Pipeline *pipeline.Pipeline
	Notifier *notify.Notifier
	Archive  storage.Storage
	Logger   logger.Logger
}

// Service implements both halves of the review flow.
type Service struct {
	repo     repository.ProposalRepository
	queue    queue.Queue
	pipeline *pipeline.Pipeline
	notifier *notify.Notifier
	archive  storage.Storage
	logger   logger.Logger
}

// NewService creates a Service from its dependencies.
func NewService(deps Deps) *Service {
	return &Service{
		repo:     deps.Repo,
		queue:    deps.Queue,
		pipeline: deps.Pipeline,
		notifier: deps.Notifier,
		archive:  deps.Archive,
		logger:   deps.Logger,
	}
}

// PendingProposals lists the ids of proposals awaiting review.
func (s *Service) PendingProposals(ctx context.Context) ([]string, error) {
	return s.repo.PendingProposalIDs(ctx)
}

// CheckProposals polls the database and enqueues one review task per
// pending attachment. Proposals are fanned out concurrently; the
// per-attachment pipeline itself runs later on the workers. Returns
// the pending proposal ids and how many tasks were enqueued.
func (s *Service) CheckProposals(ctx context.Context) ([]string, int, error) {
	ids, err := s.repo.PendingProposalIDs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list pending proposals: %w", err)
	}
	s.logger.Info("pending proposals found", logger.Int("count", len(ids)))

	var mu sync.Mutex
	enqueued := 0

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		proposalID := id
		g.Go(func() error {
			docs, err := s.repo.DocumentProposals(gctx, proposalID)
			if err != nil {
				return fmt.Errorf("list documents for proposal %s: %w", proposalID, err)
			}
			for _, doc := range docs {
				task := &models.ReviewTask{
					ID:             uuid.New().String(),
					ProposalID:     doc.ProposalID,
					DocumentID:     doc.ID,
					AttachmentPath: doc.AttachmentPath,
					Mimetype:       doc.Mimetype,
					CreatedAt:      time.Now(),
				}
				if err := s.queue.Enqueue(gctx, task); err != nil {
					return fmt.Errorf("enqueue document %s: %w", doc.ID, err)
				}
				s.logger.Info("review task enqueued",
					logger.String("taskId", task.ID),
					logger.String("proposalId", task.ProposalID),
					logger.String("attachmentPath", task.AttachmentPath),
				)
				mu.Lock()
				enqueued++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ids, enqueued, err
	}
	return ids, enqueued, nil
}

// HandleTask runs the review pipeline for one attachment and forwards
// the decision to the review service. Delivery and archival failures
// are logged, not returned: the decision itself was made, and
// re-running the pipeline would not change it.
func (s *Service) HandleTask(ctx context.Context, task *models.ReviewTask) error {
	started := time.Now()
	result := s.pipeline.Run(ctx, task.AttachmentPath)

	s.logger.Info("review pipeline finished",
		logger.String("taskId", task.ID),
		logger.String("proposalId", task.ProposalID),
		logger.String("outcome", string(result.Decision.Outcome)),
		logger.Int("pages", result.PageCount),
		logger.Duration("elapsed", time.Since(started)),
	)

	payload := notify.ReviewPayload{
		ProposalID: task.ProposalID,
		Approve:    result.Decision.Outcome.Approved(),
		Respond:    result.Decision.Rationale,
	}
	if err := s.notifier.Send(ctx, payload); err != nil {
		s.logger.Warn("review result delivery failed",
			logger.String("proposalId", task.ProposalID),
			logger.Error(err),
		)
	}

	s.archiveResult(ctx, task, &result)
	s.saveStatus(ctx, task, &result, started)
	return nil
}

// SweepArchive deletes archived review artifacts older than the
// retention window. No-op when archiving is disabled.
func (s *Service) SweepArchive(ctx context.Context, retention time.Duration) error {
	if s.archive == nil {
		return nil
	}
	threshold := time.Now().Add(-retention)
	if err := s.archive.CleanupBefore(ctx, threshold); err != nil {
		return fmt.Errorf("sweep review artifacts: %w", err)
	}
	s.logger.Info("review artifacts swept", logger.Time("threshold", threshold))
	return nil
}

// archiveResult stores the full pipeline result as JSON for audit.
func (s *Service) archiveResult(ctx context.Context, task *models.ReviewTask, result *models.PipelineResult) {
	if s.archive == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("could not marshal review artifact", logger.Error(err))
		return
	}
	key := fmt.Sprintf("reviews/%s/%s.json", task.ProposalID, task.DocumentID)
	if _, err := s.archive.Store(ctx, bytes.NewReader(data), key, int64(len(data))); err != nil {
		s.logger.Warn("could not archive review artifact",
			logger.String("key", key),
			logger.Error(err),
		)
		return
	}
	s.logger.Debug("review artifact archived", logger.String("key", key))
}

func (s *Service) saveStatus(ctx context.Context, task *models.ReviewTask, result *models.PipelineResult, started time.Time) {
	if s.queue == nil {
		return
	}
	status := &queue.TaskStatus{
		TaskID:     task.ID,
		ProposalID: task.ProposalID,
		Status:     "completed",
		Outcome:    string(result.Decision.Outcome),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := s.queue.SaveStatus(ctx, status); err != nil {
		s.logger.Warn("could not save task status",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
	}
}
