// Package repository reads pending proposals and their attachments
// from the backend Postgres database.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/pkg/logger"
)

// ProposalRepository lists the work the reviewer has to do. The
// reviewer only reads; status transitions belong to the backend.
type ProposalRepository interface {
	PendingProposalIDs(ctx context.Context) ([]string, error)
	DocumentProposals(ctx context.Context, proposalID string) ([]models.DocumentProposal, error)
	Close()
}

const (
	pendingProposalsQuery = `SELECT id FROM "Proposal" WHERE status = '` + models.ProposalStatusPending + `'`

	documentProposalsQuery = `SELECT id, proposal_id, attachment_path, mimetype
FROM "DocumentProposal" WHERE proposal_id = $1`
)

// PostgresRepository implements ProposalRepository on a pgx pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPostgres connects to the backend database and verifies the
// connection before returning.
func NewPostgres(ctx context.Context, databaseURL string, log logger.Logger) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{pool: pool, logger: log}, nil
}

// PendingProposalIDs returns the ids of all proposals awaiting review.
func (r *PostgresRepository) PendingProposalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, pendingProposalsQuery)
	if err != nil {
		return nil, fmt.Errorf("query pending proposals: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan proposal id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read pending proposals: %w", err)
	}
	return ids, nil
}

// DocumentProposals returns every attachment row for one proposal.
func (r *PostgresRepository) DocumentProposals(ctx context.Context, proposalID string) ([]models.DocumentProposal, error) {
	rows, err := r.pool.Query(ctx, documentProposalsQuery, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query document proposals: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentProposal
	for rows.Next() {
		var doc models.DocumentProposal
		if err := rows.Scan(&doc.ID, &doc.ProposalID, &doc.AttachmentPath, &doc.Mimetype); err != nil {
			return nil, fmt.Errorf("scan document proposal: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read document proposals: %w", err)
	}
	return docs, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}
