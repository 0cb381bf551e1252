package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"proposal-reviewer/pkg/logger"
)

// ProposalService is the surface the HTTP layer needs from the review
// service.
type ProposalService interface {
	CheckProposals(ctx context.Context) ([]string, int, error)
	PendingProposals(ctx context.Context) ([]string, error)
}

type ProposalHandler struct {
	service ProposalService
	logger  logger.Logger
}

// CheckResponse describes the outcome of one polling pass.
type CheckResponse struct {
	Status             string   `json:"status"`
	Message            string   `json:"message"`
	PendingProposalIDs []string `json:"pending_proposal_ids"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewProposalHandler(service ProposalService, logger logger.Logger) *ProposalHandler {
	return &ProposalHandler{
		service: service,
		logger:  logger,
	}
}

// CheckProposals triggers a poll for pending proposals and enqueues a
// review task for each attachment found.
func (h *ProposalHandler) CheckProposals(c *gin.Context) {
	ids, enqueued, err := h.service.CheckProposals(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to check proposals", err)
		return
	}

	c.JSON(http.StatusOK, CheckResponse{
		Status:             "ok",
		Message:            fmt.Sprintf("Enqueued %d review tasks for %d pending proposals", enqueued, len(ids)),
		PendingProposalIDs: ids,
	})
}

// PendingProposals lists proposals currently awaiting review.
func (h *ProposalHandler) PendingProposals(c *gin.Context) {
	ids, err := h.service.PendingProposals(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list pending proposals", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(ids),
		"proposal_ids": ids,
	})
}

// Health reports liveness.
func (h *ProposalHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *ProposalHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
