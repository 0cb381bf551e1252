package handlers

import (
	"proposal-reviewer/pkg/logger"
)

type Handlers struct {
	Proposal *ProposalHandler
}

func NewHandlers(service ProposalService, logger logger.Logger) *Handlers {
	return &Handlers{
		Proposal: NewProposalHandler(service, logger),
	}
}
