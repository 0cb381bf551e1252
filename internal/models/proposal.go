package models

import "time"

// Proposal mirrors a row of the backend "Proposal" table. Only the
// columns the reviewer reads are mapped.
type Proposal struct {
	ID     string
	Status string
}

// ProposalStatusPending marks proposals awaiting document review.
const ProposalStatusPending = "PENDING"

// DocumentProposal links an uploaded attachment to its proposal.
type DocumentProposal struct {
	ID             string
	ProposalID     string
	AttachmentPath string
	Mimetype       string
}

// ReviewTask is the queue payload for one attachment review.
type ReviewTask struct {
	ID             string    `json:"id"`
	ProposalID     string    `json:"proposalId"`
	DocumentID     string    `json:"documentId"`
	AttachmentPath string    `json:"attachmentPath"`
	Mimetype       string    `json:"mimetype"`
	CreatedAt      time.Time `json:"createdAt"`
}
