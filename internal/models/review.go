package models

import "time"

// FileKind classifies an attachment by format. Unknown is a valid
// terminal classification, not an error.
type FileKind string

const (
	KindImage    FileKind = "image"
	KindPDF      FileKind = "pdf"
	KindDocx     FileKind = "docx"
	KindMarkdown FileKind = "md"
	KindUnknown  FileKind = "unknown"
)

// Outcome is the two-valued review verdict.
type Outcome string

const (
	OutcomeAccept Outcome = "accept"
	OutcomeReject Outcome = "reject"
)

// Approved reports whether the outcome allows the document through.
func (o Outcome) Approved() bool { return o == OutcomeAccept }

// Decision is the structured verdict extracted from the review model.
// Outcome is always exactly accept or reject; anything the model said
// that could not be understood collapses to a reject with the failure
// described in Rationale.
type Decision struct {
	Outcome   Outcome `json:"approve"`
	Rationale string  `json:"description"`
}

// Reject builds a fail-closed decision carrying a diagnostic rationale.
func Reject(rationale string) Decision {
	return Decision{Outcome: OutcomeReject, Rationale: rationale}
}

// PipelineResult is the terminal output of one review run. It is
// returned to the caller and never persisted by the pipeline itself.
type PipelineResult struct {
	Decision      Decision  `json:"decision"`
	ExtractedText string    `json:"ocrText"`
	PageCount     int       `json:"totalPages"`
	FileKind      FileKind  `json:"fileType"`
	Source        string    `json:"fileUrl"`
	CompletedAt   time.Time `json:"completedAt"`
}
