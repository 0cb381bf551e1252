package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"proposal-reviewer/internal/models"
	"proposal-reviewer/pkg/logger"
)

const systemPrompt = `You are a document review specialist. Analyze the document content and decide whether to approve (accept) or refuse (reject) it.

Evaluate against these criteria:
1. Completeness of the information
2. Clarity and readability
3. Validity of the content
4. Presence of sensitive or inappropriate material

Answer EXACTLY in the following JSON format:
{
    "approve": "accept" or "reject",
    "description": "Detailed explanation of the decision"
}`

const (
	invalidStatusRationale = "invalid approval status from model"
	missingRationale       = "no detailed description"
)

// approvePattern finds the first brace-delimited substring carrying an
// "approve" key with no nested braces; the model often wraps its JSON
// in prose.
var approvePattern = regexp.MustCompile(`\{[^{}]*"approve"[^{}]*\}`)

// Reviewer prompts the language capability and parses its verdict.
type Reviewer struct {
	client ChatClient
	logger logger.Logger
}

// NewReviewer creates a Reviewer on top of a chat client.
func NewReviewer(client ChatClient, log logger.Logger) *Reviewer {
	return &Reviewer{client: client, logger: log}
}

// Decide asks the model to review the document text. It never fails:
// any transport or parsing problem collapses to a reject carrying the
// failure description, so an undecidable document is never approved.
func (r *Reviewer) Decide(ctx context.Context, documentText string) models.Decision {
	reply, err := r.client.Chat(ctx, systemPrompt, "Review the following document:\n\n"+documentText)
	if err != nil {
		r.logger.Error("document review call failed", logger.Error(err))
		return models.Reject(fmt.Sprintf("document review failed: %v", err))
	}
	decision := ParseDecision(reply)
	r.logger.Info("document reviewed",
		logger.String("outcome", string(decision.Outcome)),
		logger.Int("replyBytes", len(reply)),
	)
	return decision
}

// ParseDecision turns unreliable free-text model output into a
// well-formed Decision. The fallback chain, in order:
//
//  1. decode the first flat {"approve": ...} substring as JSON;
//  2. coerce any approve value other than accept/reject to a reject
//     with a fixed diagnostic;
//  3. substitute a placeholder when the description is missing;
//  4. with no JSON at all, scan for the word "accept" anywhere and let
//     its presence decide, keeping the full trimmed reply as rationale;
//  5. on a JSON decode failure, reject with the raw reply embedded.
//
// Every path yields a valid two-field Decision; nothing propagates.
func ParseDecision(raw string) models.Decision {
	if match := approvePattern.FindString(raw); match != "" {
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(match), &fields); err != nil {
			return models.Reject(fmt.Sprintf("could not parse model response: %s", strings.TrimSpace(raw)))
		}
		if value, ok := fields["approve"]; ok {
			status, _ := value.(string)
			if status != string(models.OutcomeAccept) && status != string(models.OutcomeReject) {
				return models.Reject(invalidStatusRationale)
			}
			rationale, _ := fields["description"].(string)
			if rationale == "" {
				rationale = missingRationale
			}
			return models.Decision{Outcome: models.Outcome(status), Rationale: rationale}
		}
	}

	if strings.Contains(strings.ToLower(raw), string(models.OutcomeAccept)) {
		return models.Decision{Outcome: models.OutcomeAccept, Rationale: strings.TrimSpace(raw)}
	}
	return models.Reject(strings.TrimSpace(raw))
}
