// Package notify delivers review decisions to the external review
// service.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"proposal-reviewer/pkg/logger"
)

const sendTimeout = 30 * time.Second

// ReviewPayload is the review service's expected request body.
type ReviewPayload struct {
	ProposalID string `json:"proposal_id"`
	Approve    bool   `json:"approve"`
	Respond    string `json:"respond"`
}

// Notifier posts decisions to a fixed endpoint. Delivery failures are
// the caller's to log; the reviewer never retries, the review service
// re-polls on its side.
type Notifier struct {
	endpoint string
	client   *http.Client
	logger   logger.Logger
}

// New creates a Notifier for the review service endpoint.
func New(endpoint string, log logger.Logger) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: sendTimeout},
		logger:   log,
	}
}

// Send posts one decision. 200 and 201 count as delivered; any other
// status, or a transport failure, is returned as an error.
func (n *Notifier) Send(ctx context.Context, payload ReviewPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal review payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send review result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("review service returned %d: %s", resp.StatusCode, string(detail))
	}

	n.logger.Info("review result delivered",
		logger.String("proposalId", payload.ProposalID),
		logger.Bool("approve", payload.Approve),
	)
	return nil
}
