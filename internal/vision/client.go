// Package vision wraps the image recognition capability behind a
// single-call HTTP client.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config holds the recognition endpoint settings.
type Config struct {
	Endpoint    string
	Model       string
	MaxSegments int
	Temperature float64
	Timeout     time.Duration
}

// Client sends one image plus one instruction per call and returns the
// capability's textual answer. No retries, no caching: every page of a
// document is an independent call.
type Client struct {
	endpoint    string
	model       string
	maxSegments int
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a recognition client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxSegments := cfg.MaxSegments
	if maxSegments <= 0 {
		maxSegments = 6
	}
	return &Client{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		maxSegments: maxSegments,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// generateResponse covers both reply shapes the capability produces: a
// flat response string, or a list of descriptive segments.
type generateResponse struct {
	Response string    `json:"response"`
	Results  []segment `json:"results,omitempty"`
	Model    string    `json:"model,omitempty"`
	Done     bool      `json:"done,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type segment struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Recognize submits one image and one instruction and returns the
// answer as a single flat string. Segmented replies are joined with
// newlines in the order the capability returned them, so downstream
// aggregation never inspects response shape.
func (c *Client) Recognize(ctx context.Context, img image.Image, instruction string) (string, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	base64Img := base64.StdEncoding.EncodeToString(buf.Bytes())

	reqBody := map[string]interface{}{
		"model":       c.model,
		"prompt":      fmt.Sprintf("[img]%s[/img]\n%s", base64Img, instruction),
		"stream":      false,
		"max_num":     c.maxSegments,
		"temperature": c.temperature,
	}
	reqData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(reqData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("recognition error: %s", result.Error)
	}

	return flatten(&result), nil
}

// flatten normalizes the capability's reply shapes into one string.
func flatten(r *generateResponse) string {
	if len(r.Results) == 0 {
		return r.Response
	}
	parts := make([]string, 0, len(r.Results))
	for _, s := range r.Results {
		parts = append(parts, s.Description)
	}
	return strings.Join(parts, "\n")
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
