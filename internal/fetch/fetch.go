// Package fetch downloads proposal attachments from the backend into
// uniquely named temporary files.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"proposal-reviewer/internal/classify"
	"proposal-reviewer/pkg/logger"
)

const downloadTimeout = 30 * time.Second

// Fetcher resolves attachment paths against the backend base URL.
type Fetcher struct {
	backendURL string
	client     *http.Client
	logger     logger.Logger
}

// New creates a Fetcher for the given backend base URL.
func New(backendURL string, log logger.Logger) *Fetcher {
	return &Fetcher{
		backendURL: strings.TrimRight(backendURL, "/"),
		client:     &http.Client{Timeout: downloadTimeout},
		logger:     log,
	}
}

// Fetch downloads the attachment and writes it to a temp file whose
// extension is inferred from the path, the response Content-Type, or
// the payload itself. It returns the temp path and the response
// Content-Type, which the caller feeds into format classification. The
// caller owns the returned file and must remove it. The primary route
// is GET {backend}/attachments?path=<escaped>; a 404 there falls back
// to a raw path join, which some backends serve for legacy attachments.
func (f *Fetcher) Fetch(ctx context.Context, attachmentPath string) (string, string, error) {
	primary := f.backendURL + "/attachments?path=" + escapePath(attachmentPath)
	f.logger.Debug("downloading attachment", logger.String("url", primary))

	resp, err := f.get(ctx, primary)
	if err != nil {
		return "", "", fmt.Errorf("download %s: %w", attachmentPath, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		alternative := f.backendURL + "/" + strings.TrimLeft(attachmentPath, "/")
		f.logger.Debug("attachment not found, trying raw path", logger.String("url", alternative))
		resp, err = f.get(ctx, alternative)
		if err != nil {
			return "", "", fmt.Errorf("download %s: %w", attachmentPath, err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", "", fmt.Errorf("download %s: unexpected status %d", attachmentPath, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("download %s: read body: %w", attachmentPath, err)
	}

	contentType := resp.Header.Get("Content-Type")
	ext := tempExtension(attachmentPath, contentType, body)
	tmp, err := os.CreateTemp("", "attachment-*"+ext)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("close temp file: %w", err)
	}

	f.logger.Info("attachment downloaded",
		logger.String("path", attachmentPath),
		logger.String("localPath", tmp.Name()),
		logger.String("contentType", contentType),
		logger.Int("bytes", len(body)),
	)
	return tmp.Name(), contentType, nil
}

func (f *Fetcher) get(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	return f.client.Do(req)
}

// escapePath percent-encodes an attachment path while keeping its
// slashes, matching what the backend expects in the path query param.
func escapePath(p string) string {
	u := url.URL{Path: p}
	return u.EscapedPath()
}

// tempExtension picks the temp file extension: URL extension when
// recognized, then Content-Type, then payload sniffing. ".pdf" is the
// documented last resort for undeterminable downloads. This default is
// independent of classification, which treats unrecognized files as
// Unknown rather than PDF.
func tempExtension(ref, contentType string, body []byte) string {
	if ext := classify.Ext(ref); classify.Supported(ext) {
		return ext
	}
	if ext := classify.ExtensionFromContentType(contentType); ext != "" {
		return ext
	}
	if mt := mimetype.Detect(body); mt != nil {
		if ext := strings.ToLower(mt.Extension()); classify.Supported(ext) {
			return ext
		}
	}
	return ".pdf"
}
