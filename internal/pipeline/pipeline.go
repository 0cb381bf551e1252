// Package pipeline runs one attachment through the full
// document-to-decision flow: fetch, classify, extract, recognize,
// decide, cleanup.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"proposal-reviewer/internal/classify"
	"proposal-reviewer/internal/extract"
	"proposal-reviewer/internal/models"
	"proposal-reviewer/pkg/logger"
)

// ocrInstruction is the fixed per-page recognition prompt.
const ocrInstruction = "Transcribe all text in this document image, completely and accurately."

// Fetcher downloads an attachment to a local temp file, reporting the
// response Content-Type alongside the local path.
type Fetcher interface {
	Fetch(ctx context.Context, attachmentPath string) (localPath string, contentType string, err error)
}

// Recognizer answers one instruction about one image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, instruction string) (string, error)
}

// Decider reviews document text and always produces a decision.
type Decider interface {
	Decide(ctx context.Context, documentText string) models.Decision
}

// Pipeline composes the review stages. One Run per attachment; runs
// share no mutable state, so overlapping invocations are safe.
type Pipeline struct {
	fetcher    Fetcher
	recognizer Recognizer
	decider    Decider
	extract    func(path string, kind models.FileKind) ([]extract.Page, error)
	logger     logger.Logger
}

// New creates a Pipeline.
func New(fetcher Fetcher, recognizer Recognizer, decider Decider, log logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		recognizer: recognizer,
		decider:    decider,
		extract:    extract.Pages,
		logger:     log,
	}
}

// Run executes the full pipeline for one attachment reference and
// always returns a result, never an error: any failure at any stage
// resolves to a reject carrying the failure description. The temp copy
// of the attachment is removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, attachmentPath string) (result models.PipelineResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic", logger.Any("panic", r), logger.String("path", attachmentPath))
			result = p.reject(attachmentPath, models.KindUnknown, "", 0,
				fmt.Sprintf("document processing failed: %v", r))
		}
	}()

	localPath, contentType, err := p.fetcher.Fetch(ctx, attachmentPath)
	if err != nil {
		p.logger.Error("attachment download failed", logger.String("path", attachmentPath), logger.Error(err))
		return p.reject(attachmentPath, models.KindUnknown, "", 0,
			fmt.Sprintf("could not download attachment: %v", err))
	}
	defer p.cleanup(localPath)

	// classification keys on the original reference, with the response
	// Content-Type as fallback; the temp file's .pdf naming default
	// must not leak into format routing
	kind := classify.DetectWithContentType(attachmentPath, contentType)
	p.logger.Info("attachment classified",
		logger.String("path", attachmentPath),
		logger.String("contentType", contentType),
		logger.String("kind", string(kind)),
	)

	switch kind {
	case models.KindDocx, models.KindMarkdown:
		return p.runDirectText(ctx, attachmentPath, localPath, kind)
	case models.KindPDF, models.KindImage:
		return p.runRecognition(ctx, attachmentPath, localPath, kind)
	default:
		return p.reject(attachmentPath, models.KindUnknown, "", 0, "unsupported file format")
	}
}

// runDirectText handles the kinds whose text is parsed straight from
// the file, with no recognition step.
func (p *Pipeline) runDirectText(ctx context.Context, ref, localPath string, kind models.FileKind) models.PipelineResult {
	pages, err := p.extract(localPath, kind)
	if err != nil {
		return p.reject(ref, kind, "", 0, fmt.Sprintf("could not extract document text: %v", err))
	}

	var text string
	if len(pages) > 0 {
		text = strings.TrimSpace(pages[0].Text)
	}
	if text == "" {
		return p.reject(ref, kind, "", 0, "empty document: no readable content")
	}

	decision := p.decider.Decide(ctx, text)
	return models.PipelineResult{
		Decision:      decision,
		ExtractedText: text,
		PageCount:     1,
		FileKind:      kind,
		Source:        ref,
		CompletedAt:   time.Now(),
	}
}

// runRecognition rasterizes the document and recognizes each page
// sequentially, in page order, so aggregation order is trivially
// stable. Blank pages contribute no text but do not abort the run.
func (p *Pipeline) runRecognition(ctx context.Context, ref, localPath string, kind models.FileKind) models.PipelineResult {
	pages, err := p.extract(localPath, kind)
	if err != nil {
		return p.reject(ref, kind, "", 0, fmt.Sprintf("could not load document pages: %v", err))
	}
	if len(pages) == 0 {
		return p.reject(ref, kind, "", 0, "document produced no pages")
	}

	var aggregated strings.Builder
	for i, page := range pages {
		pageText, err := p.recognizer.Recognize(ctx, page.Image, ocrInstruction)
		if err != nil {
			return p.reject(ref, kind, strings.TrimSpace(aggregated.String()), len(pages),
				fmt.Sprintf("recognition failed on page %d: %v", i+1, err))
		}
		if strings.TrimSpace(pageText) != "" {
			fmt.Fprintf(&aggregated, "--- Page %d ---\n%s\n", i+1, pageText)
		}
		p.logger.Debug("page recognized",
			logger.String("path", ref),
			logger.Int("page", i+1),
			logger.Int("chars", len(pageText)),
		)
	}

	text := strings.TrimSpace(aggregated.String())
	decision := p.decider.Decide(ctx, text)
	return models.PipelineResult{
		Decision:      decision,
		ExtractedText: text,
		PageCount:     len(pages),
		FileKind:      kind,
		Source:        ref,
		CompletedAt:   time.Now(),
	}
}

func (p *Pipeline) reject(ref string, kind models.FileKind, text string, pageCount int, rationale string) models.PipelineResult {
	return models.PipelineResult{
		Decision:      models.Reject(rationale),
		ExtractedText: text,
		PageCount:     pageCount,
		FileKind:      kind,
		Source:        ref,
		CompletedAt:   time.Now(),
	}
}

// cleanup removes the temp copy; a failed removal is logged and does
// not affect the returned result.
func (p *Pipeline) cleanup(localPath string) {
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("could not remove temp file", logger.String("localPath", localPath), logger.Error(err))
		return
	}
	p.logger.Debug("temp file removed", logger.String("localPath", localPath))
}
