// Package extract turns a local attachment into extractable pages:
// rasterized images for PDF and image files, a single text blob for
// DOCX and Markdown.
package extract

import (
	"fmt"
	"image"

	"proposal-reviewer/internal/models"
)

// Page is one unit of extractable content. Image is set for the
// image/pdf kinds, Text for the direct-text kinds; Index is zero-based
// and stable.
type Page struct {
	Index int
	Image image.Image
	Text  string
}

// Error reports an unreadable, corrupt, or unsupported source file.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: %s: %v", e.Reason, e.Err)
	}
	return "extract: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Pages extracts the content of a local file according to its kind.
// PDF and image kinds yield one page per rasterized image; DOCX and
// Markdown yield exactly one text page, whose text may legitimately be
// empty (an empty document is rejectable, not an extraction failure).
func Pages(path string, kind models.FileKind) ([]Page, error) {
	switch kind {
	case models.KindPDF:
		return pdfPages(path)
	case models.KindImage:
		return imagePages(path)
	case models.KindDocx:
		return docxPages(path)
	case models.KindMarkdown:
		return markdownPages(path)
	default:
		return nil, &Error{Reason: fmt.Sprintf("unsupported format %q", kind)}
	}
}
