// Package classify maps attachment paths and URLs to document formats.
package classify

import (
	"path/filepath"
	"strings"

	"proposal-reviewer/internal/models"
)

// extensionKinds is the fixed extension table. Extensions are matched
// case-insensitively with any query string stripped first.
var extensionKinds = map[string]models.FileKind{
	".pdf":  models.KindPDF,
	".jpg":  models.KindImage,
	".jpeg": models.KindImage,
	".png":  models.KindImage,
	".bmp":  models.KindImage,
	".tiff": models.KindImage,
	".webp": models.KindImage,
	".docx": models.KindDocx,
	".doc":  models.KindDocx,
	".md":   models.KindMarkdown,
}

// contentTypeKinds maps Content-Type substrings to kinds, used only
// when the extension is absent or unrecognized.
var contentTypeKinds = []struct {
	substr string
	kind   models.FileKind
}{
	{"pdf", models.KindPDF},
	{"jpeg", models.KindImage},
	{"png", models.KindImage},
	{"bmp", models.KindImage},
	{"tiff", models.KindImage},
	{"webp", models.KindImage},
	{"wordprocessingml", models.KindDocx},
	{"msword", models.KindDocx},
	{"markdown", models.KindMarkdown},
	{"text/plain", models.KindMarkdown},
}

// Ext returns the lowercased filename extension of a path or URL, with
// any query string stripped. Empty when the reference has none.
func Ext(ref string) string {
	ref, _, _ = strings.Cut(ref, "?")
	return strings.ToLower(filepath.Ext(ref))
}

// Detect classifies a path or URL by its extension alone. Unrecognized
// extensions yield KindUnknown.
func Detect(ref string) models.FileKind {
	if kind, ok := extensionKinds[Ext(ref)]; ok {
		return kind
	}
	return models.KindUnknown
}

// DetectWithContentType classifies by extension first and falls back to
// a Content-Type substring match when the extension decides nothing.
func DetectWithContentType(ref, contentType string) models.FileKind {
	if kind := Detect(ref); kind != models.KindUnknown {
		return kind
	}
	ct := strings.ToLower(contentType)
	if ct == "" {
		return models.KindUnknown
	}
	for _, entry := range contentTypeKinds {
		if strings.Contains(ct, entry.substr) {
			return entry.kind
		}
	}
	return models.KindUnknown
}

// contentTypeExts resolves a Content-Type to the extension used when
// naming a downloaded temp file.
var contentTypeExts = []struct {
	substr string
	ext    string
}{
	{"pdf", ".pdf"},
	{"jpeg", ".jpg"},
	{"png", ".png"},
	{"bmp", ".bmp"},
	{"tiff", ".tiff"},
	{"webp", ".webp"},
	{"wordprocessingml", ".docx"},
	{"msword", ".docx"},
	{"markdown", ".md"},
	{"text/plain", ".md"},
}

// ExtensionFromContentType returns the download extension for a
// Content-Type header, or "" when it decides nothing.
func ExtensionFromContentType(contentType string) string {
	ct := strings.ToLower(contentType)
	if ct == "" {
		return ""
	}
	for _, entry := range contentTypeExts {
		if strings.Contains(ct, entry.substr) {
			return entry.ext
		}
	}
	return ""
}

// Supported reports whether ext is a recognized attachment extension.
func Supported(ext string) bool {
	_, ok := extensionKinds[strings.ToLower(ext)]
	return ok
}
