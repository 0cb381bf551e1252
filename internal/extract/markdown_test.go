package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"proposal-reviewer/internal/models"
)

func TestMarkdownVerbatim(t *testing.T) {
	content := "# Proposal\n\nSome **bold** text.\n"
	path := filepath.Join(t.TempDir(), "proposal.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := Pages(path, models.KindMarkdown)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1", len(pages))
	}
	if pages[0].Text != content {
		t.Fatalf("text = %q, want verbatim content", pages[0].Text)
	}
}

func TestMarkdownEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	pages, err := Pages(path, models.KindMarkdown)
	if err != nil {
		t.Fatalf("Pages: %v", err)
	}
	if pages[0].Text != "" {
		t.Fatalf("text = %q, want empty", pages[0].Text)
	}
}

func TestMarkdownMissingFile(t *testing.T) {
	_, err := Pages(filepath.Join(t.TempDir(), "absent.md"), models.KindMarkdown)
	if err == nil {
		t.Fatal("expected error")
	}
	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
}

func TestUnsupportedKind(t *testing.T) {
	_, err := Pages("whatever.bin", models.KindUnknown)
	if err == nil {
		t.Fatal("expected error")
	}
}
