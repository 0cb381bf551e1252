package extract

import (
	"os"
)

// markdownPages reads the file verbatim as one text page. No markup
// transformation: the review model sees exactly what the author wrote.
func markdownPages(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: "unreadable markdown file", Err: err}
	}
	return []Page{{Index: 0, Text: string(content)}}, nil
}
