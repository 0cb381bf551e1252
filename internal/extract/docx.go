package extract

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

// docx structures map the parts of word/document.xml we read. Element
// names match on local name, so the w: namespace prefix is irrelevant.
// Paragraphs nested in table cells only appear under their cell, not in
// the body's paragraph list.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// docxPages extracts the document text as one page: non-blank body
// paragraphs in document order, then non-blank table cells row-major in
// table order, joined with newlines. A file that is not a well-formed
// zip package yields an empty page rather than an error; the pipeline
// treats empty text as a rejectable empty document.
func docxPages(path string) ([]Page, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return []Page{{Index: 0, Text: ""}}, nil
	}
	defer archive.Close()

	var doc docxDocument
	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, &Error{Reason: "unreadable document package", Err: err}
		}
		decodeErr := xml.NewDecoder(rc).Decode(&doc)
		rc.Close()
		if decodeErr != nil {
			return nil, &Error{Reason: "malformed document body", Err: decodeErr}
		}
		break
	}

	var blocks []string
	for _, para := range doc.Body.Paragraphs {
		if text := para.text(); text != "" {
			blocks = append(blocks, text)
		}
	}
	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			for _, cell := range row.Cells {
				if text := cell.text(); text != "" {
					blocks = append(blocks, text)
				}
			}
		}
	}

	return []Page{{Index: 0, Text: strings.Join(blocks, "\n")}}, nil
}

func (p docxParagraph) text() string {
	var b strings.Builder
	for _, run := range p.Runs {
		for _, t := range run.Texts {
			b.WriteString(t)
		}
	}
	return strings.TrimSpace(b.String())
}

func (c docxCell) text() string {
	var parts []string
	for _, para := range c.Paragraphs {
		if text := para.text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
