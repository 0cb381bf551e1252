package extract

import (
	"github.com/gen2brain/go-fitz"
)

// renderDPI matches scan-quality rasterization; OCR accuracy drops
// noticeably below this.
const renderDPI = 300

// pdfPages rasterizes every page of the PDF at renderDPI. A document
// the renderer cannot open or render fails with reason "conversion
// failed"; this is reported to the caller, not retried.
func pdfPages(path string) ([]Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &Error{Reason: "conversion failed", Err: err}
	}
	defer doc.Close()

	pages := make([]Page, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, renderDPI)
		if err != nil {
			return nil, &Error{Reason: "conversion failed", Err: err}
		}
		pages = append(pages, Page{Index: n, Image: img})
	}
	return pages, nil
}
