package extract

import (
	"github.com/disintegration/imaging"
)

// imagePages loads a single image file as a one-page result. Clone
// normalizes whatever color model the decoder produced (grayscale,
// paletted, CMYK) into NRGBA so the recognition step always sees the
// same representation.
func imagePages(path string) ([]Page, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &Error{Reason: "unreadable image", Err: err}
	}
	return []Page{{Index: 0, Image: imaging.Clone(img)}}, nil
}
