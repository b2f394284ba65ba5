package media

import (
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// DefaultQuality is the lossy WebP quality used for transcoded images.
const DefaultQuality = 85

// Encoder writes a decoded image in the target format.
type Encoder interface {
	Encode(w io.Writer, img image.Image) error
	Ext() string
}

// WebPEncoder encodes lossy WebP images.
type WebPEncoder struct {
	Quality int
}

func (e WebPEncoder) Encode(w io.Writer, img image.Image) error {
	q := e.Quality
	if q <= 0 {
		q = DefaultQuality
	}
	return webp.Encode(w, img, webp.Options{Quality: q})
}

func (WebPEncoder) Ext() string { return ".webp" }
