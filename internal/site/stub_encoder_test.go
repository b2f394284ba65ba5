package site

import (
	"image"
	"io"
)

// stubEncoder writes a deterministic placeholder instead of real WebP bytes.
type stubEncoder struct{}

func (stubEncoder) Encode(w io.Writer, img image.Image) error {
	b := img.Bounds()
	_, err := io.WriteString(w, "webp:"+b.String())
	return err
}

func (stubEncoder) Ext() string { return ".webp" }
