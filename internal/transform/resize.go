package transform

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"

	"github.com/ppiankov/printforge/internal/config"
)

// ImageResizer stretches images to a fixed pixel size. The aspect ratio is
// not preserved; every output has exactly Width x Height pixels.
type ImageResizer struct {
	Width   int
	Height  int
	Quality int
	DPI     int
	Format  string // "jpeg" or "png"
}

// NewResizer creates a resizer for the configured print target.
func NewResizer(t config.Target) *ImageResizer {
	return &ImageResizer{
		Width:   t.Width,
		Height:  t.Height,
		Quality: t.Quality,
		DPI:     t.DPI,
		Format:  t.Format,
	}
}

// Resize decodes src, drops any alpha channel, resamples with Lanczos and
// writes the encoded result to dst.
func (r *ImageResizer) Resize(src, dst string) error {
	img, err := decodeFile(src)
	if err != nil {
		return err
	}
	out := resize.Resize(uint(r.Width), uint(r.Height), flatten(img), resize.Lanczos3)

	var buf bytes.Buffer
	if err := r.encode(&buf, out); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return writeAtomic(dst, 0o644, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (r *ImageResizer) encode(w io.Writer, img image.Image) error {
	switch r.Format {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "":
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: r.Quality}); err != nil {
			return err
		}
		_, err := w.Write(withDensity(buf.Bytes(), r.DPI))
		return err
	}
	return fmt.Errorf("unknown output format %q", r.Format)
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

// flatten converts img to opaque RGBA anchored at the origin. Transparent
// pixels keep their colour channels; alpha is discarded, not composited.
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
