// Package probe reads image headers without decoding pixel data.
package probe

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Info describes one image file.
type Info struct {
	Path   string    `json:"path"`
	Format string    `json:"format"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	DPI    int       `json:"dpi,omitempty"`   // JFIF density, JPEG only
	Taken  time.Time `json:"taken,omitempty"` // EXIF capture time when present
	Camera string    `json:"camera,omitempty"`
}

// Is reports whether the image has exactly the given pixel size.
func (i *Info) Is(width, height int) bool {
	return i.Width == width && i.Height == height
}

// Probe reads the dimensions and format of path, plus JFIF density and EXIF
// capture data when the file carries them.
func Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	info := &Info{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}
	if format != "jpeg" {
		return info, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		info.DPI = readDensity(f)
	}
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		readExif(f, info)
	}
	return info, nil
}

// readExif fills capture fields. Missing or broken EXIF is not an error.
func readExif(r io.Reader, info *Info) {
	x, err := exif.Decode(r)
	if err != nil {
		return
	}
	if t, err := x.DateTime(); err == nil {
		info.Taken = t
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			info.Camera = strings.TrimSpace(s)
		}
	}
}

// readDensity returns the dots-per-inch of a JFIF APP0 segment directly
// after SOI, or 0.
func readDensity(r io.Reader) int {
	var hdr [18]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0
	}
	if hdr[0] != 0xFF || hdr[1] != 0xD8 || hdr[2] != 0xFF || hdr[3] != 0xE0 {
		return 0
	}
	if string(hdr[6:11]) != "JFIF\x00" {
		return 0
	}
	x := int(hdr[14])<<8 | int(hdr[15])
	switch hdr[13] {
	case 1:
		return x
	case 2: // dots per cm
		return int(float64(x)*2.54 + 0.5)
	}
	return 0
}
