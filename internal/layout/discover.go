package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Convention folder names below each legion.
const (
	LegionnaireDir = "legionnaire"
	PrimarchDir    = "primarch"
	// FormattedSuffix marks the legacy per-subfolder output folders
	// ("1_A4_formatted") that predate side-by-side A4 files.
	FormattedSuffix = "_A4_formatted"
)

// MarkerMode selects how a Filter treats the derived-output marker.
type MarkerMode int

const (
	MarkerAny     MarkerMode = iota
	MarkerExclude            // originals only: marker nowhere in the stem
	MarkerOnly               // derived outputs only: stem ends with the marker
)

// Image is a candidate file found by a Filter.
type Image struct {
	Path   string
	Name   string
	Stem   string
	Ext    string
	Marked bool
}

// Filter matches image files by extension and marker.
type Filter struct {
	Extensions []string // with leading dot, compared case-insensitively
	Marker     string
	Mode       MarkerMode
}

// Match reports whether a base name passes the filter.
func (f Filter) Match(name string) bool {
	stem, ext := SplitName(name)
	if !f.matchExt(ext) {
		return false
	}
	switch f.Mode {
	case MarkerExclude:
		return !HasMarker(stem, f.Marker)
	case MarkerOnly:
		return EndsWithMarker(stem, f.Marker)
	}
	return true
}

func (f Filter) matchExt(ext string) bool {
	for _, e := range f.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Images lists the regular files directly inside dir that pass the filter,
// sorted by name.
func (f Filter) Images(dir string) ([]Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []Image
	for _, e := range entries {
		if !e.Type().IsRegular() || !f.Match(e.Name()) {
			continue
		}
		stem, ext := SplitName(e.Name())
		out = append(out, Image{
			Path:   filepath.Join(dir, e.Name()),
			Name:   e.Name(),
			Stem:   stem,
			Ext:    ext,
			Marked: HasMarker(stem, f.Marker),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// With returns a copy of f using mode.
func (f Filter) With(mode MarkerMode) Filter {
	f.Mode = mode
	return f
}

// Legions returns the legion folder names under root in sorted order.
// A missing root is an error; it aborts the whole job.
func Legions(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read legions root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Subdir returns parent/name if it exists and is a directory.
func Subdir(parent, name string) (string, bool) {
	p := filepath.Join(parent, name)
	return p, IsDir(p)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// FormattedDirs returns the legacy "<n>_A4_formatted" folders in dir, sorted.
func FormattedDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasSuffix(e.Name(), FormattedSuffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

// CountMarked counts the derived outputs directly inside dir.
func CountMarked(dir string, f Filter) int {
	imgs, err := f.With(MarkerOnly).Images(dir)
	if err != nil {
		return 0
	}
	return len(imgs)
}
