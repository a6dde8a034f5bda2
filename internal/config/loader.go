package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Validate checks the print target and convention fields.
func (s *Settings) Validate() error {
	if s.LegionsRoot == "" {
		return fmt.Errorf("legions_root is empty")
	}
	if s.HoldDir == "" {
		return fmt.Errorf("hold_dir is empty")
	}
	if s.StateDir == "" {
		return fmt.Errorf("state_dir is empty")
	}
	if s.Marker == "" {
		return fmt.Errorf("marker is empty")
	}
	if len(s.Extensions) == 0 {
		return fmt.Errorf("extensions list is empty")
	}
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if s.Target.Width <= 0 || s.Target.Height <= 0 {
		return fmt.Errorf("target size %dx%d must be positive", s.Target.Width, s.Target.Height)
	}
	if s.Target.Quality < 1 || s.Target.Quality > 100 {
		return fmt.Errorf("target quality %d out of range 1-100", s.Target.Quality)
	}
	if s.Target.DPI < 0 {
		return fmt.Errorf("target dpi %d must not be negative", s.Target.DPI)
	}
	switch s.Target.Format {
	case "jpeg", "png":
	default:
		return fmt.Errorf("target format %q not supported (jpeg, png)", s.Target.Format)
	}

	for _, f := range s.Files {
		if f.Source == "" || f.Output == "" {
			return fmt.Errorf("files entry needs both source and output")
		}
		if f.Source == f.Output {
			return fmt.Errorf("files entry %q would overwrite its source", f.Source)
		}
	}
	return nil
}

// OutputExt returns the extension written by the formatter, with leading dot.
func (s *Settings) OutputExt() string {
	return "." + s.Target.Format
}

// Path resolves p against BaseDir unless it is absolute.
// "main_wall/xenos/tau" + base "/posters" → "/posters/main_wall/xenos/tau"
func (s *Settings) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.BaseDir, p)
}

// RequireDir checks that a configured root exists and is a directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("root %s not found: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", path)
	}
	return nil
}
