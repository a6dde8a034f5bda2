package job

import (
	"path"
	"path/filepath"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/layout"
)

// branch is one existing convention folder.
type branch struct {
	Legion string // legion folder name; empty for subject folders
	N      string // legionnaire subfolder number
	Label  string // display path relative to the root
	Dir    string
}

// FilterFor returns the image filter configured by s.
func FilterFor(s *config.Settings) layout.Filter {
	return layout.Filter{Extensions: s.Extensions, Marker: s.Marker}
}

// legionnaireBranches walks <root>/<legion>/legionnaire/<n> for the configured
// subfolders. Missing folders are skipped silently.
func legionnaireBranches(s *config.Settings) (string, []branch, error) {
	root := s.Path(s.LegionsRoot)
	legions, err := layout.Legions(root)
	if err != nil {
		return root, nil, err
	}
	var out []branch
	for _, legion := range legions {
		lp, ok := layout.Subdir(filepath.Join(root, legion), layout.LegionnaireDir)
		if !ok {
			continue
		}
		for _, n := range s.LegionnaireSubfolders {
			dir, ok := layout.Subdir(lp, n)
			if !ok {
				continue
			}
			out = append(out, branch{
				Legion: legion,
				N:      n,
				Label:  path.Join(legion, layout.LegionnaireDir, n),
				Dir:    dir,
			})
		}
	}
	return root, out, nil
}

// primarchBranches walks <root>/<legion>/primarch.
func primarchBranches(s *config.Settings) (string, []branch, error) {
	root := s.Path(s.LegionsRoot)
	legions, err := layout.Legions(root)
	if err != nil {
		return root, nil, err
	}
	var out []branch
	for _, legion := range legions {
		dir, ok := layout.Subdir(filepath.Join(root, legion), layout.PrimarchDir)
		if !ok {
			continue
		}
		out = append(out, branch{
			Legion: legion,
			Label:  path.Join(legion, layout.PrimarchDir),
			Dir:    dir,
		})
	}
	return root, out, nil
}

// subjectBranches resolves configured subject folders. Missing folders are
// reported as notices on p.
func subjectBranches(s *config.Settings, p *Plan, folders []string) []branch {
	var out []branch
	for _, f := range folders {
		dir := s.Path(f)
		if !layout.IsDir(dir) {
			p.Notice("folder not found: %s", f)
			continue
		}
		out = append(out, branch{Label: f, Dir: dir})
	}
	return out
}

// subjectRoot checks the base directory that subject folders live under.
func subjectRoot(s *config.Settings) (string, error) {
	root := s.Path(".")
	if err := config.RequireDir(root); err != nil {
		return root, err
	}
	return root, nil
}
