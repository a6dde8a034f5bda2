package job

import (
	"path"
	"path/filepath"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/layout"
)

// planReorganize migrates the legacy layout, where A4 outputs lived in
// "<n>_A4_formatted" folders, to side-by-side files:
//
//  1. originals in <n> are renamed to {Legion}_legionnaire_{n}{ext}
//  2. formatted images move to <n> with the marker appended to the stem;
//     a formatted image whose destination already exists is deleted
//  3. formatted folders left empty are removed
func planReorganize(s *config.Settings) (*Plan, error) {
	root, branches, err := legionnaireBranches(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "reorganize", Root: root}
	f := FilterFor(s)

	for _, b := range branches {
		originals, err := f.With(layout.MarkerExclude).Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		stem := layout.LegionnaireStem(b.Legion, b.N)
		for _, img := range originals {
			p.Items = append(p.Items, Item{
				Op:     OpRename,
				Branch: b.Label,
				Source: img.Path,
				Dest:   filepath.Join(b.Dir, stem+img.Ext),
			})
		}

		formatted := filepath.Join(filepath.Dir(b.Dir), b.N+layout.FormattedSuffix)
		if !layout.IsDir(formatted) {
			continue
		}
		label := path.Join(b.Legion, layout.LegionnaireDir, filepath.Base(formatted))
		imgs, err := f.Images(formatted)
		if err != nil {
			p.Notice("%s: %v", label, err)
			continue
		}
		for _, img := range imgs {
			name := img.Name
			if !layout.EndsWithMarker(img.Stem, s.Marker) {
				name = layout.MarkedName(img.Stem, s.Marker, img.Ext)
			}
			p.Items = append(p.Items, Item{
				Op:     OpMove,
				Branch: label,
				Source: img.Path,
				Dest:   filepath.Join(b.Dir, name),
				Drop:   true,
			})
		}
		p.Cleanup = append(p.Cleanup, formatted)
	}
	return p, nil
}
