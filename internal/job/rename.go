package job

import (
	"path/filepath"
	"strings"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/layout"
)

func planRenameLegionnaires(s *config.Settings) (*Plan, error) {
	root, branches, err := legionnaireBranches(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "rename-legionnaires", Root: root}
	f := FilterFor(s)

	for _, b := range branches {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		if len(imgs) == 0 {
			p.EmptyBranches = append(p.EmptyBranches, b.Label)
			continue
		}
		stem := layout.LegionnaireStem(b.Legion, b.N)
		for _, img := range imgs {
			target := stem + img.Ext
			if img.Marked {
				target = layout.MarkedName(stem, s.Marker, img.Ext)
			}
			p.Items = append(p.Items, Item{
				Op:     OpRename,
				Branch: b.Label,
				Source: img.Path,
				Dest:   filepath.Join(b.Dir, target),
			})
		}
	}
	return p, nil
}

// planRenamePrimarchs renames only the first original per legion; there
// should be exactly one primarch image.
func planRenamePrimarchs(s *config.Settings) (*Plan, error) {
	root, branches, err := primarchBranches(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "rename-primarchs", Root: root}
	f := FilterFor(s).With(layout.MarkerExclude)

	for _, b := range branches {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		if len(imgs) == 0 {
			p.EmptyBranches = append(p.EmptyBranches, b.Label)
			continue
		}
		if len(imgs) > 1 {
			p.Notice("%s: %d images found, only %s is renamed", b.Label, len(imgs), imgs[0].Name)
		}
		img := imgs[0]
		p.Items = append(p.Items, Item{
			Op:     OpRename,
			Branch: b.Label,
			Source: img.Path,
			Dest:   filepath.Join(b.Dir, layout.PrimarchStem(b.Legion)+img.Ext),
		})
	}
	return p, nil
}

// planRenameSubjects names every image after its folder. Files already
// starting with the derived name are left alone.
func planRenameSubjects(s *config.Settings) (*Plan, error) {
	root, err := subjectRoot(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "rename-subjects", Root: root}
	f := FilterFor(s)

	for _, b := range subjectBranches(s, p, s.Subjects) {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		if len(imgs) == 0 {
			p.EmptyBranches = append(p.EmptyBranches, b.Label)
			continue
		}
		proper := layout.ProperName(filepath.Base(b.Dir))
		for _, img := range imgs {
			dest := img.Path
			if !strings.HasPrefix(img.Name, proper) {
				ext := strings.ToLower(img.Ext)
				name := proper + ext
				if img.Marked {
					name = layout.MarkedName(proper, s.Marker, ext)
				}
				dest = filepath.Join(b.Dir, name)
			}
			p.Items = append(p.Items, Item{
				Op:     OpRename,
				Branch: b.Label,
				Source: img.Path,
				Dest:   dest,
			})
		}
	}
	return p, nil
}
