package job

import (
	"path"
	"path/filepath"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/layout"
)

// copyItems plans flat copies into hold. Name clashes between branches are
// resolved at execution time by the existence check.
func copyItems(hold, label string, imgs []layout.Image) []Item {
	items := make([]Item, 0, len(imgs))
	for _, img := range imgs {
		items = append(items, Item{
			Op:     OpCopy,
			Branch: label,
			Source: img.Path,
			Dest:   filepath.Join(hold, img.Name),
		})
	}
	return items
}

func planCopyLegionnaires(s *config.Settings) (*Plan, error) {
	root, branches, err := legionnaireBranches(s)
	if err != nil {
		return nil, err
	}
	hold := s.Path(s.HoldDir)
	p := &Plan{Job: "copy-legionnaires", Root: root, HoldDir: hold}
	f := FilterFor(s).With(layout.MarkerOnly)

	for _, b := range branches {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		p.Items = append(p.Items, copyItems(hold, b.Label, imgs)...)
	}
	return p, nil
}

func planCopyPrimarchs(s *config.Settings) (*Plan, error) {
	root, branches, err := primarchBranches(s)
	if err != nil {
		return nil, err
	}
	hold := s.Path(s.HoldDir)
	p := &Plan{Job: "copy-primarchs", Root: root, HoldDir: hold}
	f := FilterFor(s).With(layout.MarkerOnly)

	for _, b := range branches {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		p.Items = append(p.Items, copyItems(hold, b.Label, imgs)...)
	}

	for _, extra := range s.HoldExtras {
		src := s.Path(extra)
		if !layout.Exists(src) {
			p.Notice("file not found: %s", extra)
			continue
		}
		p.Items = append(p.Items, Item{
			Op:     OpCopy,
			Branch: path.Dir(filepath.ToSlash(extra)),
			Source: src,
			Dest:   filepath.Join(hold, filepath.Base(src)),
		})
	}
	return p, nil
}

func planCopySubjects(s *config.Settings) (*Plan, error) {
	root, err := subjectRoot(s)
	if err != nil {
		return nil, err
	}
	hold := s.Path(s.HoldDir)
	p := &Plan{Job: "copy-subjects", Root: root, HoldDir: hold}
	f := FilterFor(s).With(layout.MarkerOnly)

	folders := append(append([]string{}, s.Subjects...), s.FormatOnly...)
	for _, b := range subjectBranches(s, p, folders) {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		p.Items = append(p.Items, copyItems(hold, b.Label, imgs)...)
	}
	return p, nil
}

// planCopyFormatted copies every image of the legacy formatted folders; those
// files carry no marker.
func planCopyFormatted(s *config.Settings) (*Plan, error) {
	root := s.Path(s.LegionsRoot)
	legions, err := layout.Legions(root)
	if err != nil {
		return nil, err
	}
	hold := s.Path(s.HoldDir)
	p := &Plan{Job: "copy-formatted", Root: root, HoldDir: hold}
	f := FilterFor(s)

	for _, legion := range legions {
		lp, ok := layout.Subdir(filepath.Join(root, legion), layout.LegionnaireDir)
		if !ok {
			continue
		}
		for _, dir := range layout.FormattedDirs(lp) {
			label := path.Join(legion, layout.LegionnaireDir, filepath.Base(dir))
			imgs, err := f.Images(dir)
			if err != nil {
				p.Notice("%s: %v", label, err)
				continue
			}
			p.Items = append(p.Items, copyItems(hold, label, imgs)...)
		}
	}
	return p, nil
}
