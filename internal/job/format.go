package job

import (
	"path/filepath"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/layout"
)

// resizeItems plans "<stem>_A4.<ext>" outputs next to each original.
func resizeItems(s *config.Settings, b branch, imgs []layout.Image) []Item {
	items := make([]Item, 0, len(imgs))
	for _, img := range imgs {
		items = append(items, Item{
			Op:     OpResize,
			Branch: b.Label,
			Source: img.Path,
			Dest:   filepath.Join(b.Dir, layout.MarkedName(img.Stem, s.Marker, s.OutputExt())),
		})
	}
	return items
}

func planFormatLegionnaires(s *config.Settings) (*Plan, error) {
	root, branches, err := legionnaireBranches(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "format-legionnaires", Root: root}
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
		p.Items = append(p.Items, resizeItems(s, b, imgs)...)
	}
	return p, nil
}

func planFormatPrimarchs(s *config.Settings) (*Plan, error) {
	root, branches, err := primarchBranches(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "format-primarchs", Root: root}
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
		p.Items = append(p.Items, resizeItems(s, b, imgs[:1])...)
	}
	return p, nil
}

func planFormatSubjects(s *config.Settings) (*Plan, error) {
	root, err := subjectRoot(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "format-subjects", Root: root}
	f := FilterFor(s).With(layout.MarkerExclude)

	folders := append(append([]string{}, s.Subjects...), s.FormatOnly...)
	for _, b := range subjectBranches(s, p, folders) {
		imgs, err := f.Images(b.Dir)
		if err != nil {
			p.Notice("%s: %v", b.Label, err)
			continue
		}
		if len(imgs) == 0 {
			p.EmptyBranches = append(p.EmptyBranches, b.Label)
			continue
		}
		p.Items = append(p.Items, resizeItems(s, b, imgs)...)
	}
	return p, nil
}

func planFormatFiles(s *config.Settings) (*Plan, error) {
	root, err := subjectRoot(s)
	if err != nil {
		return nil, err
	}
	p := &Plan{Job: "format-files", Root: root}

	for _, fp := range s.Files {
		src := s.Path(fp.Source)
		if !layout.Exists(src) {
			p.Notice("file not found: %s", fp.Source)
			continue
		}
		p.Items = append(p.Items, Item{
			Op:     OpResize,
			Branch: filepath.Dir(fp.Source),
			Source: src,
			Dest:   s.Path(fp.Output),
		})
	}
	return p, nil
}
