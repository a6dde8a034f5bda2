package job

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/printforge/internal/config"
)

// PlanFunc builds the plan of a job from the settings. An error means the
// job cannot run at all (e.g. the root directory is missing).
type PlanFunc func(s *config.Settings) (*Plan, error)

// Def describes a named job.
type Def struct {
	Name  string
	Short string
	Plan  PlanFunc
}

var registry = map[string]Def{}

func register(name, short string, fn PlanFunc) {
	registry[name] = Def{Name: name, Short: short, Plan: fn}
}

func init() {
	register("rename-legionnaires", "Rename legionnaire images to {Legion}_legionnaire_{n}", planRenameLegionnaires)
	register("rename-primarchs", "Rename the primarch image to {Legion}_primarch", planRenamePrimarchs)
	register("rename-subjects", "Rename subject images after their folder", planRenameSubjects)
	register("format-legionnaires", "Create A4 versions of legionnaire images", planFormatLegionnaires)
	register("format-primarchs", "Create A4 versions of primarch images", planFormatPrimarchs)
	register("format-subjects", "Create A4 versions of subject images", planFormatSubjects)
	register("format-files", "Create A4 versions of individually configured images", planFormatFiles)
	register("copy-legionnaires", "Copy legionnaire A4 images to hold", planCopyLegionnaires)
	register("copy-primarchs", "Copy primarch A4 images and hold extras to hold", planCopyPrimarchs)
	register("copy-subjects", "Copy subject A4 images to hold", planCopySubjects)
	register("copy-formatted", "Copy images from legacy *_A4_formatted folders to hold", planCopyFormatted)
	register("reorganize", "Move legacy *_A4_formatted images next to their originals", planReorganize)
}

// Lookup returns the job with the given name.
func Lookup(name string) (Def, error) {
	d, ok := registry[name]
	if !ok {
		return Def{}, fmt.Errorf("unknown job %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns all job names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithPrefix returns the sorted job names that start with prefix+"-".
// "format" → [format-files format-legionnaires ...]
func WithPrefix(prefix string) []string {
	var out []string
	for _, n := range Names() {
		if strings.HasPrefix(n, prefix+"-") {
			out = append(out, strings.TrimPrefix(n, prefix+"-"))
		}
	}
	return out
}
