package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the folder conventions and print target loaded from a config file.
type Settings struct {
	BaseDir     string `yaml:"base_dir"`     // other relative paths resolve against this
	LegionsRoot string `yaml:"legions_root"` // <legion>/{legionnaire,primarch}
	HoldDir     string `yaml:"hold_dir"`
	StateDir    string `yaml:"state_dir"` // run reports, state.json, lock

	Marker                string   `yaml:"marker"`
	Extensions            []string `yaml:"extensions"`
	LegionnaireSubfolders []string `yaml:"legionnaire_subfolders"`

	Target Target `yaml:"target"`

	// Subject folders are renamed after their folder name and formatted.
	Subjects []string `yaml:"subjects,omitempty"`
	// FormatOnly folders are formatted but keep their file names.
	FormatOnly []string `yaml:"format_only,omitempty"`
	// Files are single images formatted to an explicit output path.
	Files []FilePair `yaml:"files,omitempty"`
	// HoldExtras are copied to hold alongside the primarchs.
	HoldExtras []string `yaml:"hold_extras,omitempty"`

	// Pipeline is the ordered job list executed by "printforge run".
	Pipeline []string `yaml:"pipeline,omitempty"`

	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// Target describes the fixed print output.
type Target struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Quality int    `yaml:"quality"`
	DPI     int    `yaml:"dpi"`
	Format  string `yaml:"format"` // "jpeg" or "png"
}

// FilePair maps a source image to its formatted output.
type FilePair struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Poll     bool          `yaml:"poll,omitempty"`
}

// A4 at 300 DPI.
const (
	A4WidthPx  = 2480
	A4HeightPx = 3508
)

// DefaultSettings returns the built-in conventions of the poster collection.
func DefaultSettings() *Settings {
	return &Settings{
		BaseDir:               ".",
		LegionsRoot:           "space marine legions",
		HoldDir:               "hold",
		StateDir:              ".printforge",
		Marker:                "_A4",
		Extensions:            []string{".jpg", ".jpeg", ".png"},
		LegionnaireSubfolders: []string{"1", "4"},
		Target: Target{
			Width:   A4WidthPx,
			Height:  A4HeightPx,
			Quality: 95,
			DPI:     300,
			Format:  "jpeg",
		},
		Subjects:   defaultSubjects(),
		FormatOnly: defaultFormatOnly(),
		Files: []FilePair{
			{Source: "emperor/Emperor.jpg", Output: "emperor/Emperor_A4.jpeg"},
		},
		HoldExtras: []string{"emperor/Emperor_A4.jpeg"},
		Pipeline: []string{
			"rename-primarchs",
			"rename-legionnaires",
			"rename-subjects",
			"format-primarchs",
			"format-legionnaires",
			"format-subjects",
			"format-files",
			"copy-primarchs",
			"copy-legionnaires",
		},
	}
}

// LoadSettings reads a YAML config file on top of DefaultSettings.
// If the file does not exist, it returns the defaults and nil error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return s, nil
}

func defaultSubjects() []string {
	return []string{
		"main_wall/row_2_emperor_forces/malcador",
		"main_wall/row_2_emperor_forces/sisters_of_battle",
		"main_wall/row_2_emperor_forces/tech_priest",
		"main_wall/row_2_emperor_forces/grey_knights",
		"main_wall/row_2_emperor_forces/assassins/culexus",
		"main_wall/row_2_emperor_forces/assassins/eversor",
		"main_wall/row_2_emperor_forces/assassins/callidus",
		"main_wall/row_2_emperor_forces/assassins/vindicare",
		"main_wall/row_2_emperor_forces/emperor_class_titan",
		"main_wall/row_2_emperor_forces/constantine_valdor",
		"main_wall/row_2_emperor_forces/sisters_of_silence",
		"main_wall/row_2_emperor_forces/inquisition",
		"main_wall/chaos_gods/tzeentch",
		"main_wall/chaos_gods/khorne",
		"main_wall/chaos_gods/slaanesh",
		"main_wall/chaos_gods/nurgle",
		"main_wall/xenos/tau",
		"main_wall/xenos/tyranids",
		"main_wall/xenos/necrons",
		"main_wall/xenos/eldar",
		"wall_1_right/assassins/venenum",
		"wall_1_right/assassins/vanus",
		"wall_2_left/chaos_champions/sevatar",
		"wall_2_left/chaos_champions/abaddon",
		"wall_2_left/chaos_champions/ahriman",
		"wall_2_left/chaos_champions/kharn",
		"wall_2_left/loyalist_champions/amit",
		"wall_2_left/loyalist_champions/logan_grimnar",
		"wall_2_left/loyalist_champions/tyberos",
		"wall_2_left/loyalist_champions/sigismund",
	}
}

// traitor primarch art is already named; it only needs A4 versions
func defaultFormatOnly() []string {
	return []string{
		"wall_1_right/traitor_primarchs/fulgrim",
		"wall_1_right/traitor_primarchs/angron",
		"wall_1_right/traitor_primarchs/magnus",
		"wall_1_right/traitor_primarchs/mortarion",
		"wall_1_right/traitor_primarchs/lorgar",
		"wall_1_right/traitor_primarchs/perturabo",
	}
}
