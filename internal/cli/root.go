package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/config"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
	baseDir    string
	tuiMode    string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "printforge",
		Short: "Rename, resize and collect poster images for print",
		Long: `printforge normalises a poster collection laid out as
<legion>/{legionnaire/<n>,primarch} folders: it renames images after their
folder, creates A4 versions next to the originals and gathers the A4 files
in a flat hold folder. Every job is idempotent and never overwrites a file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", ".printforge.yml", "path to config file")
	root.PersistentFlags().StringVar(&baseDir, "base-dir", "", "directory the configured paths resolve against (overrides base_dir)")
	root.PersistentFlags().StringVar(&tuiMode, "tui", "auto", "display mode: full (interactive TUI), minimal (live status), off (line per file), auto (detect TTY)")

	root.AddCommand(newJobCmd("rename", "Rename images after their folder"))
	root.AddCommand(newJobCmd("format", "Create A4 versions of images"))
	root.AddCommand(newJobCmd("copy", "Copy A4 images to the hold folder"))
	root.AddCommand(newReorganizeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newStateCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newUnlockCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// loadSettings reads the config file and applies the global overrides.
func loadSettings() (*config.Settings, error) {
	s, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if baseDir != "" {
		s.BaseDir = baseDir
	}
	return s, nil
}
