package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/reporter"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

func newStatusCmd() *cobra.Command {
	var runDir string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the report of the latest (or a given) run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runDir == "" {
				s, err := loadSettings()
				if err != nil {
					return err
				}
				latest, err := findLatestRunDir(filepath.Join(s.Path(s.StateDir), "runs"))
				if err != nil {
					return fmt.Errorf("no --run-dir specified and %w", err)
				}
				runDir = latest
			}
			return showStatus(cmd.OutOrStdout(), runDir)
		},
	}

	cmd.Flags().StringVar(&runDir, "run-dir", "", "path to a <state_dir>/runs/<timestamp>-<run-id> directory (auto-detects latest if omitted)")

	return cmd
}

// findLatestRunDir scans runsDir for the most recent run directory that
// contains a report.json.
func findLatestRunDir(runsDir string) (string, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return "", fmt.Errorf("cannot read runs directory: %w", err)
	}

	// entries are sorted alphabetically; timestamps sort chronologically
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(runsDir, e.Name())
		if _, err := os.Stat(filepath.Join(candidate, "report.json")); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no completed runs found in %s", runsDir)
}

func showStatus(w io.Writer, runDir string) error {
	report, err := reporter.ReadJSONReport(filepath.Join(runDir, "report.json"))
	if err != nil {
		return err
	}

	fmt.Fprintln(w, titleStyle.Render("Run: "+report.Timestamp.Format("2006-01-02 15:04:05")))
	if report.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s\n", report.RunID)
	}
	if report.ConfigFile != "" {
		fmt.Fprintf(w, "Config: %s\n", report.ConfigFile)
	}
	fmt.Fprintf(w, "Duration: %s\n\n", report.TotalDuration.Truncate(time.Millisecond))

	fmt.Fprintf(w, "Jobs: %d  Applied: %d  Skipped: %d  Errors: %d  Empty branches: %d\n\n",
		len(report.Jobs), report.Applied, report.Skipped, report.Errors, report.EmptyBranches)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  JOB\tAPPLIED\tSKIPPED\tERRORS\tDURATION\tNOTE\n")
	for _, j := range report.Jobs {
		note := ""
		switch {
		case j.Interrupted:
			note = fmt.Sprintf("interrupted, %d not processed", j.Pending())
		case j.HoldDir != "":
			note = fmt.Sprintf("%d A4 images in hold", j.HoldTotal)
		}
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%s\t%s\n",
			j.Job, j.Applied, j.Skipped, j.Errors, j.Duration.Truncate(time.Millisecond), note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, j := range report.Jobs {
		for _, r := range j.Results {
			if r.Error != "" {
				fmt.Fprintf(w, "  ✗ %s: %s\n", r.Source, r.Error)
			}
		}
	}
	return nil
}
