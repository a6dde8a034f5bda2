package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/job"
	"github.com/ppiankov/printforge/internal/layout"
	"github.com/ppiankov/printforge/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		jobs     []string
		poll     bool
		debounce time.Duration
		interval time.Duration
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun the pipeline whenever new images appear",
		Long: `Watch the collection below the base directory and run the pipeline after
new or replaced images settle. The hold folder, the state directory and A4
files never trigger a pass. Use --poll where file events are unavailable
(network shares).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("jobs") {
				jobs = s.Pipeline
			}
			if s.Watch != nil {
				if !cmd.Flags().Changed("poll") && s.Watch.Poll {
					poll = true
				}
				if !cmd.Flags().Changed("debounce") && s.Watch.Debounce > 0 {
					debounce = s.Watch.Debounce
				}
			}
			if _, err := lookupJobs(jobs); err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			w, err := newTreeWatcher(s, jobs, poll, debounce, interval, strict, cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (ctrl+c to stop)\n\n", s.BaseDir)
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringSliceVar(&jobs, "jobs", nil, "comma-separated job names to run instead of the configured pipeline")
	cmd.Flags().BoolVar(&poll, "poll", false, "scan periodically instead of using file events")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DebounceDefault, "quiet period after the last event before a pass")
	cmd.Flags().DurationVar(&interval, "interval", watch.PollDefault, "scan interval with --poll")
	cmd.Flags().BoolVar(&strict, "strict", false, "log a pass with failed files as an error")

	return cmd
}

// newTreeWatcher builds a watcher over the base directory whose passes run jobs.
func newTreeWatcher(s *config.Settings, jobs []string, poll bool, debounce, interval time.Duration, strict bool, cmd *cobra.Command) (*watch.Watcher, error) {
	filter := job.FilterFor(s).With(layout.MarkerExclude)
	return watch.New(watch.Config{
		Roots:    []string{s.BaseDir},
		Ignore:   []string{s.Path(s.HoldDir), s.Path(s.StateDir)},
		Match:    filter.Match,
		Debounce: debounce,
		Poll:     poll,
		Interval: interval,
		OnChange: func(ctx context.Context) error {
			_, err := executeJobs(ctx, s, execOptions{
				command: "watch",
				jobs:    jobs,
				strict:  strict,
				display: "off",
				out:     cmd.OutOrStdout(),
			})
			if errors.Is(err, errInterrupted) {
				slog.Debug("watch pass interrupted")
				return nil
			}
			return err
		},
	})
}
