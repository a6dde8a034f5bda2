package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/job"
)

func newRunCmd() *cobra.Command {
	var (
		flags  runFlags
		jobs   []string
		resume bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured pipeline in order",
		Long: `Run every job of the configured pipeline in order: rename, then format,
then copy to hold. With --resume, jobs that completed in the last run are
skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("jobs") {
				s, err := loadSettings()
				if err != nil {
					return err
				}
				jobs = s.Pipeline
			}
			return runJobs(cmd, jobs, flags, resume)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringSliceVar(&jobs, "jobs", nil, "comma-separated job names to run instead of the configured pipeline")
	cmd.Flags().BoolVar(&resume, "resume", false, "skip jobs that completed in the last run")

	return cmd
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [job]...",
		Short: "Print the planned operations of jobs without applying them",
		Long: `Print the planned operations of the named jobs, or of the whole
configured pipeline when no job is given. Nothing is written.`,
		ValidArgs: job.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := args
			if len(jobs) == 0 {
				s, err := loadSettings()
				if err != nil {
					return err
				}
				jobs = s.Pipeline
			}
			return runJobs(cmd, jobs, runFlags{dryRun: true}, false)
		},
	}
	return cmd
}
