package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/state"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage persistent job state",
		Long: `Manage the persistent job state used by 'printforge run --resume'.

Jobs that completed in the last run are skipped when resuming.
Use 'printforge state list' to see tracked jobs, 'printforge state reset <job>'
to run a job again on resume, or 'printforge state clear' to reset all state.`,
	}

	cmd.AddCommand(newStateListCmd())
	cmd.AddCommand(newStateResetCmd())
	cmd.AddCommand(newStateClearCmd())

	return cmd
}

func loadTracker() (*state.Tracker, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return state.Load(state.Path(s.Path(s.StateDir))), nil
}

func newStateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all tracked job states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := loadTracker()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entries := tracker.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No tracked jobs.")
				return nil
			}

			names := make([]string, 0, len(entries))
			for name := range entries {
				names = append(names, name)
			}
			sort.Strings(names)

			if last := tracker.LastRun(); last != "" {
				fmt.Fprintf(out, "Last run: %s\n\n", last)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "JOB\tSTATUS\tAPPLIED\tSKIPPED\tERRORS\tRUN\tFINISHED\tERROR\n")
			for _, name := range names {
				e := entries[name]
				finished := ""
				if !e.FinishedAt.IsZero() {
					finished = e.FinishedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
					name, e.Status, e.Applied, e.Skipped, e.Errors, e.RunID, finished, e.Error)
			}
			return w.Flush()
		},
	}
}

func newStateResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <job>",
		Short: "Forget a job so a resumed run executes it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := loadTracker()
			if err != nil {
				return err
			}
			entry := tracker.Get(args[0])
			if entry == nil {
				return fmt.Errorf("job %q not found in state", args[0])
			}
			tracker.Reset(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %q (was %s)\n", args[0], entry.Status)
			return nil
		},
	}
}

func newStateClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all job state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := loadTracker()
			if err != nil {
				return err
			}
			tracker.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "State cleared.")
			return nil
		},
	}
}
