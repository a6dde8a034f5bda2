package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/job"
)

// runFlags are shared by every command that transforms files.
type runFlags struct {
	dryRun bool
	strict bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show the planned operations without touching any file")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "exit non-zero when any file failed")
}

// newJobCmd builds "rename", "format" or "copy": the target arguments are
// job suffixes, e.g. "printforge format primarchs legionnaires".
func newJobCmd(verb, short string) *cobra.Command {
	var flags runFlags
	targets := job.WithPrefix(verb)

	cmd := &cobra.Command{
		Use:       verb + " <target>...",
		Short:     short,
		Long:      fmt.Sprintf("%s.\n\nTargets: %s", short, strings.Join(targets, ", ")),
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: targets,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := resolveTargets(verb, args)
			if err != nil {
				return err
			}
			return runJobs(cmd, jobs, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newReorganizeCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "reorganize",
		Short: "Move images out of legacy *_A4_formatted folders next to their originals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd, []string{"reorganize"}, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveTargets maps target arguments to registry names. "all" expands to
// every target of the verb.
func resolveTargets(verb string, args []string) ([]string, error) {
	known := job.WithPrefix(verb)
	var jobs []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			jobs = append(jobs, name)
		}
	}
	for _, a := range args {
		if a == "all" {
			for _, t := range known {
				add(verb + "-" + t)
			}
			continue
		}
		if !contains(known, a) {
			return nil, fmt.Errorf("unknown %s target %q (known: %s, all)", verb, a, strings.Join(known, ", "))
		}
		add(verb + "-" + a)
	}
	return jobs, nil
}

// runJobs loads settings and runs jobs under a signal-aware context.
func runJobs(cmd *cobra.Command, jobs []string, flags runFlags, resume bool) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	_, err = executeJobs(ctx, s, execOptions{
		command: cmd.CommandPath() + " " + strings.Join(jobs, ","),
		jobs:    jobs,
		dryRun:  flags.dryRun,
		strict:  flags.strict,
		resume:  resume,
		display: tuiMode,
		out:     cmd.OutOrStdout(),
	})
	return err
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
