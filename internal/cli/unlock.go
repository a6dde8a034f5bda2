package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/lock"
)

func newUnlockCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Remove a stale run lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			stateDir := s.Path(s.StateDir)
			out := cmd.OutOrStdout()

			info, err := lock.Read(stateDir)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(out, "No lock found in %s\n", stateDir)
					return nil
				}
				return fmt.Errorf("read lock: %w", err)
			}
			if info.Alive() && !force {
				return fmt.Errorf("lock held by running PID %d (%s); use --force to remove it anyway", info.PID, info.Command)
			}

			lock.Release(stateDir)
			fmt.Fprintf(out, "Removed lock (was PID %d, %s, since %s)\n",
				info.PID, info.Command, info.StartedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "remove the lock even if its process is still running")

	return cmd
}
