package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/motors/internal/daemon"
)

// newDaemonCmd creates the daemon command
func newDaemonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Inspect the motors daemon",
		Long: `Inspect the motors daemon process.

The daemon is managed by the system; this client only reads its PID file.`,
	}

	cmd.AddCommand(newDaemonStatusCmd(a))
	return cmd
}

func newDaemonStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long:  `Show whether the motors daemon is running. Exits 1 when it is not.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := daemon.CheckStatus(a.cfg.PIDFile)
			a.logger.Debug("Checked daemon status",
				zap.String("pid_file", a.cfg.PIDFile),
				zap.Int("pid", status.PID),
				zap.Bool("running", status.Running))

			out := cmd.OutOrStdout()
			if status.Running {
				fmt.Fprintf(out, "Status: running\n")
				fmt.Fprintf(out, "PID: %d\n", status.PID)
				return nil
			}

			fmt.Fprintf(out, "Status: stopped\n")
			if status.PID > 0 {
				fmt.Fprintf(out, "PID: %d\n", status.PID)
			}
			fmt.Fprintf(out, "Reason: %s\n", status.Reason)
			return errDaemonStopped
		},
	}
}
