package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/motors/internal/command"
	"github.com/berrythewa/motors/internal/common"
	"github.com/berrythewa/motors/internal/config"
	"github.com/berrythewa/motors/internal/daemon"
	"github.com/berrythewa/motors/internal/ipc"
	"github.com/berrythewa/motors/pkg/format"
)

// silentError ends the invocation with exit status 1 without an error
// message; the command has already printed its answer.
type silentError struct{ error }

var (
	errMotorBusy     = silentError{errors.New("motors are busy")}
	errDaemonStopped = silentError{errors.New("motors daemon is not running")}
)

// app holds the state of a single invocation.
type app struct {
	configFile string
	verbose    bool
	steps      []command.Step

	cfg    *config.Config
	logger *zap.Logger
	stderr io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "motors",
		Short: "Control the pan/tilt motors daemon",
		Long: `motors sends one request to the motors daemon and prints its answer.

When several command flags are given, the last one wins. Flags that only
carry values (-x, -y, -s) apply to whichever command is finally chosen.

Examples:
  motors -d h -x 100 -y 50     move to an absolute position
  motors -d g -x 10 -s 1200    move 10 steps on X at speed 1200
  motors -s 500                change the speed only
  motors -b                    print 1 and exit 1 while moving`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.send(cmd.Context(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "client config file (default is "+config.DefaultConfigDir+"/client.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "print the request sent and debug logs")
	addStepFlags(rootCmd.Flags(), &a.steps)

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(c.ErrOrStderr(), c.UsageString())
		return err
	})

	rootCmd.AddCommand(
		newDaemonCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := common.NewLogger(cfg.Log, a.verbose, a.stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.With(zap.String("invocation", uuid.NewString()))
	return nil
}

// defaultSpeed derives the starting speed from the daemon's motors file.
// A missing or unreadable file leaves the fallback in place.
func (a *app) defaultSpeed() int32 {
	speeds, err := config.LoadMotors(a.cfg.MotorsConfig)
	if err != nil {
		a.logger.Debug("Motors configuration not used",
			zap.String("path", a.cfg.MotorsConfig),
			zap.Error(err))
		return command.FallbackSpeed
	}
	speed := command.DefaultSpeed(speeds.Pan, speeds.Tilt)
	a.logger.Debug("Default speed from motors configuration",
		zap.Int32("pan", speeds.Pan),
		zap.Int32("tilt", speeds.Tilt),
		zap.Int32("speed", speed))
	return speed
}

// send resolves the recorded flags into one request, checks the daemon is
// up, performs the exchange and prints the reply.
func (a *app) send(ctx context.Context, out io.Writer) error {
	plan, err := command.Resolve(a.steps, a.defaultSpeed())
	if err != nil {
		return err
	}

	if !daemon.Probe(a.cfg.PIDFile) {
		return ipc.Errorf(ipc.DaemonNotRunning, "motors daemon is NOT running, please start the daemon")
	}

	if a.verbose {
		fmt.Fprint(out, format.RequestLine(plan.Request))
	}

	client := ipc.NewClient(a.cfg.SocketPath,
		ipc.WithDialTimeout(a.cfg.DialTimeout),
		ipc.WithReplyTimeout(a.cfg.ReplyTimeout),
		ipc.WithLogger(a.logger),
	)
	reply, err := client.Do(ctx, plan.Request, plan.ExpectsReply)
	if err != nil {
		return err
	}

	if err := format.Render(out, plan.Request.Command, reply); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if plan.Request.Command == ipc.CmdBusy && reply.Busy() {
		return errMotorBusy
	}
	return nil
}

// Run executes one invocation and returns the process exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err == nil {
		return 0
	}

	var silent silentError
	if !errors.As(err, &silent) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return 1
}
