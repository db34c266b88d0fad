package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"floorplan-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitSkipped = 2
)

// errSkipped marks a committed run that skipped features while --fail-on-skip is set.
var errSkipped = errors.New("run committed with skipped features")

var (
	configPath string
	dryRun     bool
	failOnSkip bool
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// RootCmd performs a single reconciliation run when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "floorplan-sync",
	Short: "Mirror an ArcGIS floor plan layer into PostGIS",
	Long: `floorplan-sync reconciles an ArcGIS feature layer of rooms into one PostGIS table
per location and floor. Recently edited features are inserted or updated and rows whose
feature disappeared from the layer are deleted, all inside a single transaction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

// Execute runs the CLI and exits with the code carried by the returned error.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// Console format with the development config gives readable ISO8601 timestamps.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(ExitCode(err))
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding config.yaml and .env, or a YAML file")
	RootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Run the reconciliation and roll it back")
	RootCmd.Flags().BoolVar(&failOnSkip, "fail-on-skip", false, "Exit with code 2 when a committed run skipped features")
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newRunner(configPath, dryRun)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer a.Close()

	report, err := a.Run(ctx)
	return runResult(report != nil && report.Committed() && report.HasSkips(), failOnSkip, err)
}

// runResult turns the outcome of a run into the command error.
func runResult(skipped, failOnSkip bool, err error) error {
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if skipped && failOnSkip {
		return &ExitError{Code: ExitSkipped, Err: errSkipped}
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
