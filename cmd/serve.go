package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-sync/core/loader"
	"floorplan-sync/core/logger"
	"floorplan-sync/core/middleware/auth"
	"floorplan-sync/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long serve waits for an in-flight run on exit.
const shutdownTimeout = 5 * time.Minute

// serveCmd starts the status server and the optional run schedule.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API and the run scheduler",
	Long: `Starts an HTTP server exposing the health of the service, the last run report and
an endpoint to trigger a run. When server.interval_minutes is set, a run is also started
on that schedule. Concurrent triggers share the run in progress.`,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newRunner(configPath, dryRun)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	defer a.Close()
	logg := a.logger

	var history status.History
	if a.archiver != nil {
		history = a.archiver
	}
	statusFeature := status.NewFeature(a.Run, history, logg)

	mgr := loader.NewManager(logg)
	mgr.Register(statusFeature)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Request ids first so every later log line carries one.
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRequestID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Skip: []string{"/health"}}))

	if err := mgr.LoadAll(app); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go statusFeature.Service().Schedule(ctx, a.cfg.Server.Interval())

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		errCh <- app.Listen(a.cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info("Shutting down server...")
	if err := app.ShutdownWithContext(context.WithoutCancel(ctx)); err != nil {
		logg.Warn("Server shutdown failed", zap.Error(err))
	}

	// The database closes after this returns, so an in-flight run must finish first.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := statusFeature.Service().Shutdown(drainCtx); err != nil {
		logg.Warn("Run still in progress at shutdown, it will be rolled back", zap.Error(err))
	}
	return nil
}
