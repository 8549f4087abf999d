package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calblock/core/calendar"
	"calblock/core/config"
	"calblock/core/journal"
	"calblock/core/loader"
	"calblock/core/lock"
	"calblock/core/logger"
	"calblock/core/middleware/auth"
	"calblock/core/middleware/rayid"
	"calblock/core/reconcile"
	"calblock/core/snapshot"
	"calblock/core/worker"

	"calblock/feature/caldav"
	"calblock/feature/inspect"
	"calblock/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd runs scheduled passes until the process is interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled passes until interrupted",
	Long: `Runs a reconciliation pass on the configured schedule and keeps
going until SIGINT or SIGTERM. When the status server is enabled the
HTTP API runs alongside the scheduler. A second watch instance exits
immediately so calendars are never written from two processes.`,
	RunE: runWatch,
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	// Two watchers would double every blocker, so the lock decides.
	lockPath := cfg.Sync.LockFile
	if lockPath == "" {
		lockPath = lock.DefaultPath()
	}
	held, err := lock.Acquire(lockPath)
	if errors.Is(err, lock.ErrHeld) {
		logg.Info("Another instance holds the lock, exiting", zap.String("path", lockPath))
		return nil
	}
	if err != nil {
		return err
	}
	defer held.Release()

	// Validate the configured window shape once; every tick recomputes
	// the window from its own start time.
	sc := cfg.Sync
	if _, err := sc.Window(time.Now()); err != nil {
		return err
	}

	provider := caldav.New(cfg.Accounts, logg)
	snapLoader := snapshot.NewLoader(provider, logg)
	executor := reconcile.NewExecutor(provider, logg)

	sinks, closeSinks := openSinks(cfg, logg)
	defer closeSinks()

	w := worker.New(snapLoader, executor, worker.Config{
		Accounts: cfg.AccountNames(),
		Schedule: cfg.Sync.Schedule,
		Window: func(now time.Time) calendar.Window {
			win, _ := sc.Window(now)
			return win
		},
		Options: passOptions(cfg),
		Sinks:   sinks,
	}, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Enabled {
		app := newStatusServer(cfg, logg, w, snapLoader, sinks.Journal)

		go func() {
			logg.Info("Starting status server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Error("Status server failed", zap.Error(err))
			}
		}()
		defer func() {
			logg.Info("Shutting down status server...")
			_ = app.Shutdown()
		}()
	}

	return w.Start(ctx)
}

// newStatusServer wires the fiber app the watch command serves: request
// ids and logging on everything, API-key auth on everything except the
// health probe, and the feature routes behind the loader registry.
func newStatusServer(cfg *config.Config, logg *zap.Logger, w *worker.Worker, snapLoader *snapshot.Loader, j *journal.Journal) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // We will log our own startup message
	})

	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
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

	app.Use(auth.New(auth.Config{
		ApiKey: cfg.Server.ApiKey,
		Exempt: []string{"/healthz"},
	}))

	mgr := loader.NewManager()
	mgr.Register(status.NewFeature(w, j, cfg.Sync.Schedule, logg))
	mgr.Register(inspect.NewFeature(cfg.Accounts, snapLoader, logg))

	if err := mgr.LoadAll(app); err != nil {
		logg.Fatal("Failed to load features", zap.Error(err))
	}

	return app
}
