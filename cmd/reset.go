package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"calblock/core/config"
	"calblock/core/journal"
	"calblock/core/logger"
	"calblock/core/reconcile"
	"calblock/core/snapshot"
	"calblock/core/worker"

	"calblock/feature/caldav"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reset command
	resetDryRun bool
	resetYes    bool
)

// resetCmd deletes every blocker this tool ever wrote.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all managed blockers from every account",
	Long: `Deletes every placeholder this tool created, across all accounts and
without a time window. Real meetings are never touched, and blockers
with a location attached are kept because a human reserved a resource
on them.

Examples:
  # Show what would be deleted
  calblock reset --dry-run

  # Delete with interactive confirmation
  calblock reset

  # Delete without prompting (non-interactive)
  calblock reset --yes`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetDryRun, "dry-run", false, "Report the teardown plan without deleting anything")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Auto-confirm deletion (non-interactive)")

	RootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

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

	provider := caldav.New(cfg.Accounts, logg)
	snapLoader := snapshot.NewLoader(provider, logg)
	executor := reconcile.NewExecutor(provider, logg)

	startedAt := time.Now()

	logg.Info("Collecting blockers", zap.Strings("accounts", cfg.AccountNames()))
	snaps, err := snapLoader.LoadBlockers(ctx, cfg.AccountNames())
	if err != nil {
		return err
	}

	plan := reconcile.BuildResetPlan(snaps)
	printResetPlan(logg, plan)

	if plan.Empty() {
		logg.Info("Nothing to delete.")
		return nil
	}

	if resetDryRun {
		logg.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if !confirmReset(plan.Summary.Deletes) {
		logg.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	report, err := executor.Apply(ctx, plan, reconcile.ApplyOptions{})
	if err != nil {
		return err
	}

	sinks, closeSinks := openSinks(cfg, logg)
	defer closeSinks()
	sinks.Record(ctx, logg, &worker.PassResult{
		Mode:      journal.ModeReset,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Summary:   plan.Summary,
		Applied:   report.Applied,
		Failed:    report.Failed,
	}, plan, report)

	logg.Info("Reset finished",
		zap.Int("applied", report.Applied),
		zap.Int("failed", report.Failed),
	)
	if report.Failed > 0 {
		return fmt.Errorf("%d deletes failed", report.Failed)
	}

	return nil
}

// printResetPlan prints the teardown plan using logger.
func printResetPlan(l *zap.Logger, plan *reconcile.Plan) {
	l.Info("Reset plan",
		zap.Int("accounts", plan.Summary.Accounts),
		zap.Int("deletes", plan.Summary.Deletes),
		zap.Int("protected", plan.Summary.Protected),
	)

	for _, ap := range plan.Accounts {
		if len(ap.Deletes) == 0 {
			continue
		}

		// Show sample of deletes (max 5 for logger)
		maxShow := 5
		if len(ap.Deletes) < maxShow {
			maxShow = len(ap.Deletes)
		}
		for i := 0; i < maxShow; i++ {
			action := ap.Deletes[i]
			l.Info("Planned delete",
				zap.String("account", action.Account),
				zap.String("subject", action.Event.Subject),
				zap.Time("start", action.Event.Start),
			)
		}
		if len(ap.Deletes) > maxShow {
			l.Info("Additional deletes not shown",
				zap.String("account", ap.Account),
				zap.Int("count", len(ap.Deletes)-maxShow),
			)
		}
	}
}

// confirmReset prompts the user for confirmation or uses --yes flag.
func confirmReset(deletes int) bool {
	if resetYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to delete %d blockers: ", deletes)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
