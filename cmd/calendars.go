package cmd

import (
	"context"
	"fmt"

	"calblock/core/config"
	"calblock/core/logger"

	"calblock/feature/caldav"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// calendarsCmd lists the calendar collections each account exposes.
var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "List the CalDAV calendars of every configured account",
	Long: `Discovers and lists the calendar collections each configured account
exposes. Useful for picking the ` + "`calendar`" + ` path to pin in the config
when an account has more than one calendar. The configured calendar,
if any, is marked with *.`,
	RunE: runCalendars,
}

func init() {
	RootCmd.AddCommand(calendarsCmd)
}

func runCalendars(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// Discovery works with a single account; skip the two-account rule
	// full validation enforces.
	if len(cfg.Accounts) == 0 {
		return fmt.Errorf("no accounts configured")
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	provider := caldav.New(cfg.Accounts, logg)

	for _, account := range cfg.Accounts {
		fmt.Printf("Account %s (%s)\n", account.Name, account.URL)

		calendars, err := provider.DiscoverCalendars(ctx, account.Name)
		if err != nil {
			logg.Error("Calendar discovery failed",
				zap.String("account", account.Name),
				zap.Error(err),
			)
			continue
		}

		for _, c := range calendars {
			marker := " "
			if c.Path == account.Calendar {
				marker = "*"
			}
			fmt.Printf("  %s %-30s %s\n", marker, c.Name, c.Path)
		}
	}

	return nil
}
