package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/audit"
	"github.com/ziadkadry99/infrachat/internal/db"
	"github.com/ziadkadry99/infrachat/internal/memory"
	"github.com/ziadkadry99/infrachat/internal/progress"
	"github.com/ziadkadry99/infrachat/internal/requirements"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete conversation data older than the retention period",
	Long: `Removes conversation turns, empty sessions and idle user profiles older
than the retention period (memory.retention_days, or --days), then drops
requirements collections whose session is gone and audit entries past the
same cutoff.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		days := cfg.Memory.RetentionDays
		if cmd.Flags().Changed("days") {
			days = cleanupDays
		}
		if days <= 0 {
			return fmt.Errorf("retention must be at least one day, got %d", days)
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		reporter := progress.NewReporter("Cleaning up")
		reporter.Start(3)

		report, err := memory.NewStore(database, cfg.Memory.MaxContextTurns).
			CleanupOldData(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			reporter.Finish()
			return err
		}
		reporter.Update(1, "conversation history")

		orphaned, err := requirements.NewStore(database).DeleteOrphaned(ctx)
		if err != nil {
			reporter.Finish()
			return err
		}
		reporter.Update(2, "requirements")

		cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
		audited, err := audit.NewStore(database).DeleteBefore(ctx, cutoff)
		if err != nil {
			reporter.Finish()
			return err
		}
		reporter.Update(3, "audit trail")
		reporter.Finish()

		fmt.Printf("Removed %d turns, %d sessions, %d profiles, %d requirement collections and %d audit entries (retention %d days)\n",
			report.TurnsDeleted, report.SessionsDeleted, report.ProfilesDeleted, orphaned, audited, days)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 30, "retention in days (overrides config)")
	rootCmd.AddCommand(cleanupCmd)
}
