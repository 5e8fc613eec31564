package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/db"
	"github.com/ziadkadry99/infrachat/internal/patterns"
	"github.com/ziadkadry99/infrachat/internal/progress"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in response pattern catalog",
	Long:  `Upserts the built-in response patterns into the database. Existing patterns keep their usage statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := patterns.NewStore(database)
		n, err := patterns.Seed(cmd.Context(), store, progress.NewReporter("Seeding patterns"))
		if err != nil {
			return err
		}

		total, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d patterns (%d stored) in %s\n", n, total, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
