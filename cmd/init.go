package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/infrachat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize infrachat configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure infrachat and writes the answers to the config file (.infrachat.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("\nWrote %s (database: %s)\n", cfgFile, cfg.DatabasePath())
		fmt.Println("Run `infrachat seed` to load the pattern catalog, then `infrachat chat` to start talking.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
