package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "playstore-predictor",
	Short: "Predict Play Store app metrics and keep a live prediction history",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(predictorCmd)
	rootCmd.AddCommand(uploaderCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
