package cmd

import "github.com/spf13/cobra"

// statusCmd is a shorthand for "waves status".
var statusCmd = &cobra.Command{
	Use:   "status <wave-id>",
	Short: "Print a wave's workflow status",
	Args:  cobra.ExactArgs(1),
	RunE:  runWavesStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
