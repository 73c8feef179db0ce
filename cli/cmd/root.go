package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mrelay",
	Short: "Mail relay CLI",
	Long: `mrelay is the command-line interface for the mail relay stack.

Submit messages to the relay API, check service health, and seed
test traffic from your terminal.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "http://localhost:8080", "base URL of the relay API")
}
