package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailrelay-systems/mailrelay-stack/cli/internal/client"
	"github.com/mailrelay-systems/mailrelay-stack/cli/pkg/output"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API health",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiURL, _ := cmd.Flags().GetString("api-url")
		apiClient := client.NewAPIClient(apiURL)

		if err := apiClient.Health(); err != nil {
			return fmt.Errorf("API is unhealthy: %w", err)
		}

		output.Success("API is healthy")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
