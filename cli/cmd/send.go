package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailrelay-systems/mailrelay-stack/cli/internal/client"
	"github.com/mailrelay-systems/mailrelay-stack/cli/pkg/output"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message",
	Long:  "Submit a single message to the relay API",
	Example: `  mrelay send --token T --subject "Hello" --sender a@b.com --content "Hi there"
  mrelay send --token T --subject "Hello" --sender a@b.com --content "Hi" --timestream 2024-01-01T00:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		subject, _ := cmd.Flags().GetString("subject")
		sender, _ := cmd.Flags().GetString("sender")
		content, _ := cmd.Flags().GetString("content")
		timestream, _ := cmd.Flags().GetString("timestream")

		if token == "" {
			return fmt.Errorf("--token is required")
		}
		if subject == "" || sender == "" || content == "" {
			return fmt.Errorf("--subject, --sender and --content are required")
		}
		if timestream == "" {
			timestream = time.Now().UTC().Format(time.RFC3339)
		}

		apiURL, _ := cmd.Flags().GetString("api-url")
		apiClient := client.NewAPIClient(apiURL)

		id, err := apiClient.SendMessage(token, map[string]string{
			"email_subject":    subject,
			"email_sender":     sender,
			"email_timestream": timestream,
			"email_content":    content,
		})
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}

		output.Success("Message sent (id: %s)", id)
		return nil
	},
}

func init() {
	sendCmd.Flags().String("token", "", "API token")
	sendCmd.Flags().String("subject", "", "email subject")
	sendCmd.Flags().String("sender", "", "email sender address")
	sendCmd.Flags().String("content", "", "email content")
	sendCmd.Flags().String("timestream", "", "email timestamp (defaults to now, RFC 3339)")

	rootCmd.AddCommand(sendCmd)
}
