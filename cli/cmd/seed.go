package cmd

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"

	"github.com/mailrelay-systems/mailrelay-stack/cli/internal/client"
	"github.com/mailrelay-systems/mailrelay-stack/cli/pkg/output"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send generated test messages",
	Long:  "Generate fake email messages and submit them to the relay API",
	Example: `  mrelay seed --token T --count 20
  mrelay seed --token T --count 100 --interval 100ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		count, _ := cmd.Flags().GetInt("count")
		interval, _ := cmd.Flags().GetDuration("interval")

		if token == "" {
			return fmt.Errorf("--token is required")
		}
		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		apiURL, _ := cmd.Flags().GetString("api-url")
		apiClient := client.NewAPIClient(apiURL)

		sent := 0
		for i := 0; i < count; i++ {
			id, err := apiClient.SendMessage(token, fakeRecord())
			if err != nil {
				output.Error("Message %d failed: %v", i+1, err)
				continue
			}
			sent++
			output.Info("sent %d/%d (id: %s)", sent, count, id)

			if interval > 0 && i < count-1 {
				time.Sleep(interval)
			}
		}

		output.Success("Seeded %d/%d messages", sent, count)
		return nil
	},
}

func fakeRecord() map[string]string {
	return map[string]string{
		"email_subject":    gofakeit.Sentence(4),
		"email_sender":     gofakeit.Email(),
		"email_timestream": gofakeit.DateRange(time.Now().Add(-24*time.Hour), time.Now()).UTC().Format(time.RFC3339),
		"email_content":    gofakeit.Paragraph(1, 3, 10, " "),
	}
}

func init() {
	seedCmd.Flags().String("token", "", "API token")
	seedCmd.Flags().Int("count", 10, "number of messages to send")
	seedCmd.Flags().Duration("interval", 0, "pause between messages")

	rootCmd.AddCommand(seedCmd)
}
