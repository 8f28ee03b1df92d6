package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/workloadhq/insights/internal/infra/twilio"
)

var verifyTo string

// verifyTwilioCmd is the smoke test for the messaging integration: check
// the credentials, and optionally send one real message.
var verifyTwilioCmd = &cobra.Command{
	Use:   "verify-twilio",
	Short: "Verify Twilio credentials and optionally send a test message",
	Run:   runVerifyTwilio,
}

func init() {
	verifyTwilioCmd.Flags().StringVar(&verifyTo, "to", "", "send a test message to this number (e.g. whatsapp:+15551234567)")
	rootCmd.AddCommand(verifyTwilioCmd)
}

func runVerifyTwilio(cmd *cobra.Command, args []string) {
	cfg, log := loadConfig()

	if cfg.Twilio.AccountSID == "" {
		log.Error("Twilio is not configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := twilio.NewClient(cfg.Twilio)

	name, err := client.AccountProbe(ctx)
	if err != nil {
		log.Error("Account probe failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("credentials ok, account: %s\n", name)

	if verifyTo == "" {
		return
	}

	result, err := client.SendWhatsApp(ctx, verifyTo, "Workload Insights test message")
	if err != nil {
		log.Error("Test message failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("test message sent: sid=%s status=%s\n", result.SID, result.Status)
}
