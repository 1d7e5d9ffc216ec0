package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shopmail",
	Short: "A Slack bridge for replying to and forwarding shop order emails",
	Long: `shopmail watches a Slack channel for order-notification emails relayed
from the shop mailbox, matches them back to their originating Gmail
threads, and lets operators reply to or forward the underlying customer
email without leaving Slack.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
