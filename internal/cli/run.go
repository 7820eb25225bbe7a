package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the mempool and send alerts until interrupted",
	Long: `Runs one cycle at startup, then one every scheduler.interval (20m by default).
Each cycle scans the first 100 mempool entries and sends at most five
transactions paying more than 50,000 sat to the configured Telegram chat.
Stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runPoller,
}

func runPoller(cmd *cobra.Command, args []string) error {
	return getApp().Run(cmd.Context())
}
