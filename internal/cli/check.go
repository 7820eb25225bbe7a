package cli

import (
	"github.com/spf13/cobra"

	"mempool-whale-alerts/internal/app"
)

var (
	checkDryRun bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single poll cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CheckOptions{
			DryRun: checkDryRun,
			Output: cmd.OutOrStdout(),
		}
		return getApp().Check(cmd.Context(), opts)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkDryRun, "dry-run", false, "Print the alert instead of sending it to Telegram")
}
