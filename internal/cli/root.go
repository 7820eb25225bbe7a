package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mempool-whale-alerts/internal/app"
	"mempool-whale-alerts/internal/config"
	"mempool-whale-alerts/internal/logging"
	"mempool-whale-alerts/internal/version"
)

var (
	cfgFile   string
	logLevel  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "whalewatch",
	Short: "Alert on high-fee Bitcoin mempool transactions via Telegram",
	Long: `whalewatch polls a mempool listing endpoint and forwards the largest-fee
transactions to a Telegram chat.

Credentials come from TELEGRAM_TOKEN and TELEGRAM_CHAT_ID (or the
telegram.bot_token / telegram.chat_id config keys). Every other setting
can be overridden with a WHALEWATCH_ prefixed variable, for example
WHALEWATCH_SCHEDULER_INTERVAL=5m.

Without a subcommand it behaves like "whalewatch run".`,
	Version:           version.Version,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	RunE:              runPoller,
}

func initApp(cmd *cobra.Command, args []string) error {
	if appHandle != nil {
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	appHandle = app.NewApp(cfg, logging.NewLogger(cfg.Logging))
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, checkCmd, versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
