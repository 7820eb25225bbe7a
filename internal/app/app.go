package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"mempool-whale-alerts/internal/alerting"
	"mempool-whale-alerts/internal/config"
	"mempool-whale-alerts/internal/mempool"
	"mempool-whale-alerts/internal/poller"
	"mempool-whale-alerts/internal/scheduler"
	"mempool-whale-alerts/internal/version"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// CheckOptions configure a single poll cycle.
type CheckOptions struct {
	DryRun bool
	Output io.Writer
}

func (a *App) newFetcher() mempool.CandidateFetcher {
	return mempool.NewClient(mempool.Options{
		Endpoint:  a.Config.Mempool.Endpoint,
		Timeout:   a.Config.Mempool.RequestTimeout,
		UserAgent: a.Config.Mempool.UserAgent,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	cfg := a.Config.Telegram
	if err := a.Config.CheckCredentials(); err != nil {
		a.Logger.Warn().Err(err).Msg("telegram credentials incomplete; sends will fail")
	}
	return alerting.NewTelegramNotifier(alerting.TelegramOptions{
		BotToken:  cfg.BotToken,
		ChatID:    cfg.ChatID,
		BaseURL:   cfg.APIBase,
		ParseMode: cfg.ParseMode,
		Timeout:   cfg.RequestTimeout,
	}, a.Logger)
}

// Run executes the long-running polling service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Interval:       a.Config.Scheduler.Interval,
		AlignToStart:   a.Config.Scheduler.AlignToInterval,
		RunImmediately: a.Config.Scheduler.RunImmediately,
		StartupDelay:   a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	p := poller.New(sched, a.newFetcher(), a.newNotifier(), a.Logger)

	a.Logger.Info().
		Str("version", version.Version).
		Str("endpoint", a.Config.Mempool.Endpoint).
		Dur("interval", a.Config.Scheduler.Interval).
		Msg("whale watcher started")

	err := p.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("poller terminated with error")
		return err
	}

	a.Logger.Info().Msg("whale watcher stopped")
	return nil
}

// Check runs exactly one poll cycle.
func (a *App) Check(ctx context.Context, opts CheckOptions) error {
	var notifier alerting.Notifier
	if opts.DryRun {
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		notifier = alerting.NewWriterNotifier(out)
	} else {
		notifier = a.newNotifier()
	}

	poller.New(nil, a.newFetcher(), notifier, a.Logger).RunCycle(ctx)
	return nil
}
