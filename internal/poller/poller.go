package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mempool-whale-alerts/internal/alerting"
	"mempool-whale-alerts/internal/mempool"
	"mempool-whale-alerts/internal/scheduler"
)

// Poller runs the fetch, filter, format and notify cycle.
type Poller struct {
	scheduler *scheduler.Scheduler
	fetcher   mempool.CandidateFetcher
	notifier  alerting.Notifier
	logger    zerolog.Logger
}

// New constructs a poller. sched may be nil when only RunCycle is used.
func New(sched *scheduler.Scheduler, fetcher mempool.CandidateFetcher, notifier alerting.Notifier, logger zerolog.Logger) *Poller {
	return &Poller{
		scheduler: sched,
		fetcher:   fetcher,
		notifier:  notifier,
		logger:    logger.With().Str("component", "poller").Logger(),
	}
}

// Run drives RunCycle from the scheduler until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return p.scheduler.Run(ctx, p.tick)
}

func (p *Poller) tick(ctx context.Context, at time.Time) error {
	p.RunCycle(ctx)
	return nil
}

// RunCycle performs one poll. Every failure ends in a log line; nothing escapes.
func (p *Poller) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("cycle aborted by panic")
		}
	}()

	started := time.Now()
	p.logger.Info().Msg("checking mempool for large transactions")

	candidates := p.fetchCandidates(ctx)
	if len(candidates) == 0 {
		p.logger.Info().Dur("elapsed", time.Since(started)).Msg("no large transactions found")
		return
	}

	p.sendAlert(ctx, candidates)
}

func (p *Poller) fetchCandidates(ctx context.Context) []mempool.Transaction {
	res, err := p.fetcher.FetchCandidates(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to fetch mempool transactions")
		return nil
	}

	p.logger.Info().
		Int("matched", res.Matched).
		Int("scanned", res.Scanned).
		Int("selected", len(res.Candidates)).
		Msg("large transactions found")
	return res.Candidates
}

func (p *Poller) sendAlert(ctx context.Context, candidates []mempool.Transaction) {
	if p.notifier == nil {
		p.logger.Error().Msg("no notifier configured; alert dropped")
		return
	}

	msg := alerting.Message{Text: alerting.FormatAlert(candidates), TxCount: len(candidates)}
	if err := p.notifier.Notify(ctx, msg); err != nil {
		p.logger.Error().Err(err).Int("transactions", len(candidates)).Msg("failed to send alert")
		return
	}
	p.logger.Info().Int("transactions", len(candidates)).Msg("alert sent")
}
