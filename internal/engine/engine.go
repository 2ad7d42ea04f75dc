// Package engine implements the cooking game's economy and ranking core:
// dynamic commodity pricing, the competitive recipe/collection ledger, the
// per-player restaurant simulation, and the periodic scheduler that ties
// them to wall-clock period boundaries. All state is in memory and owned by
// one manager per concern; persistence and mail delivery live behind narrow
// interfaces supplied by the host.
package engine

import "log/slog"

type Options struct {
	Ledger    LedgerConfig
	Scheduler SchedulerConfig
	Mail      MailSink
	Clock     Clock
	Logger    *slog.Logger
}

// Engine bundles one game world's managers. Construct one per world or
// session and pass it by reference; there is no package-level instance.
type Engine struct {
	Market    *PriceEngine
	Ledger    *RankingLedger
	Business  *BusinessSimulator
	Scheduler *Scheduler
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Scheduler.StoreTopN == 0 {
		opts.Scheduler.StoreTopN = opts.Ledger.withDefaults().StoreTopN
	}
	market := NewPriceEngine(opts.Clock, opts.Logger)
	ledger := NewRankingLedger(opts.Ledger, opts.Clock, opts.Logger)
	business := NewBusinessSimulator(opts.Clock, opts.Logger)
	return &Engine{
		Market:    market,
		Ledger:    ledger,
		Business:  business,
		Scheduler: NewScheduler(opts.Scheduler, ledger, business, opts.Mail, opts.Clock, opts.Logger),
	}
}
