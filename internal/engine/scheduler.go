package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MailSink receives outbound notifications. Delivery is fire-and-forget
// from the engine's perspective; a failing sink is logged, never fatal.
type MailSink interface {
	Deliver(ctx context.Context, msgs []MailMessage) error
}

type SchedulerConfig struct {
	RankingRefreshEvery time.Duration
	StoreRotationEvery  time.Duration
	StoreTopN           int
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.RankingRefreshEvery <= 0 {
		c.RankingRefreshEvery = 24 * time.Hour
	}
	if c.StoreRotationEvery <= 0 {
		c.StoreRotationEvery = 30 * 24 * time.Hour
	}
	return c
}

// Scheduler drives the ledger and business simulator across period
// boundaries. Jobs are idempotent by timestamp: a tick before the period
// has elapsed is a no-op, so the caller may poll as often as it likes.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	log      *slog.Logger
	cfg      SchedulerConfig
	ledger   *RankingLedger
	business *BusinessSimulator
	mail     MailSink

	lastRankingRun  time.Time
	lastRotationRun time.Time
}

func NewScheduler(cfg SchedulerConfig, ledger *RankingLedger, business *BusinessSimulator, mail MailSink, clock Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:    clock,
		log:      logger,
		cfg:      cfg.withDefaults(),
		ledger:   ledger,
		business: business,
		mail:     mail,
	}
}

// Tick checks every job against its period and runs the due ones. A job
// that fails is reported and does not block the rest of the tick.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()

	if due(s.lastRankingRun, now, s.cfg.RankingRefreshEvery) {
		s.lastRankingRun = now
		s.runRankingJob(ctx)
	}

	if due(s.lastRotationRun, now, s.cfg.StoreRotationEvery) {
		s.lastRotationRun = now
		listings := s.ledger.RotateStore(s.cfg.StoreTopN)
		s.log.Info("store rotated", "listings", len(listings))
	}

	if s.business != nil {
		if reset := s.business.ResetDailyDue(now); reset > 0 {
			s.log.Info("daily business stats reset", "restaurants", reset)
		}
		if leveled := s.business.AdvanceUpgrades(now); len(leveled) > 0 {
			s.log.Info("restaurant upgrades completed", "players", leveled)
		}
	}
}

func (s *Scheduler) runRankingJob(ctx context.Context) {
	ranked := s.ledger.RefreshPlayerRankings()
	s.log.Info("player rankings refreshed", "players", ranked)

	if s.mail == nil {
		return
	}
	mails := append(s.ledger.RoyaltyMails(), s.ledger.RankingMails()...)
	if len(mails) == 0 {
		return
	}
	if err := s.mail.Deliver(ctx, mails); err != nil {
		s.log.Error("mail delivery failed", "count", len(mails), "err", err)
		return
	}
	s.log.Info("notification mails delivered", "count", len(mails))
}

// due treats a zero last-run as immediately due, so a fresh world settles
// its leaderboards on the first tick.
func due(lastRun, now time.Time, period time.Duration) bool {
	return lastRun.IsZero() || now.Sub(lastRun) >= period
}
