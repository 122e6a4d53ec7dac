package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"invbot/internal/inventory"
	"invbot/pkg/logx"
)

// Fetcher retrieves one account's current snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, account string) (inventory.Snapshot, error)
}

// Notifier delivers a non-empty diff for one account. Delivery failures are
// the notifier's problem; the sweep never sees them.
type Notifier interface {
	Notify(ctx context.Context, account string, d inventory.Diff)
}

type Config struct {
	Accounts []string
	Interval time.Duration
}

// Service drives the poll loop: one baseline pass at startup, then a
// periodic sweep over all accounts. Sweeps never overlap — an overdue tick
// is skipped, not queued.
type Service struct {
	cfg    Config
	fetch  Fetcher
	notify Notifier
	store  *Store
	log    logx.Logger

	mu      sync.Mutex
	c       *cron.Cron
	started bool
}

func New(cfg Config, fetch Fetcher, notify Notifier, store *Store, log logx.Logger) *Service {
	if store == nil {
		store = NewStore()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, fetch: fetch, notify: notify, store: store, log: log}
}

// Store exposes the account state, mainly for tests and status surfaces.
func (s *Service) Store() *Store { return s.store }

// Start runs the baseline pass synchronously, then schedules the periodic
// sweep. It returns after the first sweep has been scheduled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.Baseline(ctx)

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{s.log}),
	))
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := c.AddFunc(spec, func() { s.Sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()

	s.mu.Lock()
	s.c = c
	s.mu.Unlock()

	s.log.Info("tracker started",
		logx.Int("accounts", len(s.cfg.Accounts)),
		logx.Duration("interval", s.cfg.Interval))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.started = false
	s.mu.Unlock()

	if c == nil {
		return
	}
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

// Baseline seeds the store with each account's current snapshot. No diff
// is computed and nothing is notified, whatever the per-account outcome.
func (s *Service) Baseline(ctx context.Context) {
	for _, account := range s.cfg.Accounts {
		if ctx.Err() != nil {
			return
		}
		snap, err := s.fetch.Fetch(ctx, account)
		if err != nil {
			s.log.Warn("baseline fetch failed", logx.String("account", account), logx.Err(err))
			continue
		}
		s.store.Put(account, snap)
		s.log.Info("baseline stored",
			logx.String("account", account),
			logx.Int("items", snap.Total()))
	}
}

// Sweep runs one sequential fetch-diff-notify-update pass over all
// accounts. A failure in one account never aborts the rest.
func (s *Service) Sweep(ctx context.Context) {
	started := time.Now()
	for _, account := range s.cfg.Accounts {
		if ctx.Err() != nil {
			return
		}
		s.sweepAccount(ctx, account)
	}
	s.log.Debug("sweep finished", logx.Duration("took", time.Since(started)))
}

func (s *Service) sweepAccount(ctx context.Context, account string) {
	cur, err := s.fetch.Fetch(ctx, account)
	if err != nil {
		// A failed fetch is never an empty inventory: keep the prior
		// snapshot untouched and move on.
		s.log.Warn("sweep fetch failed", logx.String("account", account), logx.Err(err))
		return
	}

	prev, ok := s.store.Get(account)
	if !ok {
		s.store.Put(account, cur)
		s.log.Info("baseline stored",
			logx.String("account", account),
			logx.Int("items", cur.Total()))
		return
	}

	d := inventory.ComputeDiff(prev, cur)
	if !d.Empty() {
		s.log.Info("inventory changed",
			logx.String("account", account),
			logx.Int("added", len(d.Added)),
			logx.Int("removed", len(d.Removed)))
		s.notify.Notify(ctx, account, d)
	}
	s.store.Put(account, cur)
}

// cronLogger adapts logx to cron.Logger so skipped ticks show up in our logs.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	fields := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		fields = append(fields, logx.Any(k, kv[i+1]))
	}
	return fields
}
