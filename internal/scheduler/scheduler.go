// Package scheduler runs periodic background syncs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/schema"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// syncer is the part of core.Service the scheduler drives.
type syncer interface {
	Sync(ctx context.Context, scope schema.SyncScope) (*schema.WeeklySnapshot, error)
}

// Scheduler syncs a fixed set of users on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	svc     syncer
	users   []string
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler that syncs users on spec, a standard five-field cron expression.
// loc is the timezone the expression is evaluated in.
func New(spec string, loc *time.Location, svc syncer, users []string, timeout time.Duration, log zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		svc:     svc,
		users:   users,
		timeout: timeout,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid schedule '%s': %w", spec, err)
	}
	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.log.Info().Int("users", len(s.users)).Msg("sync scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("sync scheduler stopped")
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce syncs every user in turn. A tick that fires while the previous one is
// still running is skipped. Failures are logged and do not stop other users.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Info().Msg("scheduled sync already running")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for _, user := range s.users {
		s.syncUser(ctx, user)
	}
}

func (s *Scheduler) syncUser(ctx context.Context, user string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := s.svc.Sync(core.WithUser(ctx, user), schema.ScopeAll)
	if err != nil {
		s.log.Error().Err(err).Str("user", user).Msg("scheduled sync failed")
		return
	}
	s.log.Info().
		Str("user", user).
		Int("fragmentation_score", snap.FragmentationScore).
		Int("total_commits", snap.TotalCommits).
		Dur("duration", time.Since(start)).
		Msg("scheduled sync finished")
}
