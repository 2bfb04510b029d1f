package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// Source names used in errors and run records.
const (
	calendarSource = "calendar"
	commitSource   = "commits"
)

// Syncer refreshes the weekly snapshot of a user from the connected sources.
// A sync either writes one merged snapshot or writes nothing.
type Syncer struct {
	calendar     contract.CalendarSource
	commits      contract.CommitSource
	stores       contract.StoreManager
	metrics      contract.MetricsExporter
	params       schema.FlowParams
	timeout      time.Duration
	lookbackDays int
	now          func() time.Time
	warn         func(msg string, err error)
}

// NewSyncer creates a syncer with no sources connected.
func NewSyncer(stores contract.StoreManager, params schema.FlowParams) *Syncer {
	return &Syncer{
		stores:       stores,
		params:       params,
		timeout:      contract.DefaultSyncTimeout,
		lookbackDays: schema.DefaultLookbackDays,
		now:          time.Now,
		warn:         contract.LogWarn,
	}
}

// WithCalendar connects the calendar path.
func (s *Syncer) WithCalendar(src contract.CalendarSource) *Syncer {
	s.calendar = src
	return s
}

// WithCommits connects the commit path.
func (s *Syncer) WithCommits(src contract.CommitSource) *Syncer {
	s.commits = src
	return s
}

// WithMetrics publishes every finished sync to m.
func (s *Syncer) WithMetrics(m contract.MetricsExporter) *Syncer {
	s.metrics = m
	return s
}

// WithTimeout bounds the collaborator fetches of one sync.
func (s *Syncer) WithTimeout(d time.Duration) *Syncer {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithLookbackDays sets the commit window length.
func (s *Syncer) WithLookbackDays(days int) *Syncer {
	if days > 0 {
		s.lookbackDays = days
	}
	return s
}

// WithClock replaces the wall clock.
func (s *Syncer) WithClock(now func() time.Time) *Syncer {
	s.now = now
	return s
}

// WithWarn replaces the reporter used when run tracking fails.
func (s *Syncer) WithWarn(warn func(msg string, err error)) *Syncer {
	s.warn = warn
	return s
}

// Connected reports which paths have a source attached.
func (s *Syncer) Connected() (calendar, commits bool) {
	return s.calendar != nil, s.commits != nil
}

// syncCounts feeds the run record and metrics.
type syncCounts struct {
	events  int
	commits int
	repos   int
}

// Sync refreshes the requested paths for the user attached to ctx and persists the merged
// snapshot. Fields of paths outside scope keep their previous values.
func (s *Syncer) Sync(ctx context.Context, scope schema.SyncScope) (*schema.WeeklySnapshot, error) {
	user, ok := UserFrom(ctx)
	if !ok {
		return nil, contract.ErrUnauthenticated
	}
	if scope == "" {
		scope = schema.ScopeAll
	}
	wantCalendar, wantCommits, err := s.plan(scope)
	if err != nil {
		return nil, err
	}

	start := s.now()
	run := schema.SyncRunRecord{
		RunID:     uuid.NewString(),
		UserID:    user,
		Scope:     scope,
		Status:    schema.SyncRunning,
		StartTime: start,
	}
	if err := s.stores.GetSyncRunStore().BeginRun(ctx, run); err != nil {
		s.warn("Failed to record sync run start", err)
	}

	snap, counts, err := s.run(ctx, user, wantCalendar, wantCommits)
	s.finish(ctx, run, counts, snap, err)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// plan resolves scope into the paths to compute. ScopeAll runs every connected path.
func (s *Syncer) plan(scope schema.SyncScope) (calendar, commits bool, err error) {
	switch scope {
	case schema.ScopeCalendar:
		if s.calendar == nil {
			return false, false, contract.NotConnectedError(calendarSource)
		}
		return true, false, nil
	case schema.ScopeCommits:
		if s.commits == nil {
			return false, false, contract.NotConnectedError(commitSource)
		}
		return false, true, nil
	case schema.ScopeAll:
		calendar, commits = s.Connected()
		if !calendar && !commits {
			return false, false, contract.NotConnectedError("calendar and commits")
		}
		return calendar, commits, nil
	default:
		return false, false, contract.InvalidInputError(fmt.Errorf("invalid sync scope '%s'. must be all, calendar, commits", scope))
	}
}

// run computes the requested paths concurrently, then merges and upserts.
func (s *Syncer) run(ctx context.Context, user string, wantCalendar, wantCommits bool) (*schema.WeeklySnapshot, syncCounts, error) {
	var counts syncCounts

	settings, err := s.stores.GetSettingsStore().Get(ctx, user)
	if err != nil {
		return nil, counts, fmt.Errorf("loading settings: %w", err)
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, counts, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	now := s.now()

	var (
		wg             sync.WaitGroup
		cal            schema.CalendarMetrics
		com            schema.CommitMetrics
		calErr, comErr error
	)
	if wantCalendar {
		wg.Go(func() { cal, calErr = s.syncCalendar(ctx, now, loc) })
	}
	if wantCommits {
		wg.Go(func() { com, comErr = s.syncCommits(ctx, now, loc) })
	}
	wg.Wait()

	counts = syncCounts{events: cal.EventCount, commits: com.TotalCommits, repos: com.RepositoriesAnalyzed}
	if err := errors.Join(calErr, comErr); err != nil {
		return nil, counts, err
	}
	if err := ctx.Err(); err != nil {
		return nil, counts, fmt.Errorf("sync interrupted: %w", err)
	}

	snapshots := s.stores.GetSnapshotStore()
	prev, err := snapshots.Get(ctx, user)
	if err != nil {
		return nil, counts, fmt.Errorf("loading snapshot: %w", err)
	}
	snap := schema.WeeklySnapshot{UserID: user, MeetingsPerDay: schema.NewMeetingsPerDay()}
	if prev != nil {
		snap = *prev
	}
	if wantCalendar {
		snap.ApplyCalendar(cal, now)
	}
	if wantCommits {
		snap.ApplyCommits(com, now)
	}
	if err := snapshots.Upsert(ctx, snap); err != nil {
		return nil, counts, fmt.Errorf("saving snapshot: %w", err)
	}
	return &snap, counts, nil
}

// syncCalendar runs the calendar path over the week containing now.
func (s *Syncer) syncCalendar(ctx context.Context, now time.Time, loc *time.Location) (schema.CalendarMetrics, error) {
	start, end := schema.WeekWindow(now, loc)
	events, err := s.calendar.FetchEvents(ctx, start, end)
	if err != nil {
		return schema.CalendarMetrics{}, asUpstream(calendarSource, err)
	}
	return algo.CalendarMetrics(algo.BucketByDay(events, loc), loc, s.params), nil
}

// syncCommits runs the commit path over the lookback window ending at now.
func (s *Syncer) syncCommits(ctx context.Context, now time.Time, loc *time.Location) (schema.CommitMetrics, error) {
	since, until := schema.LookbackWindow(now, s.lookbackDays)
	batch, err := s.commits.FetchCommits(ctx, since, until)
	if err != nil {
		return schema.CommitMetrics{}, asUpstream(commitSource, err)
	}
	return algo.CommitMetrics(batch.Points, batch.RepositoriesAnalyzed, loc), nil
}

// finish records the terminal state of a run and publishes its metrics.
func (s *Syncer) finish(ctx context.Context, run schema.SyncRunRecord, counts syncCounts, snap *schema.WeeklySnapshot, err error) {
	end := s.now()
	duration := end.Sub(run.StartTime)
	durationMs := duration.Milliseconds()

	run.Status = schema.SyncSucceeded
	run.EndTime = &end
	run.DurationMs = &durationMs
	run.EventCount = counts.events
	run.CommitCount = counts.commits
	run.ReposScanned = counts.repos
	if err != nil {
		run.Status = schema.SyncFailed
		msg := err.Error()
		run.ErrorMessage = &msg
	}

	// the caller context may already be cancelled; the record is still wanted
	recordCtx := context.WithoutCancel(ctx)
	if rerr := s.stores.GetSyncRunStore().FinishRun(recordCtx, run); rerr != nil {
		s.warn("Failed to record sync run result", rerr)
	}
	if s.metrics != nil {
		s.metrics.RecordSync(recordCtx, schema.SyncOutcome{
			RunID:        run.RunID,
			UserID:       run.UserID,
			Scope:        run.Scope,
			Status:       run.Status,
			Duration:     duration,
			EventCount:   counts.events,
			CommitCount:  counts.commits,
			ReposScanned: counts.repos,
			Snapshot:     snap,
			Err:          err,
		})
	}
}

// asUpstream tags err with source unless a collaborator already did.
func asUpstream(source string, err error) error {
	if errors.Is(err, contract.ErrUpstreamFetch) {
		return err
	}
	return contract.NewUpstreamError(source, err)
}
