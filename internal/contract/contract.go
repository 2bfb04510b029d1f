// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// GitClient defines the git operations needed to collect commit timestamps.
// This allows the commit source to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetLastCommitTime returns the time of the HEAD commit.
	GetLastCommitTime(ctx context.Context, repoPath string) (time.Time, error)

	// GetCommitTimes returns authoring times of commits matching the query, newest first.
	GetCommitTimes(ctx context.Context, repoPath string, query CommitQuery) ([]time.Time, error)
}

// CommitQuery narrows a commit log lookup.
type CommitQuery struct {
	Since  time.Time
	Until  time.Time
	Author string // optional author filter passed to git
	Limit  int    // zero means no limit
}

// CalendarSource lists the meetings of a user between two instants.
type CalendarSource interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]schema.Event, error)
}

// CommitSource lists commit timestamps across the reachable repositories of a user.
type CommitSource interface {
	FetchCommits(ctx context.Context, since, until time.Time) (schema.CommitBatch, error)
}

// SnapshotStore persists one weekly snapshot per user with last-write-wins semantics.
type SnapshotStore interface {
	// Get returns the stored snapshot, or nil when the user has none.
	Get(ctx context.Context, userID string) (*schema.WeeklySnapshot, error)

	// Upsert creates or replaces the snapshot of snap.UserID.
	Upsert(ctx context.Context, snap schema.WeeklySnapshot) error

	// Delete removes the snapshot of a user. Missing rows are not an error.
	Delete(ctx context.Context, userID string) error

	// GetAll returns every stored snapshot ordered by user.
	GetAll(ctx context.Context) ([]schema.WeeklySnapshot, error)
}

// SettingsStore persists per-user preferences.
type SettingsStore interface {
	// Get returns the stored settings, or the defaults when the user has none.
	Get(ctx context.Context, userID string) (schema.UserSettings, error)

	// Upsert creates or replaces the settings of s.UserID.
	Upsert(ctx context.Context, s schema.UserSettings) error
}

// SyncRunStore tracks sync runs for auditing and export.
type SyncRunStore interface {
	// BeginRun records a run in the running state.
	BeginRun(ctx context.Context, run schema.SyncRunRecord) error

	// FinishRun records the terminal state, counts, and error of a run.
	FinishRun(ctx context.Context, run schema.SyncRunRecord) error

	// GetAllRuns returns every recorded run ordered by start time.
	GetAllRuns(ctx context.Context) ([]schema.SyncRunRecord, error)
}

// StoreManager defines the interface for accessing the persistence stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetSnapshotStore() SnapshotStore
	GetSettingsStore() SettingsStore
	GetSyncRunStore() SyncRunStore
	GetStatus(ctx context.Context) (schema.StoreStatus, error)
}

// MetricsExporter publishes sync outcomes to an observability backend.
type MetricsExporter interface {
	RecordSync(ctx context.Context, outcome schema.SyncOutcome)
	Close(ctx context.Context) error
}
