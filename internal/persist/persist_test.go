package persist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager opens a store manager on a throwaway SQLite file.
func newTestManager(t *testing.T) (*StoreManager, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "flowstate_test.db")
	mgr, err := NewStoreManager(context.Background(), schema.SQLiteBackend, dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, dbPath
}

func sampleSnapshot(user string, at time.Time) schema.WeeklySnapshot {
	var grid schema.Heatmap
	grid[3][10] = 7
	grid[1][9] = 2
	return schema.WeeklySnapshot{
		UserID:               user,
		HasCalendar:          true,
		WeeklyMeetingHours:   11,
		FragmentationScore:   67,
		MeetingDebtHours:     3.2,
		MeetingsPerDay:       map[string]int{"sun": 0, "mon": 4, "tue": 3, "wed": 5, "thu": 3, "fri": 2, "sat": 0},
		HasCommits:           true,
		CommitHeatmap:        grid,
		PeakHour:             10,
		PeakDay:              3,
		TotalCommits:         9,
		RepositoriesAnalyzed: 2,
		CalendarSyncedAt:     at,
		CommitsSyncedAt:      at,
		LastSyncedAt:         at,
	}
}

func TestSnapshotStore_SQLite(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)
	store := mgr.GetSnapshotStore()
	at := time.Date(2024, 6, 7, 18, 30, 0, 0, time.UTC)

	t.Run("missing user", func(t *testing.T) {
		snap, err := store.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("upsert then get", func(t *testing.T) {
		want := sampleSnapshot("alice", at)
		require.NoError(t, store.Upsert(ctx, want))

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.FragmentationScore, got.FragmentationScore)
		assert.InDelta(t, want.MeetingDebtHours, got.MeetingDebtHours, 1e-9)
		assert.Equal(t, want.MeetingsPerDay, got.MeetingsPerDay)
		assert.Equal(t, want.CommitHeatmap, got.CommitHeatmap)
		assert.True(t, got.HasCalendar)
		assert.True(t, got.HasCommits)
		assert.True(t, want.LastSyncedAt.Equal(got.LastSyncedAt))
	})

	t.Run("upsert replaces", func(t *testing.T) {
		next := sampleSnapshot("alice", at.Add(time.Hour))
		next.FragmentationScore = 12
		next.HasCommits = false
		next.CommitHeatmap = schema.Heatmap{}
		next.CommitsSyncedAt = time.Time{}
		require.NoError(t, store.Upsert(ctx, next))

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 12, got.FragmentationScore)
		assert.False(t, got.HasCommits)
		assert.True(t, got.CommitsSyncedAt.IsZero())

		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("nil meetings stored as zeroed week", func(t *testing.T) {
		snap := sampleSnapshot("bob", at)
		snap.MeetingsPerDay = nil
		require.NoError(t, store.Upsert(ctx, snap))

		got, err := store.Get(ctx, "bob")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.MeetingsPerDay, schema.DaysPerWeek)
		assert.Equal(t, 0, got.MeetingsPerDay["mon"])
	})

	t.Run("requires user", func(t *testing.T) {
		assert.Error(t, store.Upsert(ctx, schema.WeeklySnapshot{}))
	})

	t.Run("get all ordered by user", func(t *testing.T) {
		all, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "alice", all[0].UserID)
		assert.Equal(t, "bob", all[1].UserID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "bob"))
		require.NoError(t, store.Delete(ctx, "bob"))

		got, err := store.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSettingsStore_SQLite(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)
	store := mgr.GetSettingsStore()

	t.Run("defaults when absent", func(t *testing.T) {
		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, schema.DefaultUserSettings("alice"), got)
	})

	t.Run("upsert then get", func(t *testing.T) {
		want := schema.UserSettings{UserID: "alice", TargetDeepHours: 2.5, Timezone: "UTC", EmailReports: false}
		require.NoError(t, store.Upsert(ctx, want))

		got, err := store.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
		assert.InDelta(t, 2.5, got.TargetDeepHours, 1e-9)
		assert.Equal(t, "UTC", got.Timezone)
		assert.False(t, got.EmailReports)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("invalid settings rejected", func(t *testing.T) {
		bad := []schema.UserSettings{
			{UserID: "", TargetDeepHours: 4, Timezone: "UTC"},
			{UserID: "alice", TargetDeepHours: 0, Timezone: "UTC"},
			{UserID: "alice", TargetDeepHours: 4, Timezone: "Mars/Olympus"},
		}
		for _, s := range bad {
			assert.Error(t, store.Upsert(ctx, s))
		}
	})
}

func TestSettingsStore_CustomDefaults(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "defaults.db")
	defaults := func(user string) schema.UserSettings {
		s := schema.DefaultUserSettings(user)
		s.Timezone = "UTC"
		return s
	}
	mgr, err := NewStoreManager(ctx, schema.SQLiteBackend, dbPath, defaults)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()

	got, err := mgr.GetSettingsStore().Get(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, "UTC", got.Timezone)
}

func TestSyncRunStore_SQLite(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)
	store := mgr.GetSyncRunStore()
	start := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)

	require.NoError(t, store.BeginRun(ctx, schema.SyncRunRecord{
		RunID: "run-1", UserID: "alice", Scope: schema.ScopeAll, StartTime: start,
	}))
	require.NoError(t, store.BeginRun(ctx, schema.SyncRunRecord{
		RunID: "run-2", UserID: "alice", Scope: schema.ScopeCalendar, StartTime: start.Add(time.Minute),
	}))

	end := start.Add(1500 * time.Millisecond)
	require.NoError(t, store.FinishRun(ctx, schema.SyncRunRecord{
		RunID: "run-1", Status: schema.SyncSucceeded, EndTime: &end, EventCount: 12, CommitCount: 40, ReposScanned: 3,
	}))

	runs, err := store.GetAllRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-1", runs[0].RunID)
	assert.Equal(t, schema.SyncSucceeded, runs[0].Status)
	assert.Equal(t, schema.ScopeAll, runs[0].Scope)
	require.NotNil(t, runs[0].DurationMs)
	assert.Equal(t, int64(1500), *runs[0].DurationMs)
	require.NotNil(t, runs[0].EndTime)
	assert.Equal(t, 40, runs[0].CommitCount)
	assert.Nil(t, runs[0].ErrorMessage)

	assert.Equal(t, schema.SyncRunning, runs[1].Status)
	assert.Nil(t, runs[1].EndTime)
	assert.Nil(t, runs[1].DurationMs)

	t.Run("failed run keeps message", func(t *testing.T) {
		msg := "calendar fetch failed: boom"
		end := start.Add(2 * time.Minute)
		require.NoError(t, store.FinishRun(ctx, schema.SyncRunRecord{
			RunID: "run-2", Status: schema.SyncFailed, EndTime: &end, ErrorMessage: &msg,
		}))
		runs, err := store.GetAllRuns(ctx)
		require.NoError(t, err)
		require.NotNil(t, runs[1].ErrorMessage)
		assert.Equal(t, msg, *runs[1].ErrorMessage)
	})

	t.Run("errors", func(t *testing.T) {
		assert.Error(t, store.BeginRun(ctx, schema.SyncRunRecord{}))
		assert.Error(t, store.FinishRun(ctx, schema.SyncRunRecord{RunID: "run-1"}))
		assert.Error(t, store.FinishRun(ctx, schema.SyncRunRecord{RunID: "missing", EndTime: &end}))
	})
}

func TestStores_NoneBackend(t *testing.T) {
	ctx := context.Background()
	mgr, err := NewStoreManager(ctx, schema.NoneBackend, "", nil)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()

	require.NoError(t, mgr.GetSnapshotStore().Upsert(ctx, sampleSnapshot("alice", time.Now())))
	snap, err := mgr.GetSnapshotStore().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, snap)

	settings, err := mgr.GetSettingsStore().Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultUserSettings("alice"), settings)

	require.NoError(t, mgr.GetSyncRunStore().BeginRun(ctx, schema.SyncRunRecord{RunID: "x"}))
	runs, err := mgr.GetSyncRunStore().GetAllRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	status, err := mgr.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
}

func TestNewStoreManagerErrors(t *testing.T) {
	_, err := NewStoreManager(context.Background(), schema.DatabaseBackend("oracle"), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store backend")
}

func TestGetStatus_SQLite(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)
	at := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)

	status, err := mgr.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalSnapshots)

	require.NoError(t, mgr.GetSnapshotStore().Upsert(ctx, sampleSnapshot("alice", at)))
	require.NoError(t, mgr.GetSnapshotStore().Upsert(ctx, sampleSnapshot("bob", at.Add(time.Hour))))
	require.NoError(t, mgr.GetSyncRunStore().BeginRun(ctx, schema.SyncRunRecord{RunID: "r1", UserID: "alice", Scope: schema.ScopeAll, StartTime: at}))
	end := at.Add(time.Second)
	require.NoError(t, mgr.GetSyncRunStore().FinishRun(ctx, schema.SyncRunRecord{RunID: "r1", Status: schema.SyncFailed, EndTime: &end}))

	status, err = mgr.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalSnapshots)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 1, status.FailedRuns)
	assert.True(t, status.LastSyncTime.Equal(at.Add(time.Hour)))
	assert.True(t, status.OldestSyncTime.Equal(at))
	assert.Equal(t, int64(2), status.TableSizes[snapshotsTable])
	assert.Equal(t, int64(0), status.TableSizes[settingsTable])
	assert.GreaterOrEqual(t, status.SizeBytes, int64(0))

	var buf bytes.Buffer
	PrintStoreStatus(&buf, status)
	assert.Contains(t, buf.String(), "Store Backend: sqlite")
	assert.Contains(t, buf.String(), "Total Snapshots: 2")
	assert.Contains(t, buf.String(), "Total Runs: 1 (1 failed)")
}

func TestPrintStoreStatus_Disconnected(t *testing.T) {
	var buf bytes.Buffer
	PrintStoreStatus(&buf, schema.StoreStatus{Backend: "none"})
	assert.Equal(t, "Store Backend: none\nConnected: false\n", buf.String())
}

func TestInitStores(t *testing.T) {
	t.Run("idempotent setup", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test
		dbPath := filepath.Join(t.TempDir(), "global.db")
		ctx := context.Background()

		require.NoError(t, InitStores(ctx, schema.SQLiteBackend, dbPath, nil))
		require.NoError(t, InitStores(ctx, schema.SQLiteBackend, dbPath, nil))
		assert.NotNil(t, Manager.GetSnapshotStore())
		assert.NotNil(t, Manager.GetSettingsStore())
		assert.NotNil(t, Manager.GetSyncRunStore())

		CloseStores()
		CloseStores()

		_, err := os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("init error surfaces", func(t *testing.T) {
		initOnce = sync.Once{}  // Reset for test
		closeOnce = sync.Once{} // Reset for test
		err := InitStores(context.Background(), schema.DatabaseBackend("oracle"), "", nil)
		assert.Error(t, err)
	})
}

func TestClearStores(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "clear.db")
		mgr, err := NewStoreManager(ctx, schema.SQLiteBackend, dbPath, nil)
		require.NoError(t, err)
		require.NoError(t, mgr.Close())

		require.NoError(t, ClearStores(ctx, schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Already gone is fine
		assert.NoError(t, ClearStores(ctx, schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		assert.Error(t, ClearStores(ctx, schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearStores(ctx, schema.NoneBackend, "", ""))
	})

	t.Run("unknown backend", func(t *testing.T) {
		assert.Error(t, ClearStores(ctx, schema.DatabaseBackend("oracle"), "", ""))
	})
}
