package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// snapshotColumns is the column order used for reads and writes.
var snapshotColumns = []string{
	"user_id", "has_calendar", "weekly_meeting_hours", "fragmentation_score", "meeting_debt_hours",
	"meetings_per_day", "has_commits", "commit_heatmap", "peak_hour", "peak_day",
	"total_commits", "repositories_analyzed", "calendar_synced_at", "commits_synced_at", "last_synced_at",
}

// SnapshotStoreImpl implements the SnapshotStore interface.
type SnapshotStoreImpl struct {
	db *database
}

var _ contract.SnapshotStore = &SnapshotStoreImpl{} // Compile-time check

// Get returns the stored snapshot of a user, or nil when there is none.
func (ss *SnapshotStoreImpl) Get(ctx context.Context, userID string) (*schema.WeeklySnapshot, error) {
	if ss.db.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = %s`,
		strings.Join(snapshotColumns, ", "), ss.db.table(snapshotsTable), ss.db.ph(1))
	row := ss.db.db.QueryRowContext(ctx, query, userID)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", userID, err)
	}
	return snap, nil
}

// Upsert creates or replaces the snapshot of snap.UserID in a single statement.
func (ss *SnapshotStoreImpl) Upsert(ctx context.Context, snap schema.WeeklySnapshot) error {
	if ss.db.disabled() {
		return nil
	}
	if snap.UserID == "" {
		return errors.New("snapshot requires a user")
	}

	perDay := snap.MeetingsPerDay
	if perDay == nil {
		perDay = schema.NewMeetingsPerDay()
	}
	perDayJSON, err := json.Marshal(perDay)
	if err != nil {
		return fmt.Errorf("failed to marshal meetings per day: %w", err)
	}
	heatmapJSON, err := json.Marshal(snap.CommitHeatmap)
	if err != nil {
		return fmt.Errorf("failed to marshal commit heatmap: %w", err)
	}

	backend := ss.db.backend
	args := []any{
		snap.UserID, snap.HasCalendar, snap.WeeklyMeetingHours, snap.FragmentationScore, snap.MeetingDebtHours,
		string(perDayJSON), snap.HasCommits, string(heatmapJSON), snap.PeakHour, snap.PeakDay,
		snap.TotalCommits, snap.RepositoriesAnalyzed,
		formatNullableTime(snap.CalendarSyncedAt, backend),
		formatNullableTime(snap.CommitsSyncedAt, backend),
		formatTime(snap.LastSyncedAt, backend),
	}

	query := ss.db.upsertQuery(snapshotsTable, "user_id", snapshotColumns)
	if _, err := ss.db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snap.UserID, err)
	}
	return nil
}

// Delete removes the snapshot of a user. Missing rows are not an error.
func (ss *SnapshotStoreImpl) Delete(ctx context.Context, userID string) error {
	if ss.db.disabled() {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = %s`, ss.db.table(snapshotsTable), ss.db.ph(1))
	if _, err := ss.db.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete snapshot for %s: %w", userID, err)
	}
	return nil
}

// GetAll returns every stored snapshot ordered by user.
func (ss *SnapshotStoreImpl) GetAll(ctx context.Context) ([]schema.WeeklySnapshot, error) {
	if ss.db.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY user_id`,
		strings.Join(snapshotColumns, ", "), ss.db.table(snapshotsTable))
	rows, err := ss.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.WeeklySnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		results = append(results, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads one row in snapshotColumns order.
func scanSnapshot(row rowScanner) (*schema.WeeklySnapshot, error) {
	var snap schema.WeeklySnapshot
	var perDayJSON, heatmapJSON string
	var calendarAt, commitsAt, lastAt timeScanner

	if err := row.Scan(
		&snap.UserID, &snap.HasCalendar, &snap.WeeklyMeetingHours, &snap.FragmentationScore, &snap.MeetingDebtHours,
		&perDayJSON, &snap.HasCommits, &heatmapJSON, &snap.PeakHour, &snap.PeakDay,
		&snap.TotalCommits, &snap.RepositoriesAnalyzed, &calendarAt, &commitsAt, &lastAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(perDayJSON), &snap.MeetingsPerDay); err != nil {
		return nil, fmt.Errorf("failed to decode meetings per day: %w", err)
	}
	if err := json.Unmarshal([]byte(heatmapJSON), &snap.CommitHeatmap); err != nil {
		return nil, fmt.Errorf("failed to decode commit heatmap: %w", err)
	}
	snap.CalendarSyncedAt = calendarAt.Time
	snap.CommitsSyncedAt = commitsAt.Time
	snap.LastSyncedAt = lastAt.Time
	return &snap, nil
}
