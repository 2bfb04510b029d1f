// Package parquet exports flowstate snapshots and sync runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/parquet-go/parquet-go"
)

// SnapshotRow is one weekly snapshot. It maps to the flowstate_snapshots table.
type SnapshotRow struct {
	UserID               string     `parquet:"user_id,snappy"`
	HasCalendar          bool       `parquet:"has_calendar,snappy"`
	WeeklyMeetingHours   float64    `parquet:"weekly_meeting_hours,snappy"`
	FragmentationScore   int32      `parquet:"fragmentation_score,snappy"`
	MeetingDebtHours     float64    `parquet:"meeting_debt_hours,snappy"`
	MeetingsPerDay       string     `parquet:"meetings_per_day,snappy"` // JSON object keyed by weekday
	HasCommits           bool       `parquet:"has_commits,snappy"`
	CommitHeatmap        string     `parquet:"commit_heatmap,snappy"` // JSON 7x24 array
	PeakHour             int32      `parquet:"peak_hour,snappy"`
	PeakDay              int32      `parquet:"peak_day,snappy"`
	TotalCommits         int32      `parquet:"total_commits,snappy"`
	RepositoriesAnalyzed int32      `parquet:"repositories_analyzed,snappy"`
	CalendarSyncedAt     *time.Time `parquet:"calendar_synced_at,optional,snappy"`
	CommitsSyncedAt      *time.Time `parquet:"commits_synced_at,optional,snappy"`
	LastSyncedAt         time.Time  `parquet:"last_synced_at,snappy"`
}

// SyncRunRow is one sync run. It maps to the flowstate_sync_runs table.
type SyncRunRow struct {
	RunID         string     `parquet:"run_id,snappy"`
	UserID        string     `parquet:"user_id,snappy"`
	Scope         string     `parquet:"scope,snappy"`
	Status        string     `parquet:"status,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int64     `parquet:"run_duration_ms,optional,snappy"`
	EventCount    int32      `parquet:"event_count,snappy"`
	CommitCount   int32      `parquet:"commit_count,snappy"`
	ReposScanned  int32      `parquet:"repos_scanned,snappy"`
	ErrorMessage  *string    `parquet:"error_message,optional,snappy"`
}

// WriteSnapshotsParquet writes snapshot rows to a Parquet file.
func WriteSnapshotsParquet(data []SnapshotRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteSyncRunsParquet writes sync run rows to a Parquet file.
func WriteSyncRunsParquet(data []SyncRunRow, outputPath string) error {
	return writeRows(data, outputPath)
}

func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is inferred from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertSnapshots converts weekly snapshots to Parquet rows.
func ConvertSnapshots(snapshots []schema.WeeklySnapshot) ([]SnapshotRow, error) {
	result := make([]SnapshotRow, len(snapshots))
	for i, s := range snapshots {
		meetings, err := json.Marshal(s.MeetingsPerDay)
		if err != nil {
			return nil, fmt.Errorf("failed to encode meetings for %s: %w", s.UserID, err)
		}
		heatmap, err := json.Marshal(s.CommitHeatmap)
		if err != nil {
			return nil, fmt.Errorf("failed to encode heatmap for %s: %w", s.UserID, err)
		}
		result[i] = SnapshotRow{
			UserID:               s.UserID,
			HasCalendar:          s.HasCalendar,
			WeeklyMeetingHours:   s.WeeklyMeetingHours,
			FragmentationScore:   int32(s.FragmentationScore),
			MeetingDebtHours:     s.MeetingDebtHours,
			MeetingsPerDay:       string(meetings),
			HasCommits:           s.HasCommits,
			CommitHeatmap:        string(heatmap),
			PeakHour:             int32(s.PeakHour),
			PeakDay:              int32(s.PeakDay),
			TotalCommits:         int32(s.TotalCommits),
			RepositoriesAnalyzed: int32(s.RepositoriesAnalyzed),
			CalendarSyncedAt:     optionalTime(s.CalendarSyncedAt),
			CommitsSyncedAt:      optionalTime(s.CommitsSyncedAt),
			LastSyncedAt:         s.LastSyncedAt,
		}
	}
	return result, nil
}

// ConvertSyncRuns converts sync run records to Parquet rows.
func ConvertSyncRuns(records []schema.SyncRunRecord) []SyncRunRow {
	result := make([]SyncRunRow, len(records))
	for i, r := range records {
		result[i] = SyncRunRow{
			RunID:         r.RunID,
			UserID:        r.UserID,
			Scope:         string(r.Scope),
			Status:        string(r.Status),
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.DurationMs,
			EventCount:    int32(r.EventCount),
			CommitCount:   int32(r.CommitCount),
			ReposScanned:  int32(r.ReposScanned),
			ErrorMessage:  r.ErrorMessage,
		}
	}
	return result
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
