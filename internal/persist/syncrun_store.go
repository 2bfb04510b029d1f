package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// SyncRunStoreImpl implements the SyncRunStore interface.
type SyncRunStoreImpl struct {
	db *database
}

var _ contract.SyncRunStore = &SyncRunStoreImpl{} // Compile-time check

// BeginRun records a run in the running state.
func (rs *SyncRunStoreImpl) BeginRun(ctx context.Context, run schema.SyncRunRecord) error {
	if rs.db.disabled() {
		return nil
	}
	if run.RunID == "" {
		return errors.New("sync run requires a run id")
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, user_id, scope, status, start_time, event_count, commit_count, repos_scanned)
		VALUES (%s)`, rs.db.table(syncRunsTable), rs.db.phList(8))
	args := []any{
		run.RunID, run.UserID, string(run.Scope), string(schema.SyncRunning),
		formatTime(run.StartTime, rs.db.backend), 0, 0, 0,
	}
	if _, err := rs.db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}
	return nil
}

// FinishRun records the terminal state of a run. The duration is derived from the stored start time.
func (rs *SyncRunStoreImpl) FinishRun(ctx context.Context, run schema.SyncRunRecord) error {
	if rs.db.disabled() {
		return nil
	}
	if run.EndTime == nil {
		return errors.New("sync run requires an end time to finish")
	}

	table := rs.db.table(syncRunsTable)
	var start timeScanner
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, table, rs.db.ph(1))
	if err := rs.db.db.QueryRowContext(ctx, selectQuery, run.RunID).Scan(&start); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sync run %s was never started", run.RunID)
		}
		return fmt.Errorf("failed to get start_time for sync run %s: %w", run.RunID, err)
	}
	durationMs := run.EndTime.Sub(start.Time).Milliseconds()

	var errMsg any
	if run.ErrorMessage != nil {
		errMsg = *run.ErrorMessage
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET status = %s, end_time = %s, run_duration_ms = %s,
		event_count = %s, commit_count = %s, repos_scanned = %s, error_message = %s WHERE run_id = %s`,
		table, rs.db.ph(1), rs.db.ph(2), rs.db.ph(3), rs.db.ph(4), rs.db.ph(5), rs.db.ph(6), rs.db.ph(7), rs.db.ph(8))
	args := []any{
		string(run.Status), formatTime(*run.EndTime, rs.db.backend), durationMs,
		run.EventCount, run.CommitCount, run.ReposScanned, errMsg, run.RunID,
	}
	if _, err := rs.db.db.ExecContext(ctx, updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	return nil
}

// GetAllRuns returns every recorded run ordered by start time.
func (rs *SyncRunStoreImpl) GetAllRuns(ctx context.Context) ([]schema.SyncRunRecord, error) {
	if rs.db.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, user_id, scope, status, start_time, end_time, run_duration_ms,
		event_count, commit_count, repos_scanned, error_message FROM %s ORDER BY start_time, run_id`,
		rs.db.table(syncRunsTable))
	rows, err := rs.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SyncRunRecord
	for rows.Next() {
		var record schema.SyncRunRecord
		var scope, status string
		var start, end timeScanner
		var duration sql.NullInt64
		var errMsg sql.NullString

		if err := rows.Scan(&record.RunID, &record.UserID, &scope, &status, &start, &end, &duration,
			&record.EventCount, &record.CommitCount, &record.ReposScanned, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		record.Scope = schema.SyncScope(scope)
		record.Status = schema.SyncStatus(status)
		record.StartTime = start.Time
		if end.Valid {
			endTime := end.Time
			record.EndTime = &endTime
		}
		if duration.Valid {
			ms := duration.Int64
			record.DurationMs = &ms
		}
		if errMsg.Valid {
			msg := errMsg.String
			record.ErrorMessage = &msg
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}
	return results, nil
}
