package persist

import (
	"context"
	"fmt"
	"io"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/flowstate/schema"
)

// GetStatus returns status information about the stores.
func (mgr *StoreManager) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	mgr.RLock()
	d := mgr.database
	mgr.RUnlock()

	status := schema.StoreStatus{
		TableSizes: make(map[string]int64),
	}
	if d == nil {
		return status, nil
	}
	status.Backend = string(d.backend)
	status.Connected = d.db != nil
	if d.disabled() {
		return status, nil
	}

	for _, table := range allTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", d.table(table))
		if err := d.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSnapshots = int(status.TableSizes[snapshotsTable])
	status.TotalRuns = int(status.TableSizes[syncRunsTable])

	if status.TotalSnapshots > 0 {
		var last, oldest timeScanner
		query := fmt.Sprintf("SELECT MAX(last_synced_at), MIN(last_synced_at) FROM %s", d.table(snapshotsTable))
		if err := d.db.QueryRowContext(ctx, query).Scan(&last, &oldest); err != nil {
			return status, fmt.Errorf("failed to get sync times: %w", err)
		}
		status.LastSyncTime = last.Time
		status.OldestSyncTime = oldest.Time
	}

	if status.TotalRuns > 0 {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE status = %s", d.table(syncRunsTable), d.ph(1))
		if err := d.db.QueryRowContext(ctx, query, string(schema.SyncFailed)).Scan(&status.FailedRuns); err != nil {
			return status, fmt.Errorf("failed to get failed runs: %w", err)
		}
	}

	status.SizeBytes = d.sizeBytes(ctx, status)
	return status, nil
}

// sizeBytes estimates the on-disk size of the store tables. Failures fall back to a rough estimate.
func (d *database) sizeBytes(ctx context.Context, status schema.StoreStatus) int64 {
	var rows int64
	for _, n := range status.TableSizes {
		rows += n
	}
	estimate := rows * 1000

	switch d.backend {
	case schema.SQLiteBackend:
		var size int64
		if err := d.db.QueryRowContext(ctx, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(d.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		var total int64
		for _, table := range allTables {
			var size int64
			query := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
			if err := d.db.QueryRowContext(ctx, query, cfg.DBName, table).Scan(&size); err != nil {
				return estimate
			}
			total += size
		}
		return total

	case schema.PostgreSQLBackend:
		var total int64
		for _, table := range allTables {
			var size int64
			if err := d.db.QueryRowContext(ctx, "SELECT pg_total_relation_size($1)", table).Scan(&size); err != nil {
				return estimate
			}
			total += size
		}
		return total

	default:
		return estimate
	}
}

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Snapshots: %d\n", status.TotalSnapshots)
	if status.TotalSnapshots > 0 {
		_, _ = fmt.Fprintf(w, "Last Sync: %s\n", status.LastSyncTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Sync: %s\n", status.OldestSyncTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintf(w, "Total Runs: %d (%d failed)\n", status.TotalRuns, status.FailedRuns)
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range allTables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
	_, _ = fmt.Fprintf(w, "Size: %d bytes\n", status.SizeBytes)
}
