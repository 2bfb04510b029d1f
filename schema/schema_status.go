package schema

import "time"

// StoreStatus represents the status of the persistence stores.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalSnapshots int              `json:"total_snapshots"`
	LastSyncTime   time.Time        `json:"last_sync_time"`
	OldestSyncTime time.Time        `json:"oldest_sync_time"`
	TotalRuns      int              `json:"total_runs"`
	FailedRuns     int              `json:"failed_runs"`
	TableSizes     map[string]int64 `json:"table_sizes"`
	SizeBytes      int64            `json:"size_bytes"`
}

// SyncRunRecord represents a row from the sync runs table.
type SyncRunRecord struct {
	RunID        string
	UserID       string
	Scope        SyncScope
	Status       SyncStatus
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	EventCount   int
	CommitCount  int
	ReposScanned int
	ErrorMessage *string
}

// SyncOutcome summarizes a finished sync for run tracking and metrics.
type SyncOutcome struct {
	RunID        string
	UserID       string
	Scope        SyncScope
	Status       SyncStatus
	Duration     time.Duration
	EventCount   int
	CommitCount  int
	ReposScanned int
	Snapshot     *WeeklySnapshot
	Err          error
}
