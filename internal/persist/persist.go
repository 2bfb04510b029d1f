// Package persist is for storing snapshots, settings, and sync runs.
package persist

import (
	"context"
	"sync"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// StoreManager manages the stores that share one database connection.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	database     *database
	snapshots    contract.SnapshotStore
	settings     contract.SettingsStore
	runs         contract.SyncRunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager opens the backend and wires every store onto it.
// defaults seeds settings for users who have not saved any; nil uses the built-in defaults.
func NewStoreManager(ctx context.Context, backend schema.DatabaseBackend, connStr string, defaults func(string) schema.UserSettings) (*StoreManager, error) {
	db, err := openDatabase(ctx, backend, connStr)
	if err != nil {
		return nil, err
	}
	return &StoreManager{
		database:  db,
		snapshots: &SnapshotStoreImpl{db: db},
		settings:  &SettingsStoreImpl{db: db, defaults: defaults},
		runs:      &SyncRunStoreImpl{db: db},
	}, nil
}

// GetSnapshotStore returns the snapshot store.
func (mgr *StoreManager) GetSnapshotStore() contract.SnapshotStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.snapshots
}

// GetSettingsStore returns the settings store.
func (mgr *StoreManager) GetSettingsStore() contract.SettingsStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.settings
}

// GetSyncRunStore returns the sync run store.
func (mgr *StoreManager) GetSyncRunStore() contract.SyncRunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// Close closes the shared connection.
func (mgr *StoreManager) Close() error {
	mgr.Lock()
	defer mgr.Unlock()
	return mgr.database.close()
}
