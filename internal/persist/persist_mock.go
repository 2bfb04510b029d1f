package persist

import (
	"context"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetSnapshotStore implements the StoreManager interface.
func (m *MockStoreManager) GetSnapshotStore() contract.SnapshotStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SnapshotStore)
	return store
}

// GetSettingsStore implements the StoreManager interface.
func (m *MockStoreManager) GetSettingsStore() contract.SettingsStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SettingsStore)
	return store
}

// GetSyncRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetSyncRunStore() contract.SyncRunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.SyncRunStore)
	return store
}

// GetStatus implements the StoreManager interface.
func (m *MockStoreManager) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ contract.SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Get implements the SnapshotStore interface.
func (m *MockSnapshotStore) Get(ctx context.Context, userID string) (*schema.WeeklySnapshot, error) {
	args := m.Called(ctx, userID)
	snap, _ := args.Get(0).(*schema.WeeklySnapshot)
	return snap, args.Error(1)
}

// Upsert implements the SnapshotStore interface.
func (m *MockSnapshotStore) Upsert(ctx context.Context, snap schema.WeeklySnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// Delete implements the SnapshotStore interface.
func (m *MockSnapshotStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// GetAll implements the SnapshotStore interface.
func (m *MockSnapshotStore) GetAll(ctx context.Context) ([]schema.WeeklySnapshot, error) {
	args := m.Called(ctx)
	snaps, _ := args.Get(0).([]schema.WeeklySnapshot)
	return snaps, args.Error(1)
}

// MockSettingsStore is a mock implementation of SettingsStore for testing.
type MockSettingsStore struct {
	mock.Mock
}

var _ contract.SettingsStore = &MockSettingsStore{} // Compile-time check

// Get implements the SettingsStore interface.
func (m *MockSettingsStore) Get(ctx context.Context, userID string) (schema.UserSettings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(schema.UserSettings), args.Error(1)
}

// Upsert implements the SettingsStore interface.
func (m *MockSettingsStore) Upsert(ctx context.Context, s schema.UserSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockSyncRunStore is a mock implementation of SyncRunStore for testing.
type MockSyncRunStore struct {
	mock.Mock
}

var _ contract.SyncRunStore = &MockSyncRunStore{} // Compile-time check

// BeginRun implements the SyncRunStore interface.
func (m *MockSyncRunStore) BeginRun(ctx context.Context, run schema.SyncRunRecord) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// FinishRun implements the SyncRunStore interface.
func (m *MockSyncRunStore) FinishRun(ctx context.Context, run schema.SyncRunRecord) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetAllRuns implements the SyncRunStore interface.
func (m *MockSyncRunStore) GetAllRuns(ctx context.Context) ([]schema.SyncRunRecord, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.SyncRunRecord)
	return runs, args.Error(1)
}
