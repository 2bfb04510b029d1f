package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetLastCommitTime implements the GitClient interface.
func (m *MockGitClient) GetLastCommitTime(ctx context.Context, repoPath string) (time.Time, error) {
	ret := m.Called(ctx, repoPath)
	t, _ := ret.Get(0).(time.Time)
	return t, ret.Error(1)
}

// GetCommitTimes implements the GitClient interface.
func (m *MockGitClient) GetCommitTimes(ctx context.Context, repoPath string, query CommitQuery) ([]time.Time, error) {
	ret := m.Called(ctx, repoPath, query)
	times, _ := ret.Get(0).([]time.Time)
	return times, ret.Error(1)
}
