package contract

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()

	expectedOutput := []byte("2024-06-05T10:00:00Z")
	expectedError := errors.New("mocked git error")
	mockClient.On("Run", ctx, "/path/to/repo", "log", "-1").Return(expectedOutput, expectedError).Once()

	out, err := mockClient.Run(ctx, "/path/to/repo", "log", "-1")
	assert.Equal(t, expectedOutput, out)
	assert.Equal(t, expectedError, err)
	mockClient.AssertExpectations(t)
}

func TestMockGitClient_GetCommitTimes(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	q := CommitQuery{Limit: 100}
	want := []time.Time{time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)}
	mockClient.On("GetCommitTimes", ctx, "/repo", q).Return(want, nil)

	got, err := mockClient.GetCommitTimes(ctx, "/repo", q)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewLocalGitClient(t *testing.T) {
	client := NewLocalGitClient()
	assert.NotNil(t, client)
	assert.IsType(t, &LocalGitClient{}, client)
}

func TestLocalGitClient_RunOutsideRepo(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	_, err := client.Run(context.Background(), t.TempDir(), "rev-parse", "--show-toplevel")
	assert.Error(t, err)
}

func TestParseCommitTimes(t *testing.T) {
	out := []byte("2024-06-05T10:15:00-05:00\n\n'2024-06-04T09:00:00Z'\n")
	times, err := ParseCommitTimes(out)
	require.NoError(t, err)
	require.Len(t, times, 2)
	assert.True(t, times[0].Equal(time.Date(2024, 6, 5, 15, 15, 0, 0, time.UTC)))
	assert.True(t, times[1].Equal(time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)))

	empty, err := ParseCommitTimes(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseCommitTimes([]byte("yesterday"))
	assert.Error(t, err)
}
