//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseBackend runs the store lifecycle against one backend.
func exerciseBackend(t *testing.T, backend, connStr string) {
	t.Helper()
	now := time.Now().UTC()
	repo := makeRepo(t, now.Add(-24*time.Hour), now.Add(-23*time.Hour))
	calendar := writeCalendar(t, now)

	env := []string{
		"FLOWSTATE_USER=alice",
		"FLOWSTATE_TIMEZONE=UTC",
		"FLOWSTATE_STORE_BACKEND=" + backend,
		"FLOWSTATE_STORE_DB_CONNECT=" + connStr,
	}

	_, err := runFlowstate(t, env, "store", "clear")
	require.NoError(t, err)

	_, err = runFlowstate(t, env, "store", "migrate")
	require.NoError(t, err)

	_, err = runFlowstate(t, env, "sync", "--calendar-ics", calendar, "--repos", repo)
	require.NoError(t, err)

	out, err := runFlowstate(t, env, "report", "--output", "json")
	require.NoError(t, err)
	var report struct {
		TotalCommits int     `json:"total_commits"`
		MeetingHours float64 `json:"meeting_hours"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, 2, report.TotalCommits)
	assert.Equal(t, 1.0, report.MeetingHours)

	out, err = runFlowstate(t, env, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Snapshots: 1")

	_, err = runFlowstate(t, env, "store", "export", "--output-file", filepath.Join(t.TempDir(), "export"))
	require.NoError(t, err)

	_, err = runFlowstate(t, env, "store", "delete")
	require.NoError(t, err)
	out, err = runFlowstate(t, env, "store", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Snapshots: 0")
}

// TestFlowstateWithMySQL tests the flowstate CLI with a MySQL backend.
func TestFlowstateWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "flowstate",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	exerciseBackend(t, "mysql", fmt.Sprintf("root:secret123@tcp(%s:%s)/flowstate?parseTime=true", host, port.Port()))
}

// TestFlowstateWithPostgres tests the flowstate CLI with a PostgreSQL backend.
func TestFlowstateWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	exerciseBackend(t, "postgresql", fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port()))
}
