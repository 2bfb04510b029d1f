package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// GetLastCommitTime implements the GitClient interface.
func (c *LocalGitClient) GetLastCommitTime(ctx context.Context, repoPath string) (time.Time, error) {
	args := []string{
		"log", "-n", "1",
		"--pretty=format:%ad",
		"--date=iso-strict",
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return time.Time{}, err
	}
	dateStr := strings.TrimSpace(string(out))
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("repository %q has no commits", repoPath)
	}
	return time.Parse(time.RFC3339, dateStr)
}

// GetCommitTimes implements the GitClient interface.
func (c *LocalGitClient) GetCommitTimes(ctx context.Context, repoPath string, query CommitQuery) ([]time.Time, error) {
	args := []string{
		"log",
		"--pretty=format:%ad",
		"--date=iso-strict",
	}
	if query.Limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", query.Limit))
	}
	if !query.Since.IsZero() {
		args = append(args, "--since="+query.Since.Format(DateTimeFormat))
	}
	if !query.Until.IsZero() {
		args = append(args, "--until="+query.Until.Format(DateTimeFormat))
	}
	if query.Author != "" {
		args = append(args, "--author="+query.Author)
	}
	out, err := c.Run(ctx, repoPath, args...)
	if err != nil {
		return nil, err
	}
	return ParseCommitTimes(out)
}

// ParseCommitTimes parses one iso-strict timestamp per line. Blank lines are ignored.
func ParseCommitTimes(out []byte) ([]time.Time, error) {
	var times []time.Time
	for line := range strings.SplitSeq(string(out), "\n") {
		line = strings.Trim(strings.TrimSpace(line), "'")
		if line == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, line)
		if err != nil {
			return nil, fmt.Errorf("invalid commit date %q: %w", line, err)
		}
		times = append(times, t)
	}
	return times, nil
}
