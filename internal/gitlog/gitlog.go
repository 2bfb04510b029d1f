// Package gitlog collects commit timestamps from local git repositories.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// sourceName labels commit source failures.
const sourceName = "git"

// Options configures which repositories are inspected and how.
type Options struct {
	Repos             []string // explicit repository paths
	RepoRoot          string   // directory whose immediate children are scanned for repositories
	Author            string   // optional author filter passed to git log
	MaxRepos          int      // most recently committed repositories inspected per sync
	MaxCommitsPerRepo int      // newest commits read per repository
	Workers           int      // concurrent git processes
}

// Source reads commit timestamps through a GitClient.
type Source struct {
	client contract.GitClient
	opts   Options
	warn   func(msg string, err error)
}

var _ contract.CommitSource = &Source{} // Compile-time check

// NewSource creates a commit source. Zero limits fall back to the defaults.
func NewSource(client contract.GitClient, opts Options) *Source {
	if opts.MaxRepos <= 0 {
		opts.MaxRepos = schema.DefaultMaxRepos
	}
	if opts.MaxCommitsPerRepo <= 0 {
		opts.MaxCommitsPerRepo = schema.DefaultMaxCommitsPerRepo
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Source{client: client, opts: opts, warn: contract.LogWarn}
}

// WithWarn replaces the reporter used for skipped repositories.
func (s *Source) WithWarn(warn func(msg string, err error)) *Source {
	s.warn = warn
	return s
}

// repoResult is the outcome of reading one repository.
type repoResult struct {
	repo  string
	times []time.Time
	err   error
}

// FetchCommits returns the commits authored in [since, until] across the inspected repositories.
// A repository that cannot be read is skipped and excluded from the count. Failing to
// enumerate repositories fails the whole fetch.
func (s *Source) FetchCommits(ctx context.Context, since, until time.Time) (schema.CommitBatch, error) {
	repos, err := s.Repositories(ctx)
	if err != nil {
		return schema.CommitBatch{}, contract.NewUpstreamError(sourceName, err)
	}

	query := contract.CommitQuery{
		Since:  since,
		Until:  until,
		Author: s.opts.Author,
		Limit:  s.opts.MaxCommitsPerRepo,
	}
	results := s.forEachRepo(repos, func(repo string) repoResult {
		times, err := s.client.GetCommitTimes(ctx, repo, query)
		return repoResult{repo: repo, times: times, err: err}
	})
	if err := ctx.Err(); err != nil {
		return schema.CommitBatch{}, contract.NewUpstreamError(sourceName, err)
	}

	var batch schema.CommitBatch
	for _, r := range results {
		if r.err != nil {
			s.warn(fmt.Sprintf("Skipping repository %s", r.repo), r.err)
			continue
		}
		batch.RepositoriesAnalyzed++
		for _, t := range r.times {
			batch.Points = append(batch.Points, schema.CommitPoint{Timestamp: t})
		}
	}
	return batch, nil
}

// Repositories lists the repositories a fetch inspects, most recently committed first,
// capped at MaxRepos.
func (s *Source) Repositories(ctx context.Context) ([]string, error) {
	candidates, err := s.candidates()
	if err != nil {
		return nil, err
	}

	lastCommit := s.forEachRepo(candidates, func(repo string) repoResult {
		t, err := s.client.GetLastCommitTime(ctx, repo)
		if err != nil {
			return repoResult{repo: repo}
		}
		return repoResult{repo: repo, times: []time.Time{t}}
	})
	latest := func(r repoResult) time.Time {
		if len(r.times) == 0 {
			return time.Time{}
		}
		return r.times[0]
	}
	sort.SliceStable(lastCommit, func(i, j int) bool {
		return latest(lastCommit[i]).After(latest(lastCommit[j]))
	})

	repos := make([]string, 0, min(len(lastCommit), s.opts.MaxRepos))
	for _, r := range lastCommit[:min(len(lastCommit), s.opts.MaxRepos)] {
		repos = append(repos, r.repo)
	}
	return repos, nil
}

// candidates merges explicit repositories with those found under RepoRoot.
func (s *Source) candidates() ([]string, error) {
	if len(s.opts.Repos) == 0 && s.opts.RepoRoot == "" {
		return nil, errors.New("no repositories configured: set repos or repo-root")
	}

	seen := make(map[string]struct{})
	var repos []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		repos = append(repos, path)
	}

	for _, r := range s.opts.Repos {
		add(r)
	}
	if s.opts.RepoRoot != "" {
		found, err := ScanRepoRoot(s.opts.RepoRoot)
		if err != nil {
			return nil, err
		}
		for _, r := range found {
			add(r)
		}
	}
	return repos, nil
}

// forEachRepo runs fn over repos on a bounded worker pool and returns results in input order.
func (s *Source) forEachRepo(repos []string, fn func(repo string) repoResult) []repoResult {
	results := make([]repoResult, len(repos))
	idxCh := make(chan int, len(repos))
	var wg sync.WaitGroup

	for range min(s.opts.Workers, len(repos)) {
		wg.Go(func() {
			for i := range idxCh {
				results[i] = fn(repos[i]) // each worker owns a unique index
			}
		})
	}
	for i := range repos {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()
	return results
}

// ScanRepoRoot returns root itself when it is a repository, followed by every
// immediate child directory that is one, in name order.
func ScanRepoRoot(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading repo root %s: %w", root, err)
	}

	var repos []string
	if isRepo(root) {
		repos = append(repos, root)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		if isRepo(path) {
			repos = append(repos, path)
		}
	}
	return repos, nil
}

// isRepo reports whether dir holds a .git directory or worktree file.
func isRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
