// Package main provides a performance benchmarking tool for the flowstate CLI.
// It measures how long a commits sync takes across repositories of different sizes
// and worker counts, running each test multiple times, treating the first successful
// run as cold and averaging the rest as warm, and writes the results as CSV.
//
// Prerequisites:
// - flowstate binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark suite for one repository and worker count.
type BenchmarkResult struct {
	Repository string
	Workers    int
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase     string
	Timeout      time.Duration
	Runs         int
	LookbackDays int
	WorkerCounts []int
	TestRepos    []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:     os.Args[1],
		Timeout:      5 * time.Minute,
		Runs:         4,
		LookbackDays: 365,
		WorkerCounts: []int{1, 4, 14},
		TestRepos:    []string{"csv-parser", "fd", "git", "kubernetes"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that flowstate binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("flowstate"); err != nil {
		return fmt.Errorf("flowstate binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes the sync benchmark for every repository and worker count
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d runs, lookback %d days\n",
		len(config.TestRepos), config.Timeout, config.Runs, config.LookbackDays)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, workers := range config.WorkerCounts {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, workers))
		}
	}

	return results
}

// runBenchmarkSuite times repeated syncs of one repository
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, workers int) BenchmarkResult {
	fmt.Printf("  %d workers (%d runs)\n", workers, config.Runs)

	args := []string{
		"sync", "--scope", "commits",
		"--store-backend", "none",
		"--repos", repoPath,
		"--workers", strconv.Itoa(workers),
		"--lookback-days", strconv.Itoa(config.LookbackDays),
	}

	var times []float64
	for range config.Runs {
		if elapsed, ok := runOnce(config.Timeout, args); ok {
			times = append(times, elapsed)
		}
	}

	result := BenchmarkResult{Repository: repo, Workers: workers, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
	if len(times) > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runOnce runs flowstate once and reports the elapsed seconds of a successful run
func runOnce(timeout time.Duration, args []string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, "flowstate", args...).CombinedOutput()
	if err != nil {
		fmt.Printf("    run failed: %v\n%s", err, output)
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/flowstate_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "workers", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Repository, strconv.Itoa(result.Workers), result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s %2d workers: Cold: %s, Warm: %s\n",
			result.Repository, result.Workers, result.ColdTime, result.WarmTime)
	}
}
