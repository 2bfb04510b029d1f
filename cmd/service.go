package cmd

import (
	"context"
	"fmt"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/internal/calendar"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/internal/gitlog"
	"github.com/huangsam/flowstate/internal/persist"
	"github.com/huangsam/flowstate/internal/telemetry"
	"github.com/huangsam/flowstate/schema"
)

// newSyncer wires the configured collaborators into a syncer.
// A path without configuration stays unconnected.
func newSyncer(metrics contract.MetricsExporter) *core.Syncer {
	syncer := core.NewSyncer(persist.Manager, cfg.Params).
		WithTimeout(cfg.SyncTimeout).
		WithLookbackDays(cfg.LookbackDays).
		WithMetrics(metrics)

	if cfg.CalendarICS != "" {
		syncer.WithCalendar(calendar.NewSource(cfg.CalendarICS, cfg.Location))
	}
	if len(cfg.Repos) > 0 || cfg.RepoRoot != "" {
		syncer.WithCommits(gitlog.NewSource(contract.NewLocalGitClient(), gitlog.Options{
			Repos:             cfg.Repos,
			RepoRoot:          cfg.RepoRoot,
			Author:            cfg.Author,
			MaxRepos:          cfg.MaxRepos,
			MaxCommitsPerRepo: schema.DefaultMaxCommitsPerRepo,
			Workers:           cfg.Workers,
		}))
	}
	return syncer
}

// newService builds the service used by every command. The returned exporter
// must be closed by the caller.
func newService(ctx context.Context) (*core.Service, contract.MetricsExporter, error) {
	metrics, err := telemetry.New(ctx, cfg.OTelEndpoint, cfg.OTelInsecure)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return core.NewService(newSyncer(metrics), persist.Manager, cfg.Params), metrics, nil
}

// closeMetrics flushes the exporter, warning on failure.
func closeMetrics(ctx context.Context, metrics contract.MetricsExporter) {
	if err := metrics.Close(context.WithoutCancel(ctx)); err != nil {
		contract.LogWarn("Failed to flush metrics", err)
	}
}
