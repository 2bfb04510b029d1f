// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints the weekly report using the configured output format.
func (ow *OutWriter) WriteReport(r schema.Report, cfg *contract.Config) error {
	return WriteReport(r, cfg)
}

// WriteHeatmap prints the commit heatmap using the configured output format.
func (ow *OutWriter) WriteHeatmap(r schema.Report, cfg *contract.Config) error {
	return WriteHeatmap(r, cfg)
}

// WriteSettings prints user settings using the configured output format.
func (ow *OutWriter) WriteSettings(s schema.UserSettings, cfg *contract.Config) error {
	return WriteSettings(s, cfg)
}

// WriteDemo prints the showcase data using the configured output format.
func (ow *OutWriter) WriteDemo(demo schema.DemoData, cfg *contract.Config) error {
	return WriteDemo(demo, cfg)
}

// WriteSync prints the snapshot produced by a sync using the configured output format.
func (ow *OutWriter) WriteSync(snap schema.WeeklySnapshot, cfg *contract.Config, duration time.Duration) error {
	return WriteSync(snap, cfg, duration)
}

// WriteSync outputs the refreshed snapshot. Text output is a short summary.
func WriteSync(snap schema.WeeklySnapshot, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, snap)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, snap)
		}, "Wrote YAML")
	default:
		fmtFloat, _ := createFormatters(cfg.Precision)
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSyncSummary(w, snap, fmtFloat, duration)
		}, "Wrote summary")
	}
}

func writeSyncSummary(w io.Writer, snap schema.WeeklySnapshot, fmtFloat func(float64) string, duration time.Duration) error {
	if snap.HasCalendar {
		if _, err := fmt.Fprintf(w, "📅 Calendar: %sh of meetings, fragmentation %d/100, debt %sh\n",
			fmtFloat(snap.WeeklyMeetingHours), snap.FragmentationScore, fmtFloat(snap.MeetingDebtHours)); err != nil {
			return err
		}
	}
	if snap.HasCommits {
		if _, err := fmt.Fprintf(w, "🧑‍💻 Commits: %d across %d repositories, peak %s %s\n",
			snap.TotalCommits, snap.RepositoriesAnalyzed, schema.DayName(snap.PeakDay), schema.HourLabel(snap.PeakHour)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Sync completed in %v for %s\n", duration.Round(time.Millisecond), snap.UserID)
	return err
}
