package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// heatmapShades map a normalized intensity to a glyph, coolest first.
var heatmapShades = []struct {
	below int
	glyph string
	color *color.Color
}{
	{1, "·", nil},
	{25, "░", contract.LowColor},
	{50, "▒", contract.ModerateColor},
	{75, "▓", contract.HighColor},
	{101, "█", contract.CriticalColor},
}

// heatmapView is the JSON and YAML shape of a heatmap.
type heatmapView struct {
	PeakDay      int            `json:"peak_day" yaml:"peak_day"`
	PeakHour     int            `json:"peak_hour" yaml:"peak_hour"`
	PeakLabel    string         `json:"peak_label" yaml:"peak_label"`
	TotalCommits int            `json:"total_commits" yaml:"total_commits"`
	Heatmap      schema.Heatmap `json:"commit_heatmap" yaml:"commit_heatmap"`
}

func newHeatmapView(r schema.Report) heatmapView {
	return heatmapView{
		PeakDay:      r.PeakDay,
		PeakHour:     r.PeakHour,
		PeakLabel:    r.PeakLabel,
		TotalCommits: r.TotalCommits,
		Heatmap:      r.CommitHeatmap,
	}
}

// WriteHeatmap outputs only the commit heatmap of a report.
func WriteHeatmap(r schema.Report, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newHeatmapView(r))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newHeatmapView(r))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHeatmapCSV(w, r.CommitHeatmap)
		}, "Wrote CSV")
	default:
		span := getHeatmapSpan(getTerminalWidth(cfg))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHeatmapTable(w, r, span, cfg.UseColors)
		}, "Wrote table")
	}
}

// writeHeatmapTable renders one row per weekday. Each column covers span hours
// and shows the busiest hour inside it.
func writeHeatmapTable(w io.Writer, r schema.Report, span int, useColors bool) error {
	if !r.HasCommits {
		_, err := fmt.Fprintln(w, "No commit activity synced yet.")
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := []string{"Day"}
	for h := 0; h < schema.HoursPerDay; h += span {
		headers = append(headers, strconv.Itoa(h))
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignCenter
	})

	var data [][]string
	for d, hours := range r.CommitHeatmap {
		row := []string{schema.DayName(d)[:3]}
		for h := 0; h < schema.HoursPerDay; h += span {
			row = append(row, heatmapCell(maxOver(hours[h:min(h+span, schema.HoursPerDay)]), useColors))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if span > 1 {
		if _, err := fmt.Fprintf(w, "Each column covers %d hours.\n", span); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Peak coding window: %s (%d commits across %d repositories)\n",
		r.PeakLabel, r.TotalCommits, r.RepositoriesAnalyzed)
	return err
}

// heatmapCell returns the glyph of a normalized intensity.
func heatmapCell(v int, useColors bool) string {
	for _, shade := range heatmapShades {
		if v < shade.below {
			if useColors && shade.color != nil {
				return shade.color.Sprint(shade.glyph)
			}
			return shade.glyph
		}
	}
	return heatmapShades[len(heatmapShades)-1].glyph
}

func maxOver(values []int) int {
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	return peak
}

// writeHeatmapCSV writes one row per weekday with a column per hour.
func writeHeatmapCSV(w io.Writer, h schema.Heatmap) error {
	header := []string{"day"}
	for hour := range schema.HoursPerDay {
		header = append(header, fmt.Sprintf("h%02d", hour))
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for d, hours := range h {
			row := []string{schema.WeekdayKeys[d]}
			for _, v := range hours {
				row = append(row, strconv.Itoa(v))
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
