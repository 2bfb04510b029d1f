package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReport outputs the weekly report, dispatching based on the output format configured.
func WriteReport(r schema.Report, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, r)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, r)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
				return writeReportCSVRows(cw, r, fmtFloat, intFmt)
			})
		}, "Wrote CSV")
	default:
		span := getHeatmapSpan(getTerminalWidth(cfg))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, r, fmtFloat, span, cfg.UseColors)
		}, "Wrote table")
	}
}

// writeReportText prints the summary, meetings per day, suggestions, and heatmap.
func writeReportText(w io.Writer, r schema.Report, fmtFloat func(float64) string, span int, useColors bool) error {
	if err := writeReportSummary(w, r, fmtFloat, useColors); err != nil {
		return err
	}
	if err := writeMeetingsPerDay(w, r.MeetingsPerDay); err != nil {
		return err
	}
	if err := writeSuggestions(w, r.Suggestions); err != nil {
		return err
	}
	return writeHeatmapTable(w, r, span, useColors)
}

// writeReportSummary renders the headline metrics as a two column table.
func writeReportSummary(w io.Writer, r schema.Report, fmtFloat func(float64) string, useColors bool) error {
	label := contract.GetPlainLabel(float64(r.FragmentationScore))
	if useColors {
		label = contract.GetColorLabel(float64(r.FragmentationScore))
	}

	peak := "no commit data"
	if r.HasCommits {
		peak = r.PeakLabel
	}
	synced := "never"
	if !r.LastSyncedAt.IsZero() {
		synced = r.LastSyncedAt.Format(contract.DateTimeFormat)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	data := [][]string{
		{"Deep work", fmt.Sprintf("%sh of %sh goal", fmtFloat(r.DeepWorkHours), fmtFloat(r.TargetWeeklyHours))},
		{"Meetings", fmtFloat(r.MeetingHours) + "h"},
		{"Fragmentation", fmt.Sprintf("%d/100 %s", r.FragmentationScore, label)},
		{"Meeting debt", fmtFloat(r.MeetingDebtHours) + "h"},
		{"Peak window", peak},
		{"Commits", fmt.Sprintf("%d across %d repositories", r.TotalCommits, r.RepositoriesAnalyzed)},
		{"Last synced", synced},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeMeetingsPerDay renders a single row table from Sunday to Saturday.
func writeMeetingsPerDay(w io.Writer, perDay map[string]int) error {
	table := tablewriter.NewWriter(w)
	headers := make([]string, 0, schema.DaysPerWeek)
	row := make([]string, 0, schema.DaysPerWeek)
	for d, key := range schema.WeekdayKeys {
		headers = append(headers, schema.DayName(d)[:3])
		row = append(row, strconv.Itoa(perDay[key]))
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk([][]string{row}); err != nil {
		return err
	}
	return table.Render()
}

// writeSuggestions prints one numbered line per suggestion.
func writeSuggestions(w io.Writer, suggestions []string) error {
	if len(suggestions) == 0 {
		_, err := fmt.Fprintln(w, "No suggestions this week. Keep it up!")
		return err
	}
	if _, err := fmt.Fprintln(w, "Suggestions:"); err != nil {
		return err
	}
	for i, s := range suggestions {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, s); err != nil {
			return err
		}
	}
	return nil
}

// writeReportCSVRows writes the report as metric/value pairs.
func writeReportCSVRows(w *csv.Writer, r schema.Report, fmtFloat func(float64) string, intFmt string) error {
	rows := [][]string{
		{"deep_work_hours", fmtFloat(r.DeepWorkHours)},
		{"target_weekly_hours", fmtFloat(r.TargetWeeklyHours)},
		{"meeting_hours", fmtFloat(r.MeetingHours)},
		{"fragmentation_score", fmt.Sprintf(intFmt, r.FragmentationScore)},
		{"fragmentation_label", contract.GetPlainLabel(float64(r.FragmentationScore))},
		{"meeting_debt_hours", fmtFloat(r.MeetingDebtHours)},
		{"has_commits", strconv.FormatBool(r.HasCommits)},
		{"peak_day", fmt.Sprintf(intFmt, r.PeakDay)},
		{"peak_hour", fmt.Sprintf(intFmt, r.PeakHour)},
		{"peak_label", r.PeakLabel},
		{"total_commits", fmt.Sprintf(intFmt, r.TotalCommits)},
		{"repositories_analyzed", fmt.Sprintf(intFmt, r.RepositoriesAnalyzed)},
	}
	for _, key := range schema.WeekdayKeys {
		rows = append(rows, []string{"meetings_" + key, fmt.Sprintf(intFmt, r.MeetingsPerDay[key])})
	}
	for i, s := range r.Suggestions {
		rows = append(rows, []string{fmt.Sprintf("suggestion_%d", i+1), s})
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
