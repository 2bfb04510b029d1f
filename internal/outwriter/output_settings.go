package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSettings outputs the settings of one user.
func WriteSettings(s schema.UserSettings, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, s)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, s)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"setting", "value"}, func(cw *csv.Writer) error {
				return cw.WriteAll(settingsRows(s, fmtFloat))
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSettingsTable(w, s, fmtFloat)
		}, "Wrote table")
	}
}

func settingsRows(s schema.UserSettings, fmtFloat func(float64) string) [][]string {
	updated := ""
	if !s.UpdatedAt.IsZero() {
		updated = s.UpdatedAt.Format(time.RFC3339)
	}
	return [][]string{
		{"user", s.UserID},
		{"target_deep_hours", fmtFloat(s.TargetDeepHours)},
		{"timezone", s.Timezone},
		{"email_reports", strconv.FormatBool(s.EmailReports)},
		{"updated_at", updated},
	}
}

func writeSettingsTable(w io.Writer, s schema.UserSettings, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Setting", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(settingsRows(s, fmtFloat)); err != nil {
		return err
	}
	return table.Render()
}
