package outwriter

import (
	"encoding/csv"
	"io"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteDemo outputs the showcase report followed by its weekly trends.
func WriteDemo(demo schema.DemoData, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, demo)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, demo)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"metric", "value"}, func(cw *csv.Writer) error {
				if err := writeReportCSVRows(cw, demo.Report, fmtFloat, intFmt); err != nil {
					return err
				}
				return writeTrendCSVRows(cw, demo, fmtFloat)
			})
		}, "Wrote CSV")
	default:
		span := getHeatmapSpan(getTerminalWidth(cfg))
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeReportText(w, demo.Report, fmtFloat, span, cfg.UseColors); err != nil {
				return err
			}
			return writeTrendTable(w, demo, fmtFloat)
		}, "Wrote table")
	}
}

// writeTrendTable lines up both trend series by week.
func writeTrendTable(w io.Writer, demo schema.DemoData, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Week", "Fragmentation", "Deep Work"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range demo.FragmentationTrend {
		deep := ""
		if i < len(demo.DeepWorkTrend) {
			deep = fmtFloat(demo.DeepWorkTrend[i].Value) + "h"
		}
		data = append(data, []string{p.Week, fmtFloat(p.Value), deep})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeTrendCSVRows appends the trend series as metric/value pairs.
func writeTrendCSVRows(w *csv.Writer, demo schema.DemoData, fmtFloat func(float64) string) error {
	series := []struct {
		name   string
		points []schema.TrendPoint
	}{
		{"fragmentation_trend", demo.FragmentationTrend},
		{"deep_work_trend", demo.DeepWorkTrend},
	}
	for _, s := range series {
		for _, p := range s.points {
			if err := w.Write([]string{s.name + "[" + p.Week + "]", fmtFloat(p.Value)}); err != nil {
				return err
			}
		}
	}
	return nil
}
