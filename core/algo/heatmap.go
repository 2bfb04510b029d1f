package algo

import (
	"math"
	"time"

	"github.com/huangsam/flowstate/schema"
)

// BuildHeatmap counts commits per (weekday, hour) of their timestamp in loc.
func BuildHeatmap(points []schema.CommitPoint, loc *time.Location) schema.Heatmap {
	if loc == nil {
		loc = time.UTC
	}
	var h schema.Heatmap
	for _, p := range points {
		t := p.Timestamp.In(loc)
		h[t.Weekday()][t.Hour()]++
	}
	return h
}

// FindPeak scans the grid in row-major order and returns the first cell holding the maximum.
// An all-zero grid yields the origin cell with value 0.
func FindPeak(h schema.Heatmap) (schema.PeakWindow, int) {
	var peak schema.PeakWindow
	peakVal := 0
	for d := range schema.DaysPerWeek {
		for hr := range schema.HoursPerDay {
			if h[d][hr] > peakVal {
				peakVal = h[d][hr]
				peak = schema.PeakWindow{Day: d, Hour: hr}
			}
		}
	}
	return peak, peakVal
}

// Normalize rescales the grid so the peak cell is 100. An empty grid stays all zero.
func Normalize(h schema.Heatmap) schema.Heatmap {
	var out schema.Heatmap
	_, peakVal := FindPeak(h)
	if peakVal == 0 {
		return out
	}
	for d := range schema.DaysPerWeek {
		for hr := range schema.HoursPerDay {
			out[d][hr] = int(math.Round(float64(h[d][hr]) / float64(peakVal) * 100))
		}
	}
	return out
}

// CommitMetrics runs the whole commit path: aggregate, locate the peak, normalize.
func CommitMetrics(points []schema.CommitPoint, reposAnalyzed int, loc *time.Location) schema.CommitMetrics {
	raw := BuildHeatmap(points, loc)
	peak, _ := FindPeak(raw)
	return schema.CommitMetrics{
		Heatmap:              Normalize(raw),
		Peak:                 peak,
		TotalCommits:         len(points),
		RepositoriesAnalyzed: reposAnalyzed,
	}
}
