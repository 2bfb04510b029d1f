package algo

import (
	"testing"
	"time"

	"github.com/huangsam/flowstate/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitsAt(ts time.Time, n int) []schema.CommitPoint {
	out := make([]schema.CommitPoint, n)
	for i := range out {
		out[i] = schema.CommitPoint{Timestamp: ts.Add(time.Duration(i) * time.Second)}
	}
	return out
}

func TestBuildHeatmap(t *testing.T) {
	points := []schema.CommitPoint{
		{Timestamp: at(5, 10, 15)}, // Wednesday
		{Timestamp: at(5, 10, 59)},
		{Timestamp: at(2, 0, 0)}, // Sunday
	}
	h := BuildHeatmap(points, time.UTC)
	assert.Equal(t, 2, h[3][10])
	assert.Equal(t, 1, h[0][0])

	total := 0
	for d := range h {
		for hr := range h[d] {
			total += h[d][hr]
		}
	}
	assert.Equal(t, len(points), total)
}

func TestBuildHeatmap_Timezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// Wednesday 02:00 UTC is Tuesday 21:00 in Chicago
	h := BuildHeatmap([]schema.CommitPoint{{Timestamp: at(5, 2, 0)}}, loc)
	assert.Equal(t, 1, h[2][21])
	assert.Equal(t, 0, h[3][2])
}

func TestFindPeak(t *testing.T) {
	t.Run("empty grid", func(t *testing.T) {
		peak, v := FindPeak(schema.Heatmap{})
		assert.Equal(t, schema.PeakWindow{Day: 0, Hour: 0}, peak)
		assert.Equal(t, 0, v)
	})

	t.Run("earliest row wins ties", func(t *testing.T) {
		var h schema.Heatmap
		h[1][5] = 3
		h[0][20] = 3
		peak, v := FindPeak(h)
		assert.Equal(t, schema.PeakWindow{Day: 0, Hour: 20}, peak)
		assert.Equal(t, 3, v)
	})

	t.Run("earliest hour wins ties within a row", func(t *testing.T) {
		var h schema.Heatmap
		h[2][3] = 7
		h[2][1] = 7
		peak, _ := FindPeak(h)
		assert.Equal(t, schema.PeakWindow{Day: 2, Hour: 1}, peak)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("empty grid stays zero", func(t *testing.T) {
		assert.Equal(t, schema.Heatmap{}, Normalize(schema.Heatmap{}))
	})

	t.Run("peak cell becomes 100", func(t *testing.T) {
		var h schema.Heatmap
		h[3][10] = 400
		h[1][9] = 247
		h[5][16] = 200
		h[6][23] = 1

		n := Normalize(h)
		assert.Equal(t, 100, n[3][10])
		assert.Equal(t, 62, n[1][9])
		assert.Equal(t, 50, n[5][16])
		assert.Equal(t, 0, n[6][23])
		for d := range n {
			for hr := range n[d] {
				assert.GreaterOrEqual(t, n[d][hr], 0)
				assert.LessOrEqual(t, n[d][hr], 100)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		var h schema.Heatmap
		h[0][0] = 5
		_ = Normalize(h)
		assert.Equal(t, 5, h[0][0])
	})
}

func TestCommitMetrics_ScenarioC(t *testing.T) {
	var points []schema.CommitPoint
	points = append(points, commitsAt(at(5, 10, 0), 400)...) // Wednesday 10:00
	points = append(points, commitsAt(at(3, 9, 0), 247)...)  // Monday 09:00
	points = append(points, commitsAt(at(7, 16, 0), 200)...) // Friday 16:00
	require.Len(t, points, 847)

	m := CommitMetrics(points, 23, time.UTC)

	assert.Equal(t, 847, m.TotalCommits)
	assert.Equal(t, 23, m.RepositoriesAnalyzed)
	assert.Equal(t, schema.PeakWindow{Day: 3, Hour: 10}, m.Peak)
	assert.Equal(t, 100, m.Heatmap[3][10])
	assert.Equal(t, 62, m.Heatmap[1][9])
	assert.Equal(t, 50, m.Heatmap[5][16])
}

func TestCommitMetrics_NoCommits(t *testing.T) {
	m := CommitMetrics(nil, 4, time.UTC)
	assert.Equal(t, 0, m.TotalCommits)
	assert.Equal(t, 4, m.RepositoriesAnalyzed)
	assert.Equal(t, schema.Heatmap{}, m.Heatmap)
	assert.Equal(t, schema.PeakWindow{}, m.Peak)
}
