package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelpulse/api/models"
)

func resultsFromCounts(counts ...uint64) []models.FunnelResult {
	rows := make([]models.FunnelResult, len(counts))
	for i, count := range counts {
		rows[i] = models.FunnelResult{
			StageLabel:   string(rune('A' + i)),
			SessionCount: count,
		}
	}
	return rows
}

func TestComputeBottlenecks_Length(t *testing.T) {
	rows := ComputeBottlenecks(resultsFromCounts(100, 60, 50, 10))
	require.Len(t, rows, 3)

	assert.Nil(t, ComputeBottlenecks(resultsFromCounts(100)))
	assert.Nil(t, ComputeBottlenecks(nil))
}

func TestComputeBottlenecks_SortedByDropRateDescending(t *testing.T) {
	// A→B drops 40%, B→C drops 16.7%, C→D drops 80%.
	rows := ComputeBottlenecks(resultsFromCounts(100, 60, 50, 10))

	require.Len(t, rows, 3)
	assert.Equal(t, "C → D", rows[0].Transition)
	assert.Equal(t, "A → B", rows[1].Transition)
	assert.Equal(t, "B → C", rows[2].Transition)
	for i := 0; i < len(rows)-1; i++ {
		assert.GreaterOrEqual(t, rows[i].DropRate, rows[i+1].DropRate)
	}
}

func TestComputeBottlenecks_TiesKeepFunnelOrder(t *testing.T) {
	// Both transitions drop exactly 50%.
	rows := ComputeBottlenecks(resultsFromCounts(100, 50, 25))

	require.Len(t, rows, 2)
	assert.Equal(t, "A → B", rows[0].Transition)
	assert.Equal(t, "B → C", rows[1].Transition)
}

func TestComputeBottlenecks_SeverityBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		current  uint64
		next     uint64
		severity string
	}{
		{"exactly 0.30 is Medium", 100, 70, models.SeverityMedium},
		{"just above 0.30 is High", 1000, 699, models.SeverityHigh},
		{"exactly 0.15 is Low", 100, 85, models.SeverityLow},
		{"just above 0.15 is Medium", 1000, 849, models.SeverityMedium},
		{"zero drop is Low", 100, 100, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ComputeBottlenecks(resultsFromCounts(tt.current, tt.next))
			require.Len(t, rows, 1)
			assert.Equal(t, tt.severity, rows[0].Severity)
		})
	}
}

func TestComputeBottlenecks_NegativeSessionsLost(t *testing.T) {
	rows := ComputeBottlenecks(resultsFromCounts(1, 2))

	require.Len(t, rows, 1)
	assert.Equal(t, int64(-1), rows[0].SessionsLost)
	assert.InDelta(t, -1.0, rows[0].DropRate, 1e-9)
	assert.Equal(t, models.SeverityLow, rows[0].Severity)
}

func TestComputeBottlenecks_EmptyStageClampsToZero(t *testing.T) {
	rows := ComputeBottlenecks(resultsFromCounts(0, 0))

	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].DropRate)
	assert.Equal(t, models.SeverityLow, rows[0].Severity)
}
