package csvio

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelpulse/api/models"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteFunnelReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.csv")
	half := 0.5
	rows := []models.FunnelResult{
		{StageLabel: "Homepage Visit", SessionCount: 2, ConversionRateFromStart: 2.0 / 3.0, DropRateToNext: &half},
		{StageLabel: "Purchase", SessionCount: 1, ConversionRateFromStart: 1.0 / 3.0},
	}
	require.NoError(t, WriteFunnelReport(path, rows))

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"stage", "sessions", "conversion_rate_from_start", "drop_rate_to_next"}, records[0])
	assert.Equal(t, "Homepage Visit", records[1][0])
	assert.Equal(t, "2", records[1][1])
	// Raw fractions, never formatted percentages.
	assert.Equal(t, "0.5", records[1][3])
	assert.NotContains(t, records[1][2], "%")
	assert.Equal(t, "", records[2][3], "last stage has no drop rate")
}

func TestWriteBottleneckReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bottlenecks.csv")
	rows := []models.BottleneckRow{
		{Transition: "Cart View → Checkout", SessionsLost: 40, DropRate: 0.4, Severity: models.SeverityHigh},
		{Transition: "Checkout → Payment", SessionsLost: -2, DropRate: -0.05, Severity: models.SeverityLow},
	}
	require.NoError(t, WriteBottleneckReport(path, rows))

	records := readAll(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "0.4", records[1][2])
	assert.Equal(t, "-2", records[2][1])
	assert.Equal(t, models.SeverityHigh, records[1][3])
}

func TestWriteSegmentReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.csv")
	rows := []models.SegmentRow{
		{SegmentKey: "desktop", TotalSessions: 3, ConvertedSessions: 1, ConversionRate: 1.0 / 3.0},
	}
	require.NoError(t, WriteSegmentReport(path, rows))

	records := readAll(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "desktop", records[1][0])
	assert.Equal(t, "3", records[1][1])
	assert.NotContains(t, records[1][3], "%")
}
