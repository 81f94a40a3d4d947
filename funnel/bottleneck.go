// api/funnel/bottleneck.go
package funnel

import (
	"fmt"
	"sort"

	"funnelpulse/api/models"
)

// Severity thresholds. Boundary values are exclusive: a drop rate of
// exactly 0.30 is Medium, exactly 0.15 is Low.
const (
	highDropThreshold   = 0.30
	mediumDropThreshold = 0.15
)

// ComputeBottlenecks derives one row per adjacent stage transition from a
// funnel report, sorted by drop rate descending with ties keeping funnel
// order. Drop rates are recomputed from the raw session counts rather than
// read back from any formatted representation.
func ComputeBottlenecks(results []models.FunnelResult) []models.BottleneckRow {
	if len(results) < 2 {
		return nil
	}

	rows := make([]models.BottleneckRow, 0, len(results)-1)
	for i := 0; i < len(results)-1; i++ {
		current, next := results[i], results[i+1]
		rate := dropRate(current.SessionCount, next.SessionCount)
		rows = append(rows, models.BottleneckRow{
			Transition:   fmt.Sprintf("%s → %s", current.StageLabel, next.StageLabel),
			SessionsLost: int64(current.SessionCount) - int64(next.SessionCount),
			DropRate:     rate,
			Severity:     classifySeverity(rate),
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].DropRate > rows[b].DropRate
	})
	return rows
}

func classifySeverity(dropRate float64) string {
	switch {
	case dropRate > highDropThreshold:
		return models.SeverityHigh
	case dropRate > mediumDropThreshold:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
