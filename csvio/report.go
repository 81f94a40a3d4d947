// api/csvio/report.go
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"funnelpulse/api/models"
)

// Report files carry raw numeric fractions, never formatted percentage
// strings. Earlier versions of this pipeline round-tripped rates through
// display formatting and re-parsed them for sorting, which drifted; the
// presentation layer now does all percent formatting itself.

// WriteFunnelReport writes the funnel stage rows. The last stage has no
// drop rate and gets an empty field.
func WriteFunnelReport(path string, rows []models.FunnelResult) error {
	records := [][]string{{"stage", "sessions", "conversion_rate_from_start", "drop_rate_to_next"}}
	for _, row := range rows {
		drop := ""
		if row.DropRateToNext != nil {
			drop = formatFraction(*row.DropRateToNext)
		}
		records = append(records, []string{
			row.StageLabel,
			strconv.FormatUint(row.SessionCount, 10),
			formatFraction(row.ConversionRateFromStart),
			drop,
		})
	}
	return writeCSV(path, records)
}

// WriteBottleneckReport writes the transition rows in their classified
// (drop-rate descending) order.
func WriteBottleneckReport(path string, rows []models.BottleneckRow) error {
	records := [][]string{{"transition", "sessions_lost", "drop_rate", "severity"}}
	for _, row := range rows {
		records = append(records, []string{
			row.Transition,
			strconv.FormatInt(row.SessionsLost, 10),
			formatFraction(row.DropRate),
			row.Severity,
		})
	}
	return writeCSV(path, records)
}

// WriteSegmentReport writes per-partition conversion rows.
func WriteSegmentReport(path string, rows []models.SegmentRow) error {
	records := [][]string{{"segment", "total_sessions", "converted_sessions", "conversion_rate"}}
	for _, row := range rows {
		records = append(records, []string{
			row.SegmentKey,
			strconv.FormatUint(row.TotalSessions, 10),
			strconv.FormatUint(row.ConvertedSessions, 10),
			formatFraction(row.ConversionRate),
		})
	}
	return writeCSV(path, records)
}

func formatFraction(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", path, err)
	}
	return nil
}
