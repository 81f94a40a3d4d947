// api/models/report.go
package models

// Report rows are derived value objects: recomputed wholesale on every
// aggregation pass, never mutated in place. Rate fields always carry raw
// fractions; percentage formatting belongs to the presentation boundary.

// FunnelResult is one stage row of a funnel report.
type FunnelResult struct {
	StageLabel              string   `json:"stageLabel"`
	SessionCount            uint64   `json:"sessionCount"`
	ConversionRateFromStart float64  `json:"conversionRateFromStart"`
	DropRateToNext          *float64 `json:"dropRateToNext,omitempty"` // nil for the last stage
}

// Bottleneck severity levels.
const (
	SeverityHigh   = "High"
	SeverityMedium = "Medium"
	SeverityLow    = "Low"
)

// BottleneckRow describes the drop-off across one stage transition.
// SessionsLost can be negative when the later stage saw more sessions;
// stage counts are independent presence tests and are not monotonic.
type BottleneckRow struct {
	Transition   string  `json:"transition"`
	SessionsLost int64   `json:"sessionsLost"`
	DropRate     float64 `json:"dropRate"`
	Severity     string  `json:"severity"`
}

// SegmentRow is the conversion summary for one partition value.
type SegmentRow struct {
	SegmentKey        string  `json:"segmentKey"`
	TotalSessions     uint64  `json:"totalSessions"`
	ConvertedSessions uint64  `json:"convertedSessions"`
	ConversionRate    float64 `json:"conversionRate"`
}
