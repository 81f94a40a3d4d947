// api/funnel/segment.go
package funnel

import (
	"sort"

	"funnelpulse/api/models"
)

// KeyFunc extracts the partition value from an event.
type KeyFunc func(models.Event) string

// UnknownSegment is the synthetic partition for events missing the field a
// KeyFunc expects, so segment totals stay complete instead of dropping rows.
const UnknownSegment = "unknown"

// DeviceKey partitions events by device type.
func DeviceKey(e models.Event) string { return e.Device }

// TrafficSourceKey partitions events by traffic source.
func TrafficSourceKey(e models.Event) string { return e.TrafficSource }

// ComputeSegmentConversion produces one SegmentRow per distinct partition
// value observed in the events, sorted by key.
//
// A session is attributed to every partition value any of its events
// carries, so segment totals may overlap and need not sum to the grand
// total. A session converts if any of its events matches the purchase
// matcher, regardless of which partition that event falls in. Partitions
// never observed are simply absent from the output.
func ComputeSegmentConversion(events []models.Event, keyFn KeyFunc, purchase Matcher) []models.SegmentRow {
	sessionKeys := make(map[string]map[string]struct{}) // session -> partition values
	purchased := make(map[string]struct{})              // sessions with a purchase event

	for _, e := range events {
		key := keyFn(e)
		if key == "" {
			key = UnknownSegment
		}
		keys := sessionKeys[e.SessionID]
		if keys == nil {
			keys = make(map[string]struct{})
			sessionKeys[e.SessionID] = keys
		}
		keys[key] = struct{}{}
		if purchase.Matches(e) {
			purchased[e.SessionID] = struct{}{}
		}
	}

	totals := make(map[string]uint64)
	converted := make(map[string]uint64)
	for sessionID, keys := range sessionKeys {
		_, didPurchase := purchased[sessionID]
		for key := range keys {
			totals[key]++
			if didPurchase {
				converted[key]++
			}
		}
	}

	rows := make([]models.SegmentRow, 0, len(totals))
	for key, total := range totals {
		var rate float64
		if total > 0 {
			rate = float64(converted[key]) / float64(total)
		}
		rows = append(rows, models.SegmentRow{
			SegmentKey:        key,
			TotalSessions:     total,
			ConvertedSessions: converted[key],
			ConversionRate:    rate,
		})
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].SegmentKey < rows[b].SegmentKey })
	return rows
}
