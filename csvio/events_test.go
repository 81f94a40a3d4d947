package csvio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelpulse/api/models"
)

func sampleEvents() []models.Event {
	base := time.Date(2026, 8, 1, 9, 15, 0, 500000000, time.UTC)
	return []models.Event{
		{
			EventID:       "e1",
			SessionID:     "s1",
			UserID:        "42",
			Timestamp:     base,
			Page:          models.PageHomepage,
			Action:        models.ActionPageView,
			Device:        models.DeviceDesktop,
			TrafficSource: models.SourceOrganicSearch,
		},
		{
			EventID:       "e2",
			SessionID:     "s1",
			UserID:        "42",
			Timestamp:     base.Add(30 * time.Second),
			Page:          models.PagePayment,
			Action:        models.ActionPurchase,
			Device:        models.DeviceDesktop,
			TrafficSource: models.SourceOrganicSearch,
			Metadata:      json.RawMessage(`{"order_id":1,"order_total":25.5,"products":[{"product_id":7,"quantity":1,"product_price":25.5}]}`),
		},
	}
}

func TestEventsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clickstream.csv")
	require.NoError(t, WriteEvents(path, sampleEvents()))

	events, skipped, err := ReadEvents(path, false)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, events, 2)

	assert.Equal(t, "e1", events[0].EventID)
	assert.Equal(t, "s1", events[0].SessionID)
	assert.Equal(t, models.PageHomepage, events[0].Page)
	assert.True(t, sampleEvents()[0].Timestamp.Equal(events[0].Timestamp))
	assert.Empty(t, events[0].Metadata)

	assert.Equal(t, models.ActionPurchase, events[1].Action)
	details, err := events[1].PurchaseDetails()
	require.NoError(t, err)
	assert.InDelta(t, 25.5, details.OrderTotal, 1e-9)
}

func TestAppendEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clickstream.csv")
	events := sampleEvents()

	require.NoError(t, AppendEvents(path, events[:1]))
	require.NoError(t, AppendEvents(path, events[1:]))

	loaded, skipped, err := ReadEvents(path, false)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, loaded, 2)
}

func writeRaw(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clickstream.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const malformedTimestampCSV = `event_id,session_id,user_id,timestamp,page,action,device,traffic_source,metadata
e1,s1,42,2026-08-01 09:15:00.000000,homepage,page_view,desktop,direct,
e2,s2,43,not-a-timestamp,homepage,page_view,mobile,direct,
`

func TestReadEvents_LenientSkipsMalformed(t *testing.T) {
	path := writeRaw(t, malformedTimestampCSV)

	events, skipped, err := ReadEvents(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].EventID)
}

func TestReadEvents_StrictAborts(t *testing.T) {
	path := writeRaw(t, malformedTimestampCSV)

	_, _, err := ReadEvents(path, true)
	var evErr *models.MalformedEventError
	require.ErrorAs(t, err, &evErr)
	assert.Equal(t, "e2", evErr.EventID)
}

func TestReadEvents_MalformedMetadata(t *testing.T) {
	content := `event_id,session_id,user_id,timestamp,page,action,device,traffic_source,metadata
e1,s1,42,2026-08-01 09:15:00.000000,payment_page,purchase,desktop,direct,"{broken"
`
	path := writeRaw(t, content)

	events, skipped, err := ReadEvents(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Empty(t, events)

	_, _, err = ReadEvents(path, true)
	var metaErr *models.MalformedMetadataError
	require.ErrorAs(t, err, &metaErr)
}

func TestReadEvents_MissingColumn(t *testing.T) {
	path := writeRaw(t, "event_id,session_id\ne1,s1\n")

	_, _, err := ReadEvents(path, false)
	require.Error(t, err)
}
