package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2026-08-01 12:30:45.123456")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 45, 123456000, time.UTC), ts)

	ts, err = ParseTimestamp("2026-08-01T12:30:45Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 30, 45, 0, time.UTC), ts)

	_, err = ParseTimestamp("01/08/2026 12:30")
	require.Error(t, err)
}

func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2026, 8, 1, 12, 30, 45, 123456000, time.UTC)
	parsed, err := ParseTimestamp(original.Format(TimestampLayout))
	require.NoError(t, err)
	assert.True(t, original.Equal(parsed))
}

func TestEventValidate(t *testing.T) {
	valid := Event{
		EventID:   "e1",
		SessionID: "s1",
		Timestamp: time.Now(),
		Page:      PageHomepage,
		Action:    ActionPageView,
	}
	require.NoError(t, valid.Validate())

	var evErr *MalformedEventError

	noSession := valid
	noSession.SessionID = ""
	require.ErrorAs(t, noSession.Validate(), &evErr)
	assert.Equal(t, "sessionId", evErr.Field)

	noTimestamp := valid
	noTimestamp.Timestamp = time.Time{}
	require.ErrorAs(t, noTimestamp.Validate(), &evErr)

	noAction := valid
	noAction.Action = ""
	require.ErrorAs(t, noAction.Validate(), &evErr)
}

func TestPurchaseDetails(t *testing.T) {
	meta := PurchaseMetadata{
		OrderID:    123456,
		OrderTotal: 59.98,
		Products: []Product{
			{ProductID: 1001, ProductName: "atlas Pro", ProductCategory: "electronics", ProductPrice: 29.99, Quantity: 2},
		},
	}
	raw, err := json.Marshal(meta)
	require.NoError(t, err)

	event := Event{EventID: "e1", Metadata: raw}
	got, err := event.PurchaseDetails()
	require.NoError(t, err)
	assert.Equal(t, 123456, got.OrderID)
	assert.InDelta(t, 59.98, got.OrderTotal, 1e-9)
	require.Len(t, got.Products, 1)
}

func TestPurchaseDetails_Malformed(t *testing.T) {
	var metaErr *MalformedMetadataError

	empty := Event{EventID: "e1"}
	_, err := empty.PurchaseDetails()
	require.ErrorAs(t, err, &metaErr)

	invalid := Event{EventID: "e2", Metadata: json.RawMessage("{not json")}
	_, err = invalid.PurchaseDetails()
	require.ErrorAs(t, err, &metaErr)

	noProducts := Event{EventID: "e3", Metadata: json.RawMessage(`{"order_id":1,"order_total":10.0,"products":[]}`)}
	_, err = noProducts.PurchaseDetails()
	require.ErrorAs(t, err, &metaErr)

	noTotal := Event{EventID: "e4", Metadata: json.RawMessage(`{"order_id":1,"products":[{"product_id":1}]}`)}
	_, err = noTotal.PurchaseDetails()
	require.ErrorAs(t, err, &metaErr)
}
