// api/models/event.go
package models

import (
	"encoding/json"
	"time"
)

// Pages a visitor can land on during the purchase journey.
const (
	PageHomepage          = "homepage"
	PageCategory          = "category_page"
	PageProduct           = "product_page"
	PageCart              = "cart_page"
	PageCheckout          = "checkout_page"
	PagePayment           = "payment_page"
	PageOrderConfirmation = "order_confirmation"
)

// Actions a visitor can take on a page.
const (
	ActionPageView       = "page_view"
	ActionClick          = "click"
	ActionAddToCart      = "add_to_cart"
	ActionRemoveFromCart = "remove_from_cart"
	ActionBeginCheckout  = "begin_checkout"
	ActionPurchase       = "purchase"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

const (
	SourceOrganicSearch = "organic_search"
	SourcePaidSearch    = "paid_search"
	SourceSocialMedia   = "social_media"
	SourceDirect        = "direct"
	SourceEmail         = "email"
	SourceReferral      = "referral"
)

var (
	Pages          = []string{PageHomepage, PageCategory, PageProduct, PageCart, PageCheckout, PagePayment, PageOrderConfirmation}
	Actions        = []string{ActionPageView, ActionClick, ActionAddToCart, ActionRemoveFromCart, ActionBeginCheckout, ActionPurchase}
	Devices        = []string{DeviceDesktop, DeviceMobile, DeviceTablet}
	TrafficSources = []string{SourceOrganicSearch, SourcePaidSearch, SourceSocialMedia, SourceDirect, SourceEmail, SourceReferral}
)

// Event represents a single clickstream interaction event.
type Event struct {
	EventID       string          `json:"eventId"`
	SessionID     string          `json:"sessionId"`
	UserID        string          `json:"userId"`
	Timestamp     time.Time       `json:"timestamp"`
	Page          string          `json:"page"`
	Action        string          `json:"action"`
	Device        string          `json:"device"`
	TrafficSource string          `json:"trafficSource"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// Validate checks field presence only; the event model carries no deeper
// invariants. Enum vocabularies are not enforced so an alternate funnel
// definition can introduce its own pages and actions.
func (e Event) Validate() error {
	if e.SessionID == "" {
		return &MalformedEventError{EventID: e.EventID, Field: "sessionId", Reason: "missing"}
	}
	if e.Timestamp.IsZero() {
		return &MalformedEventError{EventID: e.EventID, Field: "timestamp", Reason: "missing"}
	}
	if e.Page == "" || e.Action == "" {
		return &MalformedEventError{EventID: e.EventID, Field: "page/action", Reason: "missing"}
	}
	return nil
}

// Product is a single line item attached to cart and purchase events.
type Product struct {
	ProductID       int     `json:"product_id"`
	ProductName     string  `json:"product_name"`
	ProductCategory string  `json:"product_category"`
	ProductPrice    float64 `json:"product_price"`
	Quantity        int     `json:"quantity,omitempty"`
}

// PurchaseMetadata is the payload carried by purchase events.
type PurchaseMetadata struct {
	OrderID    int       `json:"order_id"`
	OrderTotal float64   `json:"order_total"`
	Products   []Product `json:"products"`
}

// PurchaseDetails decodes and validates the metadata of a purchase event.
// A purchase must carry an order total and at least one line item.
func (e Event) PurchaseDetails() (*PurchaseMetadata, error) {
	if len(e.Metadata) == 0 {
		return nil, &MalformedMetadataError{EventID: e.EventID, Reason: "purchase event has no metadata"}
	}
	var meta PurchaseMetadata
	if err := json.Unmarshal(e.Metadata, &meta); err != nil {
		return nil, &MalformedMetadataError{EventID: e.EventID, Reason: "not valid JSON", Err: err}
	}
	if meta.OrderTotal <= 0 {
		return nil, &MalformedMetadataError{EventID: e.EventID, Reason: "missing order total"}
	}
	if len(meta.Products) == 0 {
		return nil, &MalformedMetadataError{EventID: e.EventID, Reason: "empty product list"}
	}
	return &meta, nil
}

// timestampLayouts are the lexical forms accepted for event timestamps: the
// flat-file format written by the simulator, then the RFC3339 variants used
// on the HTTP ingest path.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	time.RFC3339Nano,
	time.RFC3339,
}

// TimestampLayout is the canonical format used when events are written back
// out to flat files.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// ParseTimestamp parses an event timestamp from any of the accepted layouts.
func ParseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
