// api/simdata/generator.go
//
// Synthetic clickstream generation for development and load testing. The
// distributions mirror observed shop traffic: most sessions wander off
// early, roughly 15% walk the full funnel, and of those 75% reach checkout
// and 70% of payment-page sessions complete the purchase.
package simdata

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"funnelpulse/api/models"
)

const (
	fullFunnelShare    = 0.15
	checkoutShare      = 0.75
	purchaseShare      = 0.70
	simulatedUserCount = 1000
)

var (
	pageWeights   = []float64{0.3, 0.25, 0.2, 0.1, 0.08, 0.05, 0.02}
	actionWeights = []float64{0.7, 0.15, 0.08, 0.03, 0.03, 0.01}
	// Random session lengths and their probabilities.
	sessionLengths      = []int{1, 2, 3, 4, 5, 6, 7}
	sessionLenWeights   = []float64{0.3, 0.25, 0.2, 0.1, 0.08, 0.05, 0.02}
	productCategories   = []string{"electronics", "clothing", "books", "home_decor", "toys", "beauty"}
	productNameWords    = []string{"atlas", "nimbus", "quartz", "ember", "drift", "vertex", "orbit", "willow", "cobalt", "sierra"}
	productNameSuffixes = []string{"Pro", "Max", "Ultra", "Basic", "Premium", "Lite"}
)

// Generator produces synthetic clickstream sessions. It is deterministic
// for a given seed, which the tests rely on. Not safe for concurrent use;
// each goroutine should own its own Generator.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a Generator seeded for reproducible output.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Sessions generates n complete sessions and returns their events flattened.
func (g *Generator) Sessions(n int) []models.Event {
	var events []models.Event
	for i := 0; i < n; i++ {
		events = append(events, g.Session()...)
	}
	return events
}

// Session generates one visit: either a full-funnel walk or a short random
// browse, per the configured shares.
func (g *Generator) Session() []models.Event {
	sessionID := uuid.New().String()
	userID := strconv.Itoa(g.rng.Intn(simulatedUserCount) + 1)
	device := models.Devices[g.rng.Intn(len(models.Devices))]
	source := models.TrafficSources[g.rng.Intn(len(models.TrafficSources))]

	// Sessions start at a random point in the last 30 days.
	start := g.now().
		AddDate(0, 0, -g.rng.Intn(31)).
		Add(-time.Duration(g.rng.Intn(86400)) * time.Second)

	if g.rng.Float64() < fullFunnelShare {
		return g.funnelSession(sessionID, userID, device, source, start)
	}
	return g.randomSession(sessionID, userID, device, source, start)
}

func (g *Generator) funnelSession(sessionID, userID, device, source string, start time.Time) []models.Event {
	type step struct {
		page, action string
		metadata     json.RawMessage
	}
	steps := []step{
		{page: models.PageHomepage, action: models.ActionPageView},
		{page: models.PageCategory, action: models.ActionPageView},
		{page: models.PageProduct, action: models.ActionPageView},
		{page: models.PageProduct, action: models.ActionAddToCart, metadata: g.productMetadata()},
		{page: models.PageCart, action: models.ActionPageView},
	}

	if g.rng.Float64() < checkoutShare {
		steps = append(steps,
			step{page: models.PageCart, action: models.ActionBeginCheckout},
			step{page: models.PageCheckout, action: models.ActionPageView},
			step{page: models.PagePayment, action: models.ActionPageView},
		)
		if g.rng.Float64() < purchaseShare {
			steps = append(steps,
				step{page: models.PagePayment, action: models.ActionPurchase, metadata: g.orderMetadata()},
				step{page: models.PageOrderConfirmation, action: models.ActionPageView},
			)
		}
	}

	events := make([]models.Event, 0, len(steps))
	current := start
	for _, s := range steps {
		events = append(events, models.Event{
			EventID:       uuid.New().String(),
			SessionID:     sessionID,
			UserID:        userID,
			Timestamp:     current,
			Page:          s.page,
			Action:        s.action,
			Device:        device,
			TrafficSource: source,
			Metadata:      s.metadata,
		})
		current = current.Add(time.Duration(5+g.rng.Intn(26)) * time.Second)
	}
	return events
}

func (g *Generator) randomSession(sessionID, userID, device, source string, start time.Time) []models.Event {
	length := sessionLengths[weightedIndex(g.rng, sessionLenWeights)]
	events := make([]models.Event, 0, length)
	current := start
	for i := 0; i < length; i++ {
		page, action := g.pageAction()
		e := models.Event{
			EventID:       uuid.New().String(),
			SessionID:     sessionID,
			UserID:        userID,
			Timestamp:     current,
			Page:          page,
			Action:        action,
			Device:        device,
			TrafficSource: source,
		}
		if action == models.ActionAddToCart || action == models.ActionRemoveFromCart {
			e.Metadata = g.productMetadata()
		}
		if action == models.ActionPurchase {
			e.Metadata = g.orderMetadata()
		}
		events = append(events, e)
		current = current.Add(time.Duration(1+g.rng.Intn(120)) * time.Second)
	}
	return events
}

// pageAction draws a weighted (page, action) pair and then reconciles the
// combinations that cannot happen on a real shop page.
func (g *Generator) pageAction() (string, string) {
	page := models.Pages[weightedIndex(g.rng, pageWeights)]
	action := models.Actions[weightedIndex(g.rng, actionWeights)]

	switch {
	case (page == models.PageHomepage || page == models.PageCategory) && action != models.ActionPageView && action != models.ActionClick:
		action = models.ActionClick
	case page == models.PageProduct && (action == models.ActionBeginCheckout || action == models.ActionPurchase):
		action = models.ActionAddToCart
	case (page == models.PageCheckout || page == models.PagePayment) && action == models.ActionAddToCart:
		action = models.ActionClick
	case page == models.PageOrderConfirmation && action != models.ActionPageView:
		action = models.ActionPageView
	}
	return page, action
}

func (g *Generator) product(withQuantity bool) models.Product {
	p := models.Product{
		ProductID:       1000 + g.rng.Intn(9000),
		ProductName:     productNameWords[g.rng.Intn(len(productNameWords))] + " " + productNameSuffixes[g.rng.Intn(len(productNameSuffixes))],
		ProductCategory: productCategories[g.rng.Intn(len(productCategories))],
		ProductPrice:    roundCents(10 + g.rng.Float64()*490),
	}
	if withQuantity {
		p.Quantity = 1 + g.rng.Intn(3)
	}
	return p
}

func (g *Generator) productMetadata() json.RawMessage {
	raw, _ := json.Marshal(g.product(false))
	return raw
}

func (g *Generator) orderMetadata() json.RawMessage {
	count := 1 + g.rng.Intn(4)
	products := make([]models.Product, 0, count)
	total := 0.0
	for i := 0; i < count; i++ {
		p := g.product(true)
		total += p.ProductPrice * float64(p.Quantity)
		products = append(products, p)
	}
	raw, _ := json.Marshal(models.PurchaseMetadata{
		OrderID:    100000 + g.rng.Intn(900000),
		OrderTotal: roundCents(total),
		Products:   products,
	})
	return raw
}

func weightedIndex(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func roundCents(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
