// api/funnel/definition.go
package funnel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"funnelpulse/api/models"
)

// Matcher identifies events belonging to a funnel milestone by their
// (page, action) pair.
type Matcher struct {
	Page   string `yaml:"page" json:"page"`
	Action string `yaml:"action" json:"action"`
}

// Matches reports whether the event hits this milestone.
func (m Matcher) Matches(e models.Event) bool {
	return e.Page == m.Page && e.Action == m.Action
}

// PurchaseMatcher is the canonical conversion milestone.
var PurchaseMatcher = Matcher{Page: models.PagePayment, Action: models.ActionPurchase}

// Stage is one ordered milestone of a funnel definition. Position 0 is the
// entry stage.
type Stage struct {
	Label    string `yaml:"label" json:"label"`
	Page     string `yaml:"page" json:"page"`
	Action   string `yaml:"action" json:"action"`
	Position int    `yaml:"-" json:"position"`
}

// Matches reports whether the event hits this stage's milestone.
func (s Stage) Matches(e models.Event) bool {
	return e.Page == s.Page && e.Action == s.Action
}

// InvalidConfigurationError reports a funnel definition the aggregator
// cannot work with, such as an empty stage list.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid funnel configuration: " + e.Reason
}

// DefaultStages returns the canonical 8-stage purchase funnel.
func DefaultStages() []Stage {
	stages := []Stage{
		{Label: "Homepage Visit", Page: models.PageHomepage, Action: models.ActionPageView},
		{Label: "Category Page Visit", Page: models.PageCategory, Action: models.ActionPageView},
		{Label: "Product Page Visit", Page: models.PageProduct, Action: models.ActionPageView},
		{Label: "Add to Cart", Page: models.PageProduct, Action: models.ActionAddToCart},
		{Label: "Cart View", Page: models.PageCart, Action: models.ActionPageView},
		{Label: "Checkout", Page: models.PageCheckout, Action: models.ActionPageView},
		{Label: "Payment", Page: models.PagePayment, Action: models.ActionPageView},
		{Label: "Purchase", Page: models.PagePayment, Action: models.ActionPurchase},
	}
	for i := range stages {
		stages[i].Position = i
	}
	return stages
}

type stageFile struct {
	Stages []Stage `yaml:"stages"`
}

// LoadStages reads an alternate funnel definition from a YAML file. The
// file lists stages in funnel order:
//
//	stages:
//	  - label: Homepage Visit
//	    page: homepage
//	    action: page_view
func LoadStages(path string) ([]Stage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read funnel definition %s: %w", path, err)
	}

	var file stageFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse funnel definition %s: %w", path, err)
	}

	for i := range file.Stages {
		file.Stages[i].Position = i
	}
	if err := ValidateStages(file.Stages); err != nil {
		return nil, err
	}
	return file.Stages, nil
}

// ValidateStages fails fast on definitions with no well-defined output
// shape. An empty funnel is a caller programming error, not a data problem.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return &InvalidConfigurationError{Reason: "at least one stage is required"}
	}
	for i, s := range stages {
		if s.Label == "" || s.Page == "" || s.Action == "" {
			return &InvalidConfigurationError{Reason: fmt.Sprintf("stage %d is missing label, page or action", i)}
		}
	}
	return nil
}
