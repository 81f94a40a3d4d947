package funnel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelpulse/api/models"
)

func TestDefaultStages(t *testing.T) {
	stages := DefaultStages()
	require.Len(t, stages, 8)

	assert.Equal(t, "Homepage Visit", stages[0].Label)
	assert.Equal(t, models.PageHomepage, stages[0].Page)
	assert.Equal(t, models.ActionPageView, stages[0].Action)

	assert.Equal(t, "Purchase", stages[7].Label)
	assert.Equal(t, models.PagePayment, stages[7].Page)
	assert.Equal(t, models.ActionPurchase, stages[7].Action)

	for i, s := range stages {
		assert.Equal(t, i, s.Position)
	}
}

func TestValidateStages(t *testing.T) {
	var confErr *InvalidConfigurationError

	require.ErrorAs(t, ValidateStages(nil), &confErr)
	require.ErrorAs(t, ValidateStages([]Stage{{Page: "homepage", Action: "page_view"}}), &confErr)
	require.NoError(t, ValidateStages(DefaultStages()))
}

func TestLoadStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yml")
	content := `stages:
  - label: Landing
    page: homepage
    action: page_view
  - label: Signup
    page: checkout_page
    action: begin_checkout
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	stages, err := LoadStages(path)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "Landing", stages[0].Label)
	assert.Equal(t, 0, stages[0].Position)
	assert.Equal(t, "Signup", stages[1].Label)
	assert.Equal(t, 1, stages[1].Position)
	assert.Equal(t, models.ActionBeginCheckout, stages[1].Action)
}

func TestLoadStages_EmptyDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yml")
	require.NoError(t, os.WriteFile(path, []byte("stages: []\n"), 0o644))

	_, err := LoadStages(path)
	var confErr *InvalidConfigurationError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadStages_MissingFile(t *testing.T) {
	_, err := LoadStages(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestMatcher(t *testing.T) {
	purchase := ev("s1", models.PagePayment, models.ActionPurchase)
	view := ev("s1", models.PagePayment, models.ActionPageView)

	assert.True(t, PurchaseMatcher.Matches(purchase))
	assert.False(t, PurchaseMatcher.Matches(view))
}
