package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	r := Default()

	all := r.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "breakfast", all[0].Slug)
	assert.NotNil(t, r.Get("dessert"))
	assert.Equal(t, "Desserts", r.Label("dessert"))
	assert.Equal(t, "street-food", r.Label("street-food"))
}

func TestParse(t *testing.T) {
	data := []byte(`
categories:
  - slug: Vegan
    label: Plant based
    order: 2
  - slug: grill
    order: 1
  - slug: snacks
`)
	r, err := Parse(data)
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"grill", "vegan", "snacks"}, []string{all[0].Slug, all[1].Slug, all[2].Slug})
	assert.Equal(t, "Plant based", r.Label("vegan"))
	assert.Equal(t, "grill", r.Label("grill"))
}

func TestParseRejectsMissingSlug(t *testing.T) {
	_, err := Parse([]byte("categories:\n  - label: Nameless\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("categories: [oops"))
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	r, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, len(defaultCategories), len(r.All()))

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - slug: brunch\n"), 0o600))
	r, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.NotNil(t, r.Get("brunch"))

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
