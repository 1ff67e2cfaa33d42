// Package catalog holds the browsable recipe categories. Recipe.category is
// free-form; the catalog only supplies labels and ordering for the browse page.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Category struct {
	Slug  string `yaml:"slug" json:"slug"`
	Label string `yaml:"label" json:"label"`
	Order int    `yaml:"order" json:"-"`
}

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

var defaultCategories = []Category{
	{Slug: "breakfast", Label: "Breakfast", Order: 1},
	{Slug: "soup", Label: "Soups", Order: 2},
	{Slug: "main-course", Label: "Main Courses", Order: 3},
	{Slug: "salad", Label: "Salads", Order: 4},
	{Slug: "appetizer", Label: "Appetizers", Order: 5},
	{Slug: "dessert", Label: "Desserts", Order: 6},
	{Slug: "bakery", Label: "Bakery", Order: 7},
	{Slug: "drinks", Label: "Drinks", Order: 8},
	{Slug: "vegetarian", Label: "Vegetarian", Order: 9},
}

type Registry struct {
	mu         sync.RWMutex
	categories map[string]*Category
}

func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[string]*Category),
	}
}

// Default returns a registry seeded with the built-in categories.
func Default() *Registry {
	r := NewRegistry()
	for i := range defaultCategories {
		c := defaultCategories[i]
		r.Register(&c)
	}
	return r
}

// LoadFromFile reads a YAML catalog. An empty path yields the defaults.
func LoadFromFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Categories {
		c := file.Categories[i]
		c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
		if c.Slug == "" {
			return nil, fmt.Errorf("category %d has no slug", i)
		}
		if c.Label == "" {
			c.Label = c.Slug
		}
		if c.Order == 0 {
			c.Order = i + 1
		}
		registry.Register(&c)
	}
	return registry, nil
}

func (r *Registry) Register(c *Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.Slug] = c
}

func (r *Registry) Get(slug string) *Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories[slug]
}

// Label returns the display label, or the slug itself for unknown categories.
func (r *Registry) Label(slug string) string {
	if c := r.Get(slug); c != nil {
		return c.Label
	}
	return slug
}

// All returns the categories sorted by their configured order.
func (r *Registry) All() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Slug < result[j].Slug
	})
	return result
}
