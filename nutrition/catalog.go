package nutrition

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// FoodItem is one food with nutrition for a single serving.
type FoodItem struct {
	Name        string  `json:"name"         yaml:"name"         binding:"required"`
	Calories    int     `json:"calories"     yaml:"calories"     binding:"gte=0"`
	ProteinG    float64 `json:"protein_g"    yaml:"protein"      binding:"gte=0"`
	CarbsG      float64 `json:"carbs_g"      yaml:"carbs"        binding:"gte=0"`
	FatG        float64 `json:"fat_g"        yaml:"fat"          binding:"gte=0"`
	ServingSize string  `json:"serving_size" yaml:"serving_size"`
	Custom      bool    `json:"custom,omitempty" yaml:"-"`
}

// Catalog holds the built-in exercises and foods.
type Catalog struct {
	Exercises []Exercise `yaml:"exercises"`
	Foods     []FoodItem `yaml:"foods"`
}

// LoadCatalog parses a YAML catalog. Exercises must have a name and a
// positive MET value.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, ex := range c.Exercises {
		if strings.TrimSpace(ex.Name) == "" || ex.MET <= 0 {
			return nil, fmt.Errorf("catalog exercise %d: name and positive met required", i)
		}
	}
	for i, f := range c.Foods {
		if strings.TrimSpace(f.Name) == "" || f.Calories < 0 {
			return nil, fmt.Errorf("catalog food %d: name and non-negative calories required", i)
		}
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// DefaultCatalog returns the embedded catalog, parsed once.
func DefaultCatalog() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	})
	return defaultCatalog, defaultErr
}

// Exercise looks up an exercise by name, ignoring case.
func (c *Catalog) Exercise(name string) (Exercise, bool) {
	for _, ex := range c.Exercises {
		if strings.EqualFold(ex.Name, strings.TrimSpace(name)) {
			return ex, true
		}
	}
	return Exercise{}, false
}

// SearchFoods returns the foods whose name contains q, ignoring case.
// An empty query returns every food.
func (c *Catalog) SearchFoods(q string) []FoodItem {
	return FilterFoods(c.Foods, q)
}

// FilterFoods is SearchFoods over an arbitrary list.
func FilterFoods(foods []FoodItem, q string) []FoodItem {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]FoodItem, 0, len(foods))
	for _, f := range foods {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}
