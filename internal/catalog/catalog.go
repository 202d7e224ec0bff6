// Package catalog holds the purchasable credit packs.
package catalog

import (
	"fmt"
	"os"

	"certifyrpg/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	products []models.Product
	byKey    map[string]models.Product
}

type fileProduct struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	Credits int64  `yaml:"credits"`
	Price   string `yaml:"price"`
}

type file struct {
	Products []fileProduct `yaml:"products"`
}

func New(products []models.Product) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]models.Product, len(products))}
	for _, p := range products {
		if p.Key == "" {
			return nil, fmt.Errorf("product %q has no key", p.Name)
		}
		if p.Credits <= 0 {
			return nil, fmt.Errorf("product %s: credits must be positive", p.Key)
		}
		if !p.Price.IsPositive() {
			return nil, fmt.Errorf("product %s: price must be positive", p.Key)
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("duplicate product key %s", p.Key)
		}
		c.byKey[p.Key] = p
		c.products = append(c.products, p)
	}
	return c, nil
}

func Default() *Catalog {
	c, _ := New(models.DefaultProducts())
	return c
}

// Load reads a YAML catalog. An empty path yields the built-in packs.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse products file: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, fmt.Errorf("products file lists no products")
	}

	products := make([]models.Product, 0, len(f.Products))
	for _, fp := range f.Products {
		price, err := decimal.NewFromString(fp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: invalid price %q: %w", fp.Key, fp.Price, err)
		}
		products = append(products, models.Product{
			Key:     fp.Key,
			Name:    fp.Name,
			Credits: fp.Credits,
			Price:   price,
		})
	}
	return New(products)
}

func (c *Catalog) Lookup(key string) (models.Product, bool) {
	p, ok := c.byKey[key]
	return p, ok
}

func (c *Catalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}
