package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v3"
)

// OptionGroup is a named set of variant choices the buyer must pick from,
// such as a filling or a size.
type OptionGroup struct {
	Label   string   `json:"label"`
	Choices []string `json:"choices"`
}

type Product struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Options []OptionGroup   `json:"options,omitempty"`
}

// Catalog is the product list loaded once at startup. Cart lines carry
// their own name and price, so the catalog is purely informational.
type Catalog struct {
	Products []Product
}

type productFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Name    string             `yaml:"name"`
	Price   string             `yaml:"price"`
	Options []optionGroupEntry `yaml:"options"`
}

type optionGroupEntry struct {
	Label   string   `yaml:"label"`
	Choices []string `yaml:"choices"`
}

// Load reads the product catalog from a yaml file. Prices are written as
// strings in the file to keep them exact.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Catalog, error) {
	var file productFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog file lists no products")
	}

	products := make([]Product, 0, len(file.Products))
	for i, entry := range file.Products {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog product %d has no name", i)
		}

		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog product %q has invalid price %q", entry.Name, entry.Price)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("catalog product %q has negative price", entry.Name)
		}

		groups := make([]OptionGroup, 0, len(entry.Options))
		for _, g := range entry.Options {
			groups = append(groups, OptionGroup{Label: g.Label, Choices: g.Choices})
		}
		if len(groups) == 0 {
			groups = nil
		}

		products = append(products, Product{
			Name:    entry.Name,
			Price:   price,
			Options: groups,
		})
	}

	return &Catalog{Products: products}, nil
}
