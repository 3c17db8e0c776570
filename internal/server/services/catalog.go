package services

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type CatalogItem struct {
	ID     string   `yaml:"id" json:"id"`
	Label  string   `yaml:"label" json:"label"`
	Unit   string   `yaml:"unit" json:"unit"`
	Fields []string `yaml:"fields" json:"fields"`
}

type CatalogCategory struct {
	ID    string        `yaml:"id" json:"id"`
	Name  string        `yaml:"name" json:"name"`
	Items []CatalogItem `yaml:"items" json:"items"`
}

// Catalog lists the defect categories a field report can record.
type Catalog struct {
	Categories []CatalogCategory `yaml:"categories" json:"categories"`
}

func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, cat := range c.Categories {
		if cat.ID == "" || len(cat.Items) == 0 {
			return nil, fmt.Errorf("catalog category %q has no id or items", cat.Name)
		}
		for _, it := range cat.Items {
			if it.ID == "" || len(it.Fields) == 0 {
				return nil, fmt.Errorf("catalog item %q in %s has no id or fields", it.Label, cat.ID)
			}
		}
	}
	return &c, nil
}

// Find returns the category and item with the given ids.
func (c *Catalog) Find(categoryID, itemID string) (CatalogCategory, CatalogItem, bool) {
	for _, cat := range c.Categories {
		if cat.ID != categoryID {
			continue
		}
		for _, it := range cat.Items {
			if it.ID == itemID {
				return cat, it, true
			}
		}
	}
	return CatalogCategory{}, CatalogItem{}, false
}
