package services

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"realestate-bi/models"
)

// Filter is a conjunction of row predicates. An empty Locations or
// PropertyTypes selection matches nothing; PriceMin and PriceMax are inclusive
// and listings without a price never match.
type Filter struct {
	Locations     []string `yaml:"locations" json:"locations"`
	PropertyTypes []string `yaml:"property_types" json:"property_types"`
	BedroomMin    int      `yaml:"bedroom_min" json:"bedroom_min"`
	PriceMin      int64    `yaml:"price_min" json:"price_min"`
	PriceMax      int64    `yaml:"price_max" json:"price_max"`
}

// DefaultFilter selects every location and type, any bedroom count and the
// full price range present in listings.
func DefaultFilter(listings []*models.Listing) Filter {
	opts := Options(listings)
	return Filter{
		Locations:     opts.Locations,
		PropertyTypes: opts.PropertyTypes,
		BedroomMin:    0,
		PriceMin:      0,
		PriceMax:      opts.MaxPrice,
	}
}

// LoadFilterFile overlays the YAML preset at path onto base. Keys missing
// from the file keep base's values; a key present with an empty list
// selects nothing.
func LoadFilterFile(path string, base Filter) (Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("filter: read %q: %w", path, err)
	}

	f := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if len(bytes.TrimSpace(data)) == 0 {
			return base, nil
		}
		return base, fmt.Errorf("filter: parse %q: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return base, fmt.Errorf("filter: %q: %w", path, err)
	}
	return f, nil
}

// Validate rejects ranges no listing could satisfy by construction.
func (f Filter) Validate() error {
	if f.BedroomMin < 0 {
		return fmt.Errorf("bedroom_min must be >= 0, got %d", f.BedroomMin)
	}
	if f.PriceMin < 0 {
		return fmt.Errorf("price_min must be >= 0, got %d", f.PriceMin)
	}
	if f.PriceMax < f.PriceMin {
		return fmt.Errorf("price_max %d is below price_min %d", f.PriceMax, f.PriceMin)
	}
	return nil
}
