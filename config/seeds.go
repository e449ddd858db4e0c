package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultBaseURL is the olx.ro real-estate section.
const DefaultBaseURL = "https://www.olx.ro/imobiliare"

// startQuery sorts results newest first, which the freshness cutoff relies on.
const startQuery = "?search%5Border%5D=created_at%3Adesc&currency=EUR"

var (
	DefaultCities = []string{
		"iasi_39939",
		"cluj-napoca",
		"timisoara",
		"brasov",
		"constanta",
	}
	DefaultCategories = []string{
		"apartamente-garsoniere-de-vanzare",
	}
)

// Seed is one start URL together with the city and category it covers.
type Seed struct {
	City     string
	Category string
	URL      string
}

// SeedFile is the YAML layout accepted by SEEDS_FILE:
//
//	base_url: https://www.olx.ro/imobiliare
//	categories: [apartamente-garsoniere-de-vanzare]
//	cities: [cluj-napoca, brasov]
type SeedFile struct {
	BaseURL    string   `yaml:"base_url"`
	Categories []string `yaml:"categories"`
	Cities     []string `yaml:"cities"`
}

// LoadSeeds reads a SeedFile from path.
func LoadSeeds(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read seeds %q: %w", path, err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("config: parse seeds %q: %w", path, err)
	}
	return &sf, nil
}

func (sf *SeedFile) applyTo(cfg *Config) {
	if sf.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(sf.BaseURL, "/")
	}
	if len(sf.Categories) > 0 {
		cfg.Categories = sf.Categories
	}
	if len(sf.Cities) > 0 {
		cfg.Cities = sf.Cities
	}
}

// Seeds expands every (category, city) pair into a start URL. The city slug
// is used verbatim and later becomes the record's city value.
func (c *Config) Seeds() []Seed {
	seeds := make([]Seed, 0, len(c.Categories)*len(c.Cities))
	for _, category := range c.Categories {
		for _, city := range c.Cities {
			seeds = append(seeds, Seed{
				City:     city,
				Category: category,
				URL:      fmt.Sprintf("%s/%s/%s/%s", c.BaseURL, category, city, startQuery),
			})
		}
	}
	return seeds
}
