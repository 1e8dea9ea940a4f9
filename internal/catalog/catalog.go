// Package catalog holds the closed vocabulary of listing preference and amenity tags.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var raw []byte

// Catalog is the set of tags a listing may carry.
type Catalog struct {
	Preferences []string `yaml:"preferences" json:"preferences"`
	Amenities   []string `yaml:"amenities" json:"amenities"`

	preferences map[string]struct{}
	amenities   map[string]struct{}
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(raw)
}

// Parse builds a Catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Preferences) == 0 || len(c.Amenities) == 0 {
		return nil, fmt.Errorf("parse catalog: preferences and amenities must not be empty")
	}
	c.preferences = toSet(c.Preferences)
	c.amenities = toSet(c.Amenities)
	return &c, nil
}

// MustLoad is Load for package initialisation; it panics on a malformed embed.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// UnknownPreferences returns the tags in tags that are not catalog preferences.
func (c *Catalog) UnknownPreferences(tags []string) []string {
	return unknown(c.preferences, tags)
}

// UnknownAmenities returns the tags in tags that are not catalog amenities.
func (c *Catalog) UnknownAmenities(tags []string) []string {
	return unknown(c.amenities, tags)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func unknown(set map[string]struct{}, tags []string) []string {
	var out []string
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
