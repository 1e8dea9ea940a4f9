// Package listingquery turns browse parameters into a store-neutral predicate and
// compiles that predicate for the MongoDB and GORM listing stores.
package listingquery

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"coliver/internal/models"
)

// SortOrder is the closed set of browse orderings.
type SortOrder string

const (
	SortPriceAsc   SortOrder = "price-asc"
	SortPriceDesc  SortOrder = "price-desc"
	SortDateNewest SortOrder = "date-newest"
	SortDateOldest SortOrder = "date-oldest"
)

// ParseSort maps a raw sorting parameter to a SortOrder. Absent or unknown values sort newest first.
func ParseSort(raw string) SortOrder {
	switch s := SortOrder(strings.TrimSpace(raw)); s {
	case SortPriceAsc, SortPriceDesc, SortDateNewest, SortDateOldest:
		return s
	}
	return SortDateNewest
}

// CapacityAtLeast is the capacity value the browse form sends for "3 or more".
const CapacityAtLeast = 3

// Capacity filters listings by the number of tenants they accept.
type Capacity struct {
	Value   int
	AtLeast bool
}

// Bounds is an inclusive numeric range; a nil end is open.
type Bounds struct {
	Min *float64
	Max *float64
}

func (b Bounds) empty() bool { return b.Min == nil && b.Max == nil }

// Filter is the typed form of the browse query string. Nil or empty fields are absent.
type Filter struct {
	Query       string
	City        string
	Street      string
	Price       Bounds
	Floor       Bounds
	Currency    *models.Currency
	Capacity    *Capacity
	Preferences []string
	Amenities   []string
	Sort        SortOrder
}

// ParseFilter maps raw query parameters to a Filter. Malformed numbers drop that
// bound; an unknown currency is the only input that fails.
func ParseFilter(values url.Values) (Filter, error) {
	f := Filter{
		Query:       strings.TrimSpace(values.Get("query")),
		City:        strings.TrimSpace(values.Get("city")),
		Street:      strings.TrimSpace(values.Get("street")),
		Price:       Bounds{Min: parseNumber(values.Get("priceMin")), Max: parseNumber(values.Get("priceMax"))},
		Floor:       Bounds{Min: parseNumber(values.Get("floorMin")), Max: parseNumber(values.Get("floorMax"))},
		Capacity:    parseCapacity(values.Get("capacity")),
		Preferences: parseTags(values["preferences"]),
		Amenities:   parseTags(values["amenities"]),
		Sort:        ParseSort(values.Get("sorting")),
	}

	if raw := strings.TrimSpace(values.Get("currency")); raw != "" {
		c := models.Currency(strings.ToUpper(raw))
		if !c.Valid() {
			return Filter{}, models.NewFieldValidationError("currency", "currency must be one of USD, EUR, UAH")
		}
		f.Currency = &c
	}

	return f, nil
}

func parseNumber(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseCapacity(raw string) *Capacity {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &Capacity{Value: v, AtLeast: v == CapacityAtLeast}
}

// parseTags accepts both repeated parameters and comma-joined lists.
func parseTags(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, joined := range raw {
		for _, tag := range strings.Split(joined, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
