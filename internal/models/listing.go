package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Currency is the closed set of prices a listing may be quoted in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyUAH Currency = "UAH"
)

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyUAH:
		return true
	}
	return false
}

// Gender of a current roommate.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Coordinates are always derived from the listing address, never supplied by clients.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Roommate struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	Description string `json:"description,omitempty"`
}

type CoLivingDetails struct {
	Roommates    []Roommate `json:"roommates"`
	HouseRules   []string   `json:"houseRules"`
	SharedSpaces string     `json:"sharedSpaces,omitempty"`
	Schedule     string     `json:"schedule,omitempty"`
}

// Listing is a co-living offer owned by exactly one user.
type Listing struct {
	ID              string           `gorm:"primaryKey;size:36" json:"id"`
	Title           string           `gorm:"not null" json:"title"`
	City            string           `gorm:"not null;index" json:"city"`
	Street          string           `gorm:"not null" json:"street"`
	Price           float64          `gorm:"not null;index" json:"price"`
	Currency        Currency         `gorm:"size:3;not null" json:"currency"`
	Floor           int              `json:"floor"`
	Capacity        int              `gorm:"not null" json:"capacity"`
	Description     string           `gorm:"type:text;not null" json:"description"`
	Photos          []string         `gorm:"serializer:json;type:text" json:"photos"`
	Preferences     []string         `gorm:"serializer:json;type:text" json:"preferences"`
	Amenities       []string         `gorm:"serializer:json;type:text" json:"amenities"`
	Coordinates     Coordinates      `gorm:"embedded;embeddedPrefix:coord_" json:"coordinates"`
	OwnerID         string           `gorm:"size:36;not null;index" json:"ownerId"`
	CoLivingDetails *CoLivingDetails `gorm:"serializer:json;type:text" json:"coLivingDetails,omitempty"`
	CreatedAt       time.Time        `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`

	// Lowercased copies for substring search. SQLite's LOWER only folds ASCII.
	CityLower        string `gorm:"index" json:"-"`
	StreetLower      string `json:"-"`
	DescriptionLower string `gorm:"type:text" json:"-"`
}

func (l *Listing) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (l *Listing) BeforeSave(_ *gorm.DB) error {
	l.CityLower = strings.ToLower(l.City)
	l.StreetLower = strings.ToLower(l.Street)
	l.DescriptionLower = strings.ToLower(l.Description)
	return nil
}

// TagKind separates the two tag vocabularies stored in listing_tags.
type TagKind string

const (
	TagPreference TagKind = "preference"
	TagAmenity    TagKind = "amenity"
)

// ListingTag mirrors a listing's preferences and amenities so relational stores can
// answer contains-all tag filters with an index.
type ListingTag struct {
	ListingID string  `gorm:"primaryKey;size:36"`
	Kind      TagKind `gorm:"primaryKey;size:16"`
	Tag       string  `gorm:"primaryKey;size:64;index"`
}

// Tags flattens the listing's tag lists into rows for the tag table.
func (l *Listing) Tags() []ListingTag {
	tags := make([]ListingTag, 0, len(l.Preferences)+len(l.Amenities))
	seen := make(map[ListingTag]struct{})
	add := func(kind TagKind, values []string) {
		for _, v := range values {
			t := ListingTag{ListingID: l.ID, Kind: kind, Tag: v}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	add(TagPreference, l.Preferences)
	add(TagAmenity, l.Amenities)
	return tags
}

type RoommateSummary struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

type CoLivingSummary struct {
	Roommates    []RoommateSummary `json:"roommates"`
	HouseRules   []string          `json:"houseRules"`
	SharedSpaces string            `json:"sharedSpaces,omitempty"`
	Schedule     string            `json:"schedule,omitempty"`
}

// ListingSummary is the shape returned by browse and recent queries.
type ListingSummary struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	City            string           `json:"city"`
	Street          string           `json:"street"`
	Price           float64          `json:"price"`
	Currency        Currency         `json:"currency"`
	Floor           int              `json:"floor"`
	Capacity        int              `json:"capacity"`
	Description     string           `json:"description"`
	Photos          []string         `json:"photos"`
	Preferences     []string         `json:"preferences"`
	Amenities       []string         `json:"amenities"`
	Coordinates     Coordinates      `json:"coordinates"`
	OwnerID         string           `json:"ownerId"`
	CoLivingDetails *CoLivingSummary `json:"coLivingDetails,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

// Summary projects the listing for browse results. Roommate descriptions are dropped.
func (l *Listing) Summary() ListingSummary {
	s := ListingSummary{
		ID:          l.ID,
		Title:       l.Title,
		City:        l.City,
		Street:      l.Street,
		Price:       l.Price,
		Currency:    l.Currency,
		Floor:       l.Floor,
		Capacity:    l.Capacity,
		Description: l.Description,
		Photos:      nonNil(l.Photos),
		Preferences: nonNil(l.Preferences),
		Amenities:   nonNil(l.Amenities),
		Coordinates: l.Coordinates,
		OwnerID:     l.OwnerID,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if d := l.CoLivingDetails; d != nil {
		roommates := make([]RoommateSummary, 0, len(d.Roommates))
		for _, r := range d.Roommates {
			roommates = append(roommates, RoommateSummary{Name: r.Name, Age: r.Age, Gender: r.Gender})
		}
		s.CoLivingDetails = &CoLivingSummary{
			Roommates:    roommates,
			HouseRules:   nonNil(d.HouseRules),
			SharedSpaces: d.SharedSpaces,
			Schedule:     d.Schedule,
		}
	}
	return s
}

// Summaries projects a slice of listings.
func Summaries(listings []Listing) []ListingSummary {
	out := make([]ListingSummary, 0, len(listings))
	for i := range listings {
		out = append(out, listings[i].Summary())
	}
	return out
}

// ListingDetail is a single listing with its owner's public profile attached.
// Owner is nil when the owning account no longer resolves.
type ListingDetail struct {
	*Listing
	Owner *PublicProfile `json:"owner"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
