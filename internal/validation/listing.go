package validation

import (
	"fmt"
	"math"
	"strings"

	"coliver/internal/models"
)

const (
	MaxTitleLength = 120
	MaxPhotos      = 20
)

// Listing checks a listing's client supplied attributes and returns one message per invalid field.
// Field names follow the JSON keys, with roommate problems reported as coLivingDetails.roommates[i].
func Listing(l *models.Listing) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(l.Title) == "" {
		errs["title"] = "title is required"
	} else if len(l.Title) > MaxTitleLength {
		errs["title"] = fmt.Sprintf("title must not exceed %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(l.City) == "" {
		errs["city"] = "city is required"
	}
	if strings.TrimSpace(l.Street) == "" {
		errs["street"] = "street is required"
	}
	if strings.TrimSpace(l.Description) == "" {
		errs["description"] = "description is required"
	}
	if l.Price < 0 || math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
		errs["price"] = "price must be a non-negative number"
	}
	if !l.Currency.Valid() {
		errs["currency"] = "currency must be one of USD, EUR, UAH"
	}
	if l.Floor < 0 {
		errs["floor"] = "floor must be a non-negative integer"
	}
	if l.Capacity < 1 {
		errs["capacity"] = "capacity must be at least 1"
	}
	if len(l.Photos) > MaxPhotos {
		errs["photos"] = fmt.Sprintf("at most %d photos are allowed", MaxPhotos)
	}

	if d := l.CoLivingDetails; d != nil {
		for i, r := range d.Roommates {
			field := fmt.Sprintf("coLivingDetails.roommates[%d]", i)
			switch {
			case strings.TrimSpace(r.Name) == "":
				errs[field] = "roommate name is required"
			case r.Age < 0:
				errs[field] = "roommate age must be a non-negative integer"
			case !r.Gender.Valid():
				errs[field] = "roommate gender must be one of Male, Female, Other"
			}
		}
	}

	return errs
}
