package service

import (
	"context"
	"strings"
	"time"

	"coliver/internal/catalog"
	"coliver/internal/models"
	"coliver/internal/observability"
	"coliver/internal/repository"
	"coliver/internal/validation"
)

// Geocoder resolves an address; a nil result means no match.
type Geocoder interface {
	Geocode(ctx context.Context, city, street string) (*models.Coordinates, error)
}

// PhotoUploader hosts a data URI or base64 image and returns its URL.
type PhotoUploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

type ListingService struct {
	listings repository.ListingRepository
	users    repository.UserRepository
	geocoder Geocoder
	photos   PhotoUploader
	catalog  *catalog.Catalog
}

// ListingInput holds the client supplied attributes of a listing. Photos may
// mix hosted URLs with data URIs still to be uploaded.
type ListingInput struct {
	Title           string                  `json:"title"`
	City            string                  `json:"city"`
	Street          string                  `json:"street"`
	Price           float64                 `json:"price"`
	Currency        models.Currency         `json:"currency"`
	Floor           int                     `json:"floor"`
	Capacity        int                     `json:"capacity"`
	Description     string                  `json:"description"`
	Photos          []string                `json:"photos"`
	Preferences     []string                `json:"preferences"`
	Amenities       []string                `json:"amenities"`
	CoLivingDetails *models.CoLivingDetails `json:"coLivingDetails,omitempty"`
}

func NewListingService(
	listings repository.ListingRepository,
	users repository.UserRepository,
	geocoder Geocoder,
	photos PhotoUploader,
	tags *catalog.Catalog,
) *ListingService {
	return &ListingService{
		listings: listings,
		users:    users,
		geocoder: geocoder,
		photos:   photos,
		catalog:  tags,
	}
}

// apply copies the mutable attributes of in onto l.
func (in ListingInput) apply(l *models.Listing) {
	l.Title = strings.TrimSpace(in.Title)
	l.City = strings.TrimSpace(in.City)
	l.Street = strings.TrimSpace(in.Street)
	l.Price = in.Price
	l.Currency = models.Currency(strings.ToUpper(string(in.Currency)))
	l.Floor = in.Floor
	l.Capacity = in.Capacity
	l.Description = strings.TrimSpace(in.Description)
	l.Photos = in.Photos
	l.Preferences = in.Preferences
	l.Amenities = in.Amenities
	l.CoLivingDetails = in.CoLivingDetails
}

func (s *ListingService) validate(l *models.Listing) error {
	errs := validation.Listing(l)
	if s.catalog != nil {
		if unknown := s.catalog.UnknownPreferences(l.Preferences); len(unknown) > 0 {
			errs["preferences"] = "unknown preferences: " + strings.Join(unknown, ", ")
		}
		if unknown := s.catalog.UnknownAmenities(l.Amenities); len(unknown) > 0 {
			errs["amenities"] = "unknown amenities: " + strings.Join(unknown, ", ")
		}
	}
	if len(errs) > 0 {
		return models.NewFieldsValidationError(errs)
	}
	return nil
}

// Create validates in, uploads pending photos, geocodes the address and stores
// the listing. No listing is written without coordinates.
func (s *ListingService) Create(ctx context.Context, in ListingInput, ownerID string) (*models.Listing, error) {
	listing := &models.Listing{OwnerID: ownerID}
	in.apply(listing)
	if err := s.validate(listing); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	photos, err := s.uploadPhotos(ctx, listing.Photos)
	if err != nil {
		return nil, err
	}
	listing.Photos = photos

	coords, err := s.locate(ctx, listing.City, listing.Street)
	if err != nil {
		return nil, err
	}
	listing.Coordinates = *coords

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	observability.ListingMutations.WithLabelValues("create").Inc()
	return listing, nil
}

// Update overwrites the mutable attributes of the listing owned by requesterID.
// The address is geocoded again only when city or street changed.
func (s *ListingService) Update(ctx context.Context, listingID string, in ListingInput, requesterID string) (*models.Listing, error) {
	listing, err := s.ownedListing(ctx, listingID, requesterID)
	if err != nil {
		return nil, err
	}

	prevCity, prevStreet := listing.City, listing.Street
	in.apply(listing)
	if err := s.validate(listing); err != nil {
		return nil, err
	}

	photos, err := s.uploadPhotos(ctx, listing.Photos)
	if err != nil {
		return nil, err
	}
	listing.Photos = photos

	if !strings.EqualFold(prevCity, listing.City) || !strings.EqualFold(prevStreet, listing.Street) {
		coords, err := s.locate(ctx, listing.City, listing.Street)
		if err != nil {
			return nil, err
		}
		listing.Coordinates = *coords
	}

	listing.UpdatedAt = time.Now()
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	observability.ListingMutations.WithLabelValues("update").Inc()
	return listing, nil
}

// Delete removes the listing owned by requesterID and drops it from every saved set.
func (s *ListingService) Delete(ctx context.Context, listingID, requesterID string) error {
	if _, err := s.ownedListing(ctx, listingID, requesterID); err != nil {
		return err
	}
	if err := s.listings.Delete(ctx, listingID); err != nil {
		return err
	}
	observability.ListingMutations.WithLabelValues("delete").Inc()
	return nil
}

// FetchOne returns the listing with its owner's public profile.
func (s *ListingService) FetchOne(ctx context.Context, listingID string) (*models.ListingDetail, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	detail := &models.ListingDetail{Listing: listing}
	owner, err := s.users.GetByID(ctx, listing.OwnerID)
	switch {
	case err == nil:
		profile := owner.Public()
		detail.Owner = &profile
	case !models.IsCode(err, models.CodeNotFound):
		return nil, err
	}
	return detail, nil
}

// FetchByOwner returns every listing owned by ownerID.
func (s *ListingService) FetchByOwner(ctx context.Context, ownerID string) ([]models.ListingSummary, error) {
	listings, err := s.listings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return models.Summaries(listings), nil
}

func (s *ListingService) ownedListing(ctx context.Context, listingID, requesterID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != requesterID {
		return nil, models.NewForbiddenError("You can only modify your own listings")
	}
	return listing, nil
}

func (s *ListingService) uploadPhotos(ctx context.Context, photos []string) ([]string, error) {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "http://") {
			out = append(out, p)
			continue
		}
		if s.photos == nil {
			return nil, models.NewFieldValidationError("photos", "Photo uploads are not available")
		}
		url, err := s.photos.Upload(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, nil
}

func (s *ListingService) locate(ctx context.Context, city, street string) (*models.Coordinates, error) {
	coords, err := s.geocoder.Geocode(ctx, city, street)
	if err != nil {
		if models.IsCode(err, models.CodeUpstream) {
			return nil, err
		}
		return nil, models.NewUpstreamError("geocoder", err)
	}
	if coords == nil {
		return nil, &models.AppError{
			Code:    models.CodeUpstream,
			Message: "Could not find coordinates for this address",
			Field:   "street",
		}
	}
	return coords, nil
}
