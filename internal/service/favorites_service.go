package service

import (
	"context"

	"coliver/internal/models"
	"coliver/internal/observability"
	"coliver/internal/repository"
)

const (
	MsgListingSaved   = "Listing saved"
	MsgListingUnsaved = "Listing removed from saved"
)

type FavoritesService struct {
	users    repository.UserRepository
	listings repository.ListingRepository
}

func NewFavoritesService(users repository.UserRepository, listings repository.ListingRepository) *FavoritesService {
	return &FavoritesService{users: users, listings: listings}
}

// Save adds an existing listing to the user's saved set. Saving twice is a no-op.
func (s *FavoritesService) Save(ctx context.Context, listingID, userID string) (string, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return "", err
	}
	if err := s.users.AddSavedListing(ctx, userID, listingID); err != nil {
		return "", err
	}
	observability.FavoriteToggles.WithLabelValues("save").Inc()
	return MsgListingSaved, nil
}

// Unsave removes the listing from the user's saved set. Absent entries are not an error.
func (s *FavoritesService) Unsave(ctx context.Context, listingID, userID string) (string, error) {
	if err := s.users.RemoveSavedListing(ctx, userID, listingID); err != nil {
		return "", err
	}
	observability.FavoriteToggles.WithLabelValues("unsave").Inc()
	return MsgListingUnsaved, nil
}

// ListSaved returns the user's saved listings in the order they were saved.
func (s *FavoritesService) ListSaved(ctx context.Context, userID string) ([]models.ListingSummary, error) {
	ids, err := s.users.SavedListingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	listings, err := s.listings.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Listing, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}
	out := make([]models.ListingSummary, 0, len(listings))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			out = append(out, l.Summary())
		}
	}
	return out, nil
}
