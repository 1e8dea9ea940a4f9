package service

import (
	"context"

	"coliver/internal/listingquery"
	"coliver/internal/models"
	"coliver/internal/repository"
)

const (
	DefaultRecentLimit = 4
	MaxRecentLimit     = 20
)

// SearchService answers browse queries. It never writes.
type SearchService struct {
	listings repository.ListingRepository
}

func NewSearchService(listings repository.ListingRepository) *SearchService {
	return &SearchService{listings: listings}
}

// Browse returns every listing matching f in f's sort order. Results are not paginated.
func (s *SearchService) Browse(ctx context.Context, f listingquery.Filter) ([]models.ListingSummary, error) {
	listings, err := s.listings.Find(ctx, listingquery.Build(f), 0)
	if err != nil {
		return nil, err
	}
	return models.Summaries(listings), nil
}

// Recent returns the newest listings. limit is clamped to [1, MaxRecentLimit];
// zero or negative selects DefaultRecentLimit.
func (s *SearchService) Recent(ctx context.Context, limit int) ([]models.ListingSummary, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	listings, err := s.listings.Find(ctx, listingquery.Newest(), limit)
	if err != nil {
		return nil, err
	}
	return models.Summaries(listings), nil
}
