// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"coliver/internal/listingquery"
	"coliver/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and their saved listings.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns nil, nil when no account uses the address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SavedListingIDs(ctx context.Context, userID string) ([]string, error)
	// AddSavedListing and RemoveSavedListing are idempotent.
	AddSavedListing(ctx context.Context, userID, listingID string) error
	RemoveSavedListing(ctx context.Context, userID, listingID string) error
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	// Delete removes the listing and drops it from every user's saved set.
	Delete(ctx context.Context, id string) error
	// Find returns listings matching p in p's order; limit <= 0 means no limit.
	Find(ctx context.Context, p listingquery.Predicate, limit int) ([]models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Listing, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
