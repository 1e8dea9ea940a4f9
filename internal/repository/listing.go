package repository

import (
	"context"
	"errors"

	"coliver/internal/listingquery"
	"coliver/internal/models"
	"coliver/internal/observability"

	"gorm.io/gorm"
)

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a GORM-backed ListingRepository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(listing).Error; err != nil {
			return err
		}
		return replaceTags(tx, listing)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(listing).Error; err != nil {
			return err
		}
		return replaceTags(tx, listing)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// replaceTags mirrors the listing's tag lists into listing_tags.
func replaceTags(tx *gorm.DB, listing *models.Listing) error {
	if err := tx.Where("listing_id = ?", listing.ID).Delete(&models.ListingTag{}).Error; err != nil {
		return err
	}
	tags := listing.Tags()
	if len(tags) == 0 {
		return nil
	}
	return tx.Create(&tags).Error
}

func (r *listingRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, r.db.Dialector.Name(), "delete", "listings")
	defer func() { observability.EndSpan(span, err) }()

	var deleted int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.SavedListing{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Listing{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if deleted == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	return nil
}

func (r *listingRepository) Find(ctx context.Context, p listingquery.Predicate, limit int) (listings []models.Listing, err error) {
	ctx, span := observability.StartStoreSpan(ctx, r.db.Dialector.Name(), "find", "listings")
	defer func() { observability.EndSpan(span, err) }()

	q := r.db.WithContext(ctx).Model(&models.Listing{}).Scopes(p.GormScope())
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&listings).Error; err != nil {
		return nil, models.NewQueryFailedError(err)
	}
	return listings, nil
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	var listings []models.Listing
	if len(ids) == 0 {
		return listings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
