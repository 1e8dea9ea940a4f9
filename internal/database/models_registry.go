package database

import "coliver/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.SavedListing{},
		&models.Listing{},
		&models.ListingTag{},
	}
}
