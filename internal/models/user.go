// Package models contains the domain records shared by the stores, services and handlers.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Password holds the bcrypt hash and never leaves the service layer.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FullName     string    `gorm:"not null" json:"fullName"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	PhoneNumber  string    `gorm:"not null" json:"phoneNumber"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not pick an ID.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicProfile is the subset of a user that other users may see.
type PublicProfile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips the credential hash and bookkeeping fields.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		Bio:          u.Bio,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// SavedListing is one entry of a user's saved set. The composite key keeps the set duplicate free.
type SavedListing struct {
	UserID    string `gorm:"primaryKey;size:36"`
	ListingID string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}
