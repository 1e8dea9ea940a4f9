package service

import (
	"context"
	"strings"

	"coliver/internal/models"
	"coliver/internal/repository"
	"coliver/internal/validation"
)

type ProfileService struct {
	users  repository.UserRepository
	photos PhotoUploader
}

type UpdateProfileInput struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profileImage"`
}

func NewProfileService(users repository.UserRepository, photos PhotoUploader) *ProfileService {
	return &ProfileService{users: users, photos: photos}
}

func (s *ProfileService) GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}

// UpdateProfile replaces the user's editable fields. A data URI profile image is
// uploaded first; an empty one clears the avatar.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.PublicProfile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Bio = strings.TrimSpace(in.Bio)
	in.ProfileImage = strings.TrimSpace(in.ProfileImage)

	if errs := validation.Profile(in.FullName, in.Email, in.PhoneNumber, in.Bio); len(errs) > 0 {
		return nil, models.NewFieldsValidationError(errs)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	image := in.ProfileImage
	if image != "" && !strings.HasPrefix(image, "https://") && !strings.HasPrefix(image, "http://") {
		if s.photos == nil {
			return nil, models.NewFieldValidationError("profileImage", "Photo uploads are not available")
		}
		if image, err = s.photos.Upload(ctx, image); err != nil {
			return nil, err
		}
	}

	user.FullName = in.FullName
	user.Email = in.Email
	user.PhoneNumber = in.PhoneNumber
	user.Bio = in.Bio
	user.ProfileImage = image
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	profile := user.Public()
	return &profile, nil
}
