package server

import (
	"coliver/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
// @Summary Public profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetPublicProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserListings handles GET /api/users/:id/listings
// @Summary Listings owned by a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.ListingSummary
// @Router /users/{id}/listings [get]
func (s *Server) GetUserListings(c *fiber.Ctx) error {
	listings, err := s.listingService.FetchByOwner(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listings)
}

// GetSavedListings handles GET /api/users/me/saved
// @Summary Saved listings of the current user
// @Tags favorites
// @Produce json
// @Success 200 {array} models.ListingSummary
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/saved [get]
func (s *Server) GetSavedListings(c *fiber.Ctx) error {
	listings, err := s.favoritesService.ListSaved(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listings)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile"
// @Success 200 {object} models.PublicProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	profile, err := s.profileService.UpdateProfile(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
