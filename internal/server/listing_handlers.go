package server

import (
	"coliver/internal/listingquery"
	"coliver/internal/service"

	"github.com/gofiber/fiber/v2"
)

// BrowseListings handles GET /api/listings
// @Summary Browse listings
// @Description Filter and sort listings. Tag filters match listings carrying every requested tag.
// @Tags listings
// @Produce json
// @Param query query string false "Case-insensitive text in street or description"
// @Param city query string false "City substring"
// @Param street query string false "Street substring"
// @Param priceMin query number false "Minimum price"
// @Param priceMax query number false "Maximum price"
// @Param floorMin query number false "Minimum floor"
// @Param floorMax query number false "Maximum floor"
// @Param capacity query int false "Exact capacity; 3 means three or more"
// @Param preferences query []string false "Required preferences" collectionFormat(multi)
// @Param amenities query []string false "Required amenities" collectionFormat(multi)
// @Param currency query string false "USD, EUR or UAH"
// @Param sorting query string false "price-asc, price-desc, date-newest or date-oldest"
// @Success 200 {array} models.ListingSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /listings [get]
func (s *Server) BrowseListings(c *fiber.Ctx) error {
	filter, err := listingquery.ParseFilter(queryValues(c))
	if err != nil {
		return respondError(c, err)
	}

	listings, err := s.searchService.Browse(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listings)
}

// GetRecentListings handles GET /api/listings/recent
// @Summary Newest listings
// @Tags listings
// @Produce json
// @Param limit query int false "Number of listings (default 4, max 20)"
// @Success 200 {array} models.ListingSummary
// @Router /listings/recent [get]
func (s *Server) GetRecentListings(c *fiber.Ctx) error {
	listings, err := s.searchService.Recent(c.UserContext(), c.QueryInt("limit", service.DefaultRecentLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listings)
}

// GetListing handles GET /api/listings/:id
// @Summary Listing detail
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} models.ListingDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /listings/{id} [get]
func (s *Server) GetListing(c *fiber.Ctx) error {
	detail, err := s.listingService.FetchOne(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// CreateListing handles POST /api/listings
// @Summary Create listing
// @Description Photos may be hosted URLs or data URIs; the address is geocoded.
// @Tags listings
// @Accept json
// @Produce json
// @Param request body service.ListingInput true "Listing"
// @Success 201 {object} models.ListingSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /listings [post]
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var req service.ListingInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	listing, err := s.listingService.Create(c.UserContext(), req, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing.Summary())
}

// UpdateListing handles PUT /api/listings/:id
// @Summary Update listing
// @Tags listings
// @Accept json
// @Produce json
// @Param id path string true "Listing ID"
// @Param request body service.ListingInput true "Listing"
// @Success 200 {object} models.ListingSummary
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /listings/{id} [put]
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	var req service.ListingInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	listing, err := s.listingService.Update(c.UserContext(), c.Params("id"), req, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listing.Summary())
}

// DeleteListing handles DELETE /api/listings/:id
// @Summary Delete listing
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /listings/{id} [delete]
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	if err := s.listingService.Delete(c.UserContext(), c.Params("id"), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

// SaveListing handles POST /api/listings/:id/save
// @Summary Save listing
// @Tags favorites
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} object{message=string,listingId=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /listings/{id}/save [post]
func (s *Server) SaveListing(c *fiber.Ctx) error {
	id := c.Params("id")
	msg, err := s.favoritesService.Save(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "listingId": id})
}

// UnsaveListing handles DELETE /api/listings/:id/save
// @Summary Unsave listing
// @Tags favorites
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} object{message=string,listingId=string}
// @Security BearerAuth
// @Router /listings/{id}/save [delete]
func (s *Server) UnsaveListing(c *fiber.Ctx) error {
	id := c.Params("id")
	msg, err := s.favoritesService.Unsave(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "listingId": id})
}
