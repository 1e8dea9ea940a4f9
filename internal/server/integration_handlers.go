package server

import (
	"errors"
	"log/slog"
	"strings"

	"coliver/internal/middleware"
	"coliver/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/upload
// @Summary Upload an image
// @Description Accepts a data URI or bare base64 payload (png, jpeg, gif, webp).
// @Tags uploads
// @Accept json
// @Produce json
// @Param request body object{image=string} true "Image payload"
// @Success 200 {object} object{success=bool,url=string}
// @Failure 400 {object} object{success=bool,message=string}
// @Failure 502 {object} object{success=bool,message=string}
// @Security BearerAuth
// @Router /upload [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	var req struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No image provided",
		})
	}

	url, err := s.photos.Upload(c.UserContext(), req.Image)
	if err != nil {
		status := models.StatusFor(err)
		message := "Upload failed"
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		if status >= fiber.StatusInternalServerError {
			middleware.Logger.ErrorContext(c.UserContext(), "Image upload failed",
				slog.String("error", err.Error()),
			)
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
	return c.JSON(fiber.Map{"success": true, "url": url})
}

// Geocode handles POST /api/geocode
// @Summary Geocode an address
// @Tags geocode
// @Accept json
// @Produce json
// @Param request body object{city=string,street=string} true "Address"
// @Success 200 {object} object{latitude=number,longitude=number}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /geocode [post]
func (s *Server) Geocode(c *fiber.Ctx) error {
	var req struct {
		City   string `json:"city"`
		Street string `json:"street"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	req.City = strings.TrimSpace(req.City)
	req.Street = strings.TrimSpace(req.Street)
	if req.City == "" || req.Street == "" {
		return respondError(c, models.NewValidationError("City and street are required"))
	}

	coords, err := s.geocoder.Geocode(c.UserContext(), req.City, req.Street)
	if err != nil {
		return respondError(c, err)
	}
	if coords == nil {
		return respondError(c, &models.AppError{
			Code:    models.CodeNotFound,
			Message: "Could not find coordinates for this address",
		})
	}
	return c.JSON(fiber.Map{"latitude": coords.Lat, "longitude": coords.Lng})
}

// GetCatalog handles GET /api/catalog
// @Summary Preference and amenity tags
// @Tags catalog
// @Produce json
// @Success 200 {object} object{preferences=[]string,amenities=[]string}
// @Router /catalog [get]
func (s *Server) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(s.catalog)
}
