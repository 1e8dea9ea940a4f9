package server

import (
	"time"

	"coliver/internal/models"
	"coliver/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthResponse is returned by register and login. The token is also set as the session cookie.
type AuthResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      models.PublicProfile `json:"user"`
}

func (s *Server) startSession(c *fiber.Ctx, status int, sess *service.Session) error {
	s.setSessionCookie(c, sess)
	return c.Status(status).JSON(AuthResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User.Public(),
	})
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	sess, err := s.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return s.startSession(c, fiber.StatusCreated, sess)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate with email and password. Failures name the offending field.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	sess, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.startSession(c, fiber.StatusOK, sess)
}

// CheckSession handles GET /api/auth/session
// @Summary Current session
// @Description Reports the signed-in user. A missing or invalid session is not an error.
// @Tags auth
// @Produce json
// @Success 200 {object} service.SessionState
// @Router /auth/session [get]
func (s *Server) CheckSession(c *fiber.Ctx) error {
	state, err := s.authService.CheckSession(c.UserContext(), sessionToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	s.authService.Logout(c.UserContext(), sessionToken(c))
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}
