package server

import (
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /register
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.authService.Register(c.Context(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user.Public())
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return s.fail(c, err)
	}

	s.setTokenCookie(c, token)
	return c.JSON(user.Public())
}

// Profile handles GET /profile; AuthRequired has already verified the token.
func (s *Server) Profile(c *fiber.Ctx) error {
	identity := service.Identity{
		UserID:   c.Locals("userID").(uint),
		Username: c.Locals("username").(string),
	}
	return c.JSON(identity)
}

// Logout handles POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearTokenCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (s *Server) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
		Path:     "/",
	})
}

func (s *Server) clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
		Path:     "/",
	})
}
