package handlers

import (
	"errors"
	"strings"

	"acme-accounts/internal/adapters/http/middleware"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/core/services"
	"acme-accounts/internal/pkg/password"
	"acme-accounts/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles signup and password change endpoints
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// Signup handles self-service user registration
// @Summary Sign up
// @Description Register a new account; the first account ever created becomes the administrator
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.SignupInput true "Signup data"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if strings.TrimSpace(req.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}
	if strings.TrimSpace(req.Lastname) == "" {
		return response.BadRequest(c, "Lastname is required")
	}
	if !domain.IsCorporateEmail(req.Email) {
		return response.BadRequest(c, "Email must belong to the acme.com domain")
	}

	user, err := h.userService.Create(c.Context(), &req, c.Path())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists),
			errors.Is(err, password.ErrTooShort),
			errors.Is(err, password.ErrBreached):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return c.JSON(user.ToResponse())
}

// ChangePassword handles password change for the authenticated identity
// @Summary Change own password
// @Description Update the authenticated account's password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "New password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /auth/changepass [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.Context(), user.Email, req.NewPassword, c.Path()); err != nil {
		switch {
		case errors.Is(err, password.ErrTooShort),
			errors.Is(err, password.ErrBreached),
			errors.Is(err, password.ErrReused):
			return response.BadRequest(c, err.Error())
		default:
			return response.InternalServerError(c, "Failed to change password")
		}
	}

	return c.JSON(fiber.Map{
		"email":  user.Email,
		"status": "The password has been updated successfully",
	})
}
