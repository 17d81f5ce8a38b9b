package handlers

import (
	"errors"
	"fmt"
	"strings"

	"acme-accounts/internal/adapters/http/middleware"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/core/services"
	"acme-accounts/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrative user management endpoints
type AdminHandler struct {
	userService *services.UserService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// SetRoleRequest represents role change request body
type SetRoleRequest struct {
	User      string `json:"user"`
	Role      string `json:"role"`
	Operation string `json:"operation"` // GRANT | REMOVE
}

// ChangeAccessRequest represents lock/unlock request body
type ChangeAccessRequest struct {
	User      string `json:"user"`
	Operation string `json:"operation"` // LOCK | UNLOCK
}

// ListUsers lists all identities
// @Summary List users
// @Description List all accounts with their sorted role names
// @Tags Admin
// @Produce json
// @Success 200 {array} models.UserResponse
// @Security BasicAuth
// @Router /admin/user/ [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return c.JSON(users)
}

// SetRole grants or removes a role
// @Summary Grant or remove a role
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body SetRoleRequest true "Role change"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /admin/user/role [put]
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var err error
	switch strings.ToUpper(req.Operation) {
	case "GRANT":
		granted, gerr := h.userService.GrantRole(c.Context(), req.User, req.Role, actor.Email, c.Path())
		if gerr == nil {
			return c.JSON(granted.ToResponse())
		}
		err = gerr
	case "REMOVE":
		removed, rerr := h.userService.RemoveRole(c.Context(), req.User, req.Role, actor.Email, c.Path())
		if rerr == nil {
			return c.JSON(removed.ToResponse())
		}
		err = rerr
	default:
		return response.BadRequest(c, "Invalid operation")
	}

	return h.mapUserError(c, err)
}

// DeleteUser deletes an identity by email
// @Summary Delete user
// @Tags Admin
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /admin/user/{email} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	email := c.Params("email")
	if !domain.IsCorporateEmail(email) {
		return response.BadRequest(c, "Email must belong to the acme.com domain")
	}

	if err := h.userService.Delete(c.Context(), email, actor.Email, c.Path()); err != nil {
		return h.mapUserError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":   domain.NormalizeEmail(email),
		"status": "Deleted successfully!",
	})
}

// ChangeAccess locks or unlocks an identity
// @Summary Lock or unlock user
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body ChangeAccessRequest true "Access change"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /admin/user/access [put]
func (h *AdminHandler) ChangeAccess(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)

	var req ChangeAccessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	switch strings.ToUpper(req.Operation) {
	case "LOCK":
		user, err := h.userService.Lock(c.Context(), req.User, actor.Email, c.Path())
		if err != nil {
			return h.mapUserError(c, err)
		}
		return c.JSON(fiber.Map{"status": fmt.Sprintf("User %s locked!", user.Email)})
	case "UNLOCK":
		user, err := h.userService.Unlock(c.Context(), req.User, actor.Email, c.Path())
		if err != nil {
			return h.mapUserError(c, err)
		}
		return c.JSON(fiber.Map{"status": fmt.Sprintf("User %s unlocked!", user.Email)})
	default:
		return response.BadRequest(c, "Invalid operation")
	}
}

// mapUserError maps facade errors onto the status taxonomy: unknown user or
// role is 404, invariant violations are 400
func (h *AdminHandler) mapUserError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRoleNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrRoleCombination),
		errors.Is(err, domain.ErrRoleNotAssigned),
		errors.Is(err, domain.ErrAdminRoleImmutable),
		errors.Is(err, domain.ErrLastRole),
		errors.Is(err, domain.ErrCantLockAdministrator):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Operation failed")
	}
}
