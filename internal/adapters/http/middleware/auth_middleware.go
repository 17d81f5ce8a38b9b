package middleware

import (
	"encoding/base64"
	"errors"
	"strings"

	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/core/services"
	"acme-accounts/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// userKey is the fiber locals key holding the authenticated identity
const userKey = "user"

// BasicAuth creates the authentication middleware. The system is stateless:
// every request carries its own Basic credential and is verified in full.
func BasicAuth(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Parse the Basic credential
		email, plain, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		// 2. Verify it against the credential store
		user, err := authService.Authenticate(c.Context(), email, plain, c.Path())
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrAccountLocked):
				return response.Unauthorized(c, domain.ErrAccountLocked.Error())
			case errors.Is(err, domain.ErrInvalidCredentials):
				return response.Unauthorized(c, domain.ErrInvalidCredentials.Error())
			default:
				return response.InternalServerError(c, "Authentication failed")
			}
		}

		// 3. Expose the identity to handlers
		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireRoles creates role-based authorization middleware. A denial is
// audited as ACCESS_DENIED attributed to the authenticated actor.
func RequireRoles(events *services.SecurityEventService, allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		if user.RoleSet().HasAny(allowed...) {
			return c.Next()
		}

		if err := events.Record(c.Context(), domain.ActionAccessDenied, user.Email, c.Path(), c.Path()); err != nil {
			return response.InternalServerError(c, "Failed to record security event")
		}
		return response.Forbidden(c, "Access Denied!")
	}
}

// CurrentUser returns the authenticated identity set by BasicAuth, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// parseBasicAuth decodes an "Authorization: Basic ..." header value
func parseBasicAuth(header string) (email, plain string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return "", "", false
	}
	email, plain, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return "", "", false
	}
	return email, plain, true
}
