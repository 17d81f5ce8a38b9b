package handlers

import (
	"acme-accounts/internal/core/services"
	"acme-accounts/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SecurityHandler exposes the audit event log to auditors
type SecurityHandler struct {
	eventService *services.SecurityEventService
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(eventService *services.SecurityEventService) *SecurityHandler {
	return &SecurityHandler{eventService: eventService}
}

// ListEvents lists all security events in creation order
// @Summary List security events
// @Tags Security
// @Produce json
// @Success 200 {array} models.SecurityEventResponse
// @Security BasicAuth
// @Router /security/events/ [get]
func (h *SecurityHandler) ListEvents(c *fiber.Ctx) error {
	events, err := h.eventService.ListAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list security events")
	}
	return c.JSON(events)
}
