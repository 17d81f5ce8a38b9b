package services

import (
	"context"
	"fmt"
	"time"

	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/adapters/persistence/repositories"
	"acme-accounts/internal/core/domain"
)

// SecurityEventService is the audit event log. Recording is a direct
// synchronous call: the triggering operation is not complete until the event
// row is durable, and a failed write propagates as an error instead of being
// reported as success.
type SecurityEventService struct {
	eventRepo repositories.SecurityEventRepository
}

// NewSecurityEventService creates a new security event service
func NewSecurityEventService(eventRepo repositories.SecurityEventRepository) *SecurityEventService {
	return &SecurityEventService{eventRepo: eventRepo}
}

// Record appends one audit event. Subject is the acting principal
// (domain.SubjectAnonymous when unauthenticated), object describes the
// affected resource, path is the originating request path.
func (s *SecurityEventService) Record(ctx context.Context, action domain.Action, subject, object, path string) error {
	event := &models.SecurityEvent{
		Date:    time.Now(),
		Action:  string(action),
		Subject: subject,
		Object:  object,
		Path:    path,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("record security event %s: %w", action, err)
	}
	return nil
}

// ListAll returns every recorded event in creation order
func (s *SecurityEventService) ListAll(ctx context.Context) ([]*models.SecurityEventResponse, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]*models.SecurityEventResponse, len(events))
	for i, e := range events {
		responses[i] = e.ToResponse()
	}
	return responses, nil
}
