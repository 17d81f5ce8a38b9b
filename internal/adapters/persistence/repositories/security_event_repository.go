package repositories

import (
	"context"

	"acme-accounts/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// securityEventRepository implements SecurityEventRepository interface
type securityEventRepository struct {
	db *gorm.DB
}

// NewSecurityEventRepository creates a new security event repository
func NewSecurityEventRepository(db *gorm.DB) SecurityEventRepository {
	return &securityEventRepository{db: db}
}

// Create appends a new event. Events are never updated or deleted.
func (r *securityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListAll lists all events in creation order
func (r *securityEventRepository) ListAll(ctx context.Context) ([]*models.SecurityEvent, error) {
	var events []*models.SecurityEvent
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
