package repositories

import (
	"context"
	"time"

	"acme-accounts/internal/adapters/persistence/models"
)

// UserRepository defines the credential store interface.
// Emails are normalized to lowercase before they reach this layer.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsAny(ctx context.Context) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, user *models.User) error
	ListAll(ctx context.Context) ([]*models.User, error)
}

// SecurityEventRepository defines the append-only audit log interface
type SecurityEventRepository interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
	ListAll(ctx context.Context) ([]*models.SecurityEvent, error)
}

// PayrollRepository defines the payroll ledger interface
type PayrollRepository interface {
	CreateBatch(ctx context.Context, payrolls []*models.Payroll) error
	GetByUserAndPeriod(ctx context.Context, userID uint, period time.Time) (*models.Payroll, error)
	Update(ctx context.Context, payroll *models.Payroll) error
	ListByUser(ctx context.Context, userID uint) ([]*models.Payroll, error)
}
