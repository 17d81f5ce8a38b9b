package repositories

import (
	"context"
	"time"

	"acme-accounts/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// payrollRepository implements PayrollRepository interface
type payrollRepository struct {
	db *gorm.DB
}

// NewPayrollRepository creates a new payroll repository
func NewPayrollRepository(db *gorm.DB) PayrollRepository {
	return &payrollRepository{db: db}
}

// CreateBatch inserts all records in one transaction, all-or-nothing
func (r *payrollRepository) CreateBatch(ctx context.Context, payrolls []*models.Payroll) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range payrolls {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByUserAndPeriod gets one payroll record for a user and period
func (r *payrollRepository) GetByUserAndPeriod(ctx context.Context, userID uint, period time.Time) (*models.Payroll, error) {
	var payroll models.Payroll
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period = ?", userID, period).
		First(&payroll).Error
	if err != nil {
		return nil, err
	}
	return &payroll, nil
}

// Update updates a payroll record
func (r *payrollRepository) Update(ctx context.Context, payroll *models.Payroll) error {
	return r.db.WithContext(ctx).Save(payroll).Error
}

// ListByUser lists a user's payroll records, newest period first
func (r *payrollRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Payroll, error) {
	var payrolls []*models.Payroll
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("period DESC").
		Find(&payrolls).Error
	if err != nil {
		return nil, err
	}
	return payrolls, nil
}
