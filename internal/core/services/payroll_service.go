package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/adapters/persistence/repositories"
	"acme-accounts/internal/core/domain"

	"gorm.io/gorm"
)

// periodLayout is the wire format for payroll periods (MM-yyyy)
const periodLayout = "01-2006"

// PayrollService handles the payroll ledger. It consumes the account core
// only to resolve the identity a record belongs to.
type PayrollService struct {
	payrollRepo repositories.PayrollRepository
	userRepo    repositories.UserRepository
}

// NewPayrollService creates a new payroll service
func NewPayrollService(payrollRepo repositories.PayrollRepository, userRepo repositories.UserRepository) *PayrollService {
	return &PayrollService{
		payrollRepo: payrollRepo,
		userRepo:    userRepo,
	}
}

// PayrollInput represents one uploaded payroll record
type PayrollInput struct {
	Employee string `json:"employee"`
	Period   string `json:"period"`
	Salary   int64  `json:"salary"`
}

// ParsePeriod parses a MM-yyyy period into the first day of that month
func ParsePeriod(value string) (time.Time, error) {
	period, err := time.Parse(periodLayout, value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidPeriod
	}
	return period, nil
}

// AddPayrolls inserts a batch of payroll records, all-or-nothing.
// A duplicate (employee, period) pair, within the batch or against the
// store, rejects the whole upload.
func (s *PayrollService) AddPayrolls(ctx context.Context, inputs []*PayrollInput) error {
	seen := make(map[string]struct{}, len(inputs))
	payrolls := make([]*models.Payroll, 0, len(inputs))

	for _, input := range inputs {
		record, err := s.buildRecord(ctx, input)
		if err != nil {
			return err
		}

		key := fmt.Sprintf("%d|%s", record.UserID, record.Period.Format(periodLayout))
		if _, dup := seen[key]; dup {
			return domain.ErrPayrollExists
		}
		seen[key] = struct{}{}

		if _, err := s.payrollRepo.GetByUserAndPeriod(ctx, record.UserID, record.Period); err == nil {
			return domain.ErrPayrollExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		payrolls = append(payrolls, record)
	}

	return s.payrollRepo.CreateBatch(ctx, payrolls)
}

// UpdateSalary changes the salary of one existing payroll record
func (s *PayrollService) UpdateSalary(ctx context.Context, input *PayrollInput) error {
	record, err := s.buildRecord(ctx, input)
	if err != nil {
		return err
	}

	existing, err := s.payrollRepo.GetByUserAndPeriod(ctx, record.UserID, record.Period)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrPayrollNotFound
		}
		return err
	}

	existing.Salary = record.Salary
	return s.payrollRepo.Update(ctx, existing)
}

// GetPayment returns one payslip for the authenticated identity
func (s *PayrollService) GetPayment(ctx context.Context, user *models.User, period time.Time) (*models.PaymentResponse, error) {
	payroll, err := s.payrollRepo.GetByUserAndPeriod(ctx, user.ID, period)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPayrollNotFound
		}
		return nil, err
	}
	return paymentResponse(user, payroll), nil
}

// ListPayments returns all payslips for the authenticated identity,
// newest period first
func (s *PayrollService) ListPayments(ctx context.Context, user *models.User) ([]*models.PaymentResponse, error) {
	payrolls, err := s.payrollRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]*models.PaymentResponse, len(payrolls))
	for i, p := range payrolls {
		responses[i] = paymentResponse(user, p)
	}
	return responses, nil
}

// buildRecord validates one input and resolves its employee
func (s *PayrollService) buildRecord(ctx context.Context, input *PayrollInput) (*models.Payroll, error) {
	if input.Salary <= 0 {
		return nil, domain.ErrInvalidSalary
	}
	period, err := ParsePeriod(input.Period)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Employee))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}

	return &models.Payroll{
		UserID: user.ID,
		Period: period,
		Salary: input.Salary,
	}, nil
}

func paymentResponse(user *models.User, payroll *models.Payroll) *models.PaymentResponse {
	return &models.PaymentResponse{
		Name:     user.Name,
		Lastname: user.Lastname,
		Period:   payroll.Period.Format("January-2006"),
		Salary:   fmt.Sprintf("%d dollar(s) %d cent(s)", payroll.Salary/100, payroll.Salary%100),
	}
}
