package handlers

import (
	"errors"

	"acme-accounts/internal/adapters/http/middleware"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/core/services"
	"acme-accounts/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PayrollHandler handles accountant payroll uploads and employee payslips
type PayrollHandler struct {
	payrollService *services.PayrollService
}

// NewPayrollHandler creates a new payroll handler
func NewPayrollHandler(payrollService *services.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

// UploadPayrolls uploads a batch of payroll records
// @Summary Upload payrolls
// @Description Insert a batch of payroll records, all-or-nothing
// @Tags Payroll
// @Accept json
// @Produce json
// @Param body body []services.PayrollInput true "Payroll records"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /acct/payments [post]
func (h *PayrollHandler) UploadPayrolls(c *fiber.Ctx) error {
	var inputs []*services.PayrollInput
	if err := c.BodyParser(&inputs); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	for _, input := range inputs {
		if !domain.IsCorporateEmail(input.Employee) {
			return response.BadRequest(c, "Email must belong to the acme.com domain")
		}
	}

	if err := h.payrollService.AddPayrolls(c.Context(), inputs); err != nil {
		return h.mapPayrollError(c, err)
	}

	return c.JSON(fiber.Map{"status": "Added successfully!"})
}

// UpdateSalary updates one payroll record
// @Summary Update salary
// @Tags Payroll
// @Accept json
// @Produce json
// @Param body body services.PayrollInput true "Payroll record"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /acct/payments [put]
func (h *PayrollHandler) UpdateSalary(c *fiber.Ctx) error {
	var input services.PayrollInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !domain.IsCorporateEmail(input.Employee) {
		return response.BadRequest(c, "Email must belong to the acme.com domain")
	}

	if err := h.payrollService.UpdateSalary(c.Context(), &input); err != nil {
		return h.mapPayrollError(c, err)
	}

	return c.JSON(fiber.Map{"status": "Updated successfully!"})
}

// GetPayment returns the authenticated identity's payslip(s)
// @Summary Get own payroll
// @Description One payslip for ?period=MM-yyyy, or all payslips newest first
// @Tags Payroll
// @Produce json
// @Param period query string false "Period MM-yyyy"
// @Success 200 {object} models.PaymentResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security BasicAuth
// @Router /empl/payment [get]
func (h *PayrollHandler) GetPayment(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	periodParam := c.Query("period")
	if periodParam == "" {
		payments, err := h.payrollService.ListPayments(c.Context(), user)
		if err != nil {
			return response.InternalServerError(c, "Failed to list payments")
		}
		return c.JSON(payments)
	}

	period, err := services.ParsePeriod(periodParam)
	if err != nil {
		return response.BadRequest(c, domain.ErrInvalidPeriod.Error())
	}

	payment, err := h.payrollService.GetPayment(c.Context(), user, period)
	if err != nil {
		return h.mapPayrollError(c, err)
	}
	return c.JSON(payment)
}

// mapPayrollError maps payroll errors onto the status taxonomy
func (h *PayrollHandler) mapPayrollError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmployeeNotFound),
		errors.Is(err, domain.ErrPayrollNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrPayrollExists),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidSalary):
		return response.BadRequest(c, err.Error())
	default:
		return response.InternalServerError(c, "Operation failed")
	}
}
