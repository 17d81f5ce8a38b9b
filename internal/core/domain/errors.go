package domain

import "errors"

// User errors. Messages are part of the API contract and surface verbatim.
var (
	ErrUserExists   = errors.New("User exist!")
	ErrUserNotFound = errors.New("User not found!")
)

// Role errors
var (
	ErrRoleNotFound       = errors.New("Role not found!")
	ErrRoleCombination    = errors.New("The user cannot combine administrative and business roles!")
	ErrRoleNotAssigned    = errors.New("The user does not have a role!")
	ErrAdminRoleImmutable = errors.New("Can't remove ADMINISTRATOR role!")
	ErrLastRole           = errors.New("The user must have at least one role!")
)

// Access errors
var (
	ErrCantLockAdministrator = errors.New("Can't lock the ADMINISTRATOR!")
	ErrAccountLocked         = errors.New("User account is locked!")
	ErrInvalidCredentials    = errors.New("Invalid email or password!")
)

// Payroll errors
var (
	ErrEmployeeNotFound = errors.New("Employee not found!")
	ErrPayrollExists    = errors.New("Payroll already exists!")
	ErrPayrollNotFound  = errors.New("Payroll not found!")
	ErrInvalidPeriod    = errors.New("Invalid period!")
	ErrInvalidSalary    = errors.New("Salary must be positive!")
)
