package models

import (
	"strings"
	"time"

	"acme-accounts/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Identity & Credential Store
// ============================================================

// User represents the users table. The bcrypt hash and the lock flag never
// leave the persistence layer through JSON.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Lastname  string    `gorm:"size:100;not null" json:"lastname"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Roles     string    `gorm:"size:255;not null" json:"-"`
	Locked    bool      `gorm:"default:false" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// RoleSet parses the stored role column into a role set
func (u *User) RoleSet() domain.RoleSet {
	var rs domain.RoleSet
	for _, name := range strings.Split(u.Roles, ",") {
		if role, ok := domain.ParseRole(name); ok {
			rs = rs.Add(role)
		}
	}
	return rs
}

// SetRoles stores a role set in canonical comma-joined sorted form
func (u *User) SetRoles(rs domain.RoleSet) {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = string(r)
	}
	u.Roles = strings.Join(names, ",")
}

// HasRole checks whether the identity holds the given role
func (u *User) HasRole(role domain.Role) bool {
	return u.RoleSet().Has(role)
}

// UserResponse is the identity summary DTO
type UserResponse struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Lastname: u.Lastname,
		Email:    u.Email,
		Roles:    u.RoleSet().Authorities(),
	}
}

// ============================================================
// Audit Event Log
// ============================================================

// SecurityEvent represents the security_events table. Rows are append-only:
// nothing in the codebase updates or deletes them.
type SecurityEvent struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Date    time.Time `gorm:"not null" json:"date"`
	Action  string    `gorm:"size:30;not null;index" json:"action"`
	Subject string    `gorm:"size:100;not null" json:"subject"`
	Object  string    `gorm:"size:255;not null" json:"object"`
	Path    string    `gorm:"size:255;not null" json:"path"`
}

func (SecurityEvent) TableName() string {
	return "security_events"
}

// SecurityEventResponse is the audit record DTO
type SecurityEventResponse struct {
	ID      uint   `json:"id"`
	Date    string `json:"date"`
	Action  string `json:"action"`
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Path    string `json:"path"`
}

func (e *SecurityEvent) ToResponse() *SecurityEventResponse {
	return &SecurityEventResponse{
		ID:      e.ID,
		Date:    e.Date.Format("2006-01-02"),
		Action:  e.Action,
		Subject: e.Subject,
		Object:  e.Object,
		Path:    e.Path,
	}
}

// ============================================================
// Payroll
// ============================================================

// Payroll represents the payroll table. Period is stored as the first day of
// the month; salary is stored in cents. One record per (user, period).
type Payroll struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uint      `gorm:"uniqueIndex:idx_payroll_user_period;not null" json:"user_id"`
	Period time.Time `gorm:"uniqueIndex:idx_payroll_user_period;not null" json:"period"`
	Salary int64     `gorm:"not null" json:"salary"`
	User   User      `gorm:"foreignKey:UserID" json:"-"`
}

func (Payroll) TableName() string {
	return "payroll"
}

// PaymentResponse is the employee-facing payslip DTO
type PaymentResponse struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Period   string `json:"period"`
	Salary   string `json:"salary"`
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&SecurityEvent{},
		&Payroll{},
	)
}
