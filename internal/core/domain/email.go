package domain

import (
	"regexp"
	"strings"
)

// Accounts are restricted to the corporate mail domain
var corporateEmail = regexp.MustCompile(`^[^@\s]+@acme\.com$`)

// IsCorporateEmail reports whether the address belongs to the corporate domain
func IsCorporateEmail(email string) bool {
	return corporateEmail.MatchString(strings.ToLower(email))
}

// NormalizeEmail lowercases an address for case-insensitive comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
