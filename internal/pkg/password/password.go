package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 12
)

// Policy violations. Messages surface verbatim in API responses.
var (
	ErrTooShort = errors.New("Password length must be 12 chars minimum!")
	ErrBreached = errors.New("The password is in the hacker's database!")
	ErrReused   = errors.New("The passwords must be different!")
)

// breachedPasswords is the fixed denylist of known-breached passwords
var breachedPasswords = map[string]struct{}{
	"PasswordForJanuary":   {},
	"PasswordForFebruary":  {},
	"PasswordForMarch":     {},
	"PasswordForApril":     {},
	"PasswordForMay":       {},
	"PasswordForJune":      {},
	"PasswordForJuly":      {},
	"PasswordForAugust":    {},
	"PasswordForSeptember": {},
	"PasswordForOctober":   {},
	"PasswordForNovember":  {},
	"PasswordForDecember":  {},
}

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Validate checks a candidate password against the static policy rules.
// Rules apply in order, first failure wins.
func Validate(candidate string) error {
	if len(candidate) < MinLength {
		return ErrTooShort
	}
	if _, breached := breachedPasswords[candidate]; breached {
		return ErrBreached
	}
	return nil
}

// ValidateChange checks a candidate password for a password change.
// The candidate must not match the currently stored hash.
func ValidateChange(candidate, currentHash string) error {
	if Verify(candidate, currentHash) {
		return ErrReused
	}
	return Validate(candidate)
}
