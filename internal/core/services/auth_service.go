package services

import (
	"context"
	"errors"
	"log"

	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/adapters/persistence/repositories"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService verifies the stateless per-request credential and feeds the
// brute-force guard. Every failed attempt is recorded; the fifth consecutive
// failure escalates to an automated lockout.
type AuthService struct {
	userRepo repositories.UserRepository
	users    *UserService
	events   *SecurityEventService
	guard    *BruteForceGuard
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	users *UserService,
	events *SecurityEventService,
	guard *BruteForceGuard,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		users:    users,
		events:   events,
		guard:    guard,
	}
}

// Authenticate checks an email/password credential for one request.
// A locked account is rejected before the credential is inspected, so a
// locked-out identity cannot keep producing LOGIN_FAILED events.
func (s *AuthService) Authenticate(ctx context.Context, email, plain, path string) (*models.User, error) {
	key := domain.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown identifiers still count toward the guard: an attacker
			// probing addresses looks the same as one probing passwords.
			if ferr := s.registerFailure(ctx, key, path); ferr != nil {
				return nil, ferr
			}
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Locked {
		return nil, domain.ErrAccountLocked
	}

	if !password.Verify(plain, user.Password) {
		if ferr := s.registerFailure(ctx, user.Email, path); ferr != nil {
			return nil, ferr
		}
		return nil, domain.ErrInvalidCredentials
	}

	s.guard.Reset(user.Email)
	return user, nil
}

// registerFailure records LOGIN_FAILED, advances the guard and escalates to
// lockout once the threshold is reached. The lockout attempt against an
// administrator is refused and discarded here: the system must stay operable.
func (s *AuthService) registerFailure(ctx context.Context, email, path string) error {
	if err := s.events.Record(ctx, domain.ActionLoginFailed, email, path, path); err != nil {
		return err
	}
	if s.guard.RecordFailure(email) < BruteForceThreshold {
		return nil
	}

	if err := s.events.Record(ctx, domain.ActionBruteForce, email, path, path); err != nil {
		return err
	}
	if _, err := s.users.Lock(ctx, email, "", path); err != nil {
		switch {
		case errors.Is(err, domain.ErrCantLockAdministrator):
			// intentional: never lock the administrator out
		case errors.Is(err, domain.ErrUserNotFound):
			// nothing to lock for an unknown identifier
		default:
			return err
		}
		log.Printf("⚠️ Brute-force lockout skipped for %s: %v", email, err)
	}
	return nil
}
