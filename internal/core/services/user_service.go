package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"acme-accounts/internal/adapters/persistence/models"
	"acme-accounts/internal/adapters/persistence/repositories"
	"acme-accounts/internal/core/domain"
	"acme-accounts/internal/pkg/keymutex"
	"acme-accounts/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService is the account access facade: the sole entry point for
// identity-mutating use cases. Every mutation is serialized per identity,
// validated against the centralized role invariants and recorded in the
// audit log before the operation is reported as complete.
type UserService struct {
	userRepo repositories.UserRepository
	events   *SecurityEventService
	locks    *keymutex.KeyMutex
	signupMu sync.Mutex
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, events *SecurityEventService) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   events,
		locks:    keymutex.New(),
	}
}

// SignupInput represents signup input
type SignupInput struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Create registers a new identity. The very first identity ever created
// becomes ADMINISTRATOR, every subsequent one defaults to USER.
func (s *UserService) Create(ctx context.Context, input *SignupInput, path string) (*models.User, error) {
	email := domain.NormalizeEmail(input.Email)

	// The first-admin decision and the duplicate check must not interleave
	// with a concurrent signup, so creation is serialized process-wide.
	s.signupMu.Lock()
	defer s.signupMu.Unlock()

	// 1. Reject duplicate email (case-insensitive)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	// 2. Enforce password policy
	if err := password.Validate(input.Password); err != nil {
		return nil, err
	}

	// 3. First identity ever created becomes the administrator
	role := domain.RoleUser
	anyExists, err := s.userRepo.ExistsAny(ctx)
	if err != nil {
		return nil, err
	}
	if !anyExists {
		role = domain.RoleAdministrator
	}

	// 4. Hash credential and persist
	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     input.Name,
		Lastname: input.Lastname,
		Email:    email,
		Password: hash,
	}
	user.SetRoles(domain.NewRoleSet(role))
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Record the outcome. Self-service signup has no authenticated actor.
	if err := s.events.Record(ctx, domain.ActionCreateUser, domain.SubjectAnonymous, user.Email, path); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s [%s]", user.Email, role)
	return user, nil
}

// Delete removes an identity. An identity holding ADMINISTRATOR cannot be
// deleted while holding that role.
func (s *UserService) Delete(ctx context.Context, email, actor, path string) error {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.HasRole(domain.RoleAdministrator) {
		return domain.ErrAdminRoleImmutable
	}

	if err := s.userRepo.Delete(ctx, user); err != nil {
		return err
	}
	if err := s.events.Record(ctx, domain.ActionDeleteUser, actor, user.Email, path); err != nil {
		return err
	}

	log.Printf("✅ User deleted: %s", user.Email)
	return nil
}

// ChangePassword updates the identity's own credential after running the
// password-change policy against the currently stored hash.
func (s *UserService) ChangePassword(ctx context.Context, email, newPassword, path string) error {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := password.ValidateChange(newPassword, user.Password); err != nil {
		return err
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.events.Record(ctx, domain.ActionChangePassword, user.Email, user.Email, path)
}

// GrantRole adds a role to an identity, preserving the administrative
// exclusivity invariant.
func (s *UserService) GrantRole(ctx context.Context, email, roleName, actor, path string) (*models.User, error) {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return nil, domain.ErrRoleNotFound
	}

	roles := user.RoleSet()
	if roles.Has(domain.RoleAdministrator) != role.IsAdministrative() {
		return nil, domain.ErrRoleCombination
	}
	roles = roles.Add(role)
	if err := domain.ValidateRoleSet(roles); err != nil {
		return nil, err
	}

	user.SetRoles(roles)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	object := fmt.Sprintf("Grant role %s to %s", role, user.Email)
	if err := s.events.Record(ctx, domain.ActionGrantRole, actor, object, path); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveRole removes a role from an identity. The administrative role can
// never be removed and the set can never become empty.
func (s *UserService) RemoveRole(ctx context.Context, email, roleName, actor, path string) (*models.User, error) {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(roleName)
	if !ok {
		return nil, domain.ErrRoleNotFound
	}

	roles := user.RoleSet()
	if !roles.Has(role) {
		return nil, domain.ErrRoleNotAssigned
	}
	if role.IsAdministrative() {
		return nil, domain.ErrAdminRoleImmutable
	}
	roles = roles.Remove(role)
	if err := domain.ValidateRoleSet(roles); err != nil {
		return nil, err
	}

	user.SetRoles(roles)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	object := fmt.Sprintf("Remove role %s from %s", role, user.Email)
	if err := s.events.Record(ctx, domain.ActionRemoveRole, actor, object, path); err != nil {
		return nil, err
	}
	return user, nil
}

// Lock locks an identity out. The administrator can never be locked, so the
// system always stays operable. An empty actor marks the automated
// brute-force path: the event is then attributed to the locked identity
// itself. Locking is idempotent.
func (s *UserService) Lock(ctx context.Context, email, actor, path string) (*models.User, error) {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.HasRole(domain.RoleAdministrator) {
		return nil, domain.ErrCantLockAdministrator
	}

	user.Locked = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	subject := actor
	if subject == "" {
		subject = user.Email
	}
	object := fmt.Sprintf("Lock user %s", user.Email)
	if err := s.events.Record(ctx, domain.ActionLockUser, subject, object, path); err != nil {
		return nil, err
	}

	log.Printf("🔒 User locked: %s", user.Email)
	return user, nil
}

// Unlock restores access for a locked identity
func (s *UserService) Unlock(ctx context.Context, email, actor, path string) (*models.User, error) {
	email = domain.NormalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	user.Locked = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	object := fmt.Sprintf("Unlock user %s", user.Email)
	if err := s.events.Record(ctx, domain.ActionUnlockUser, actor, object, path); err != nil {
		return nil, err
	}

	log.Printf("🔓 User unlocked: %s", user.Email)
	return user, nil
}

// ListAll returns identity summaries ordered by creation
func (s *UserService) ListAll(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

// GetByEmail resolves an identity by its normalized email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmail(ctx, domain.NormalizeEmail(email))
}

func (s *UserService) getByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
