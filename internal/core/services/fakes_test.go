package services

import (
	"context"
	"sync"
	"time"

	"acme-accounts/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memUserRepo is an in-memory UserRepository used across service tests
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*models.User // keyed by normalized email
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func copyUser(u *models.User) *models.User {
	dup := *u
	return &dup
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = copyUser(user)
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyUser(user), nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func (r *memUserRepo) ExistsAny(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users) > 0, nil
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.Email] = copyUser(user)
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, user.Email)
	return nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			if users[j].ID < users[i].ID {
				users[i], users[j] = users[j], users[i]
			}
		}
	}
	return users, nil
}

// memEventRepo is an in-memory append-only SecurityEventRepository
type memEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events []*models.SecurityEvent
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{}
}

func (r *memEventRepo) Create(_ context.Context, event *models.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	dup := *event
	r.events = append(r.events, &dup)
	return nil
}

func (r *memEventRepo) ListAll(_ context.Context) ([]*models.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.SecurityEvent, len(r.events))
	for i, e := range r.events {
		dup := *e
		out[i] = &dup
	}
	return out, nil
}

// actions returns the recorded action names in creation order
func (r *memEventRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Action
	}
	return names
}

// countAction counts recorded events for one action
func (r *memEventRepo) countAction(action string) int {
	n := 0
	for _, a := range r.actions() {
		if a == action {
			n++
		}
	}
	return n
}

// memPayrollRepo is an in-memory PayrollRepository
type memPayrollRepo struct {
	mu      sync.Mutex
	nextID  uint
	records []*models.Payroll
}

func newMemPayrollRepo() *memPayrollRepo {
	return &memPayrollRepo{}
}

func (r *memPayrollRepo) CreateBatch(_ context.Context, payrolls []*models.Payroll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range payrolls {
		for _, existing := range r.records {
			if existing.UserID == p.UserID && existing.Period.Equal(p.Period) {
				return gorm.ErrDuplicatedKey
			}
		}
		r.nextID++
		p.ID = r.nextID
		dup := *p
		r.records = append(r.records, &dup)
	}
	return nil
}

func (r *memPayrollRepo) GetByUserAndPeriod(_ context.Context, userID uint, period time.Time) (*models.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.records {
		if p.UserID == userID && p.Period.Equal(period) {
			dup := *p
			return &dup, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPayrollRepo) Update(_ context.Context, payroll *models.Payroll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.records {
		if p.ID == payroll.ID {
			dup := *payroll
			r.records[i] = &dup
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memPayrollRepo) ListByUser(_ context.Context, userID uint) ([]*models.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payroll
	for _, p := range r.records {
		if p.UserID == userID {
			dup := *p
			out = append(out, &dup)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Period.After(out[i].Period) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}
