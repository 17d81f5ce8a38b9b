package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"acme-accounts/internal/adapters/persistence/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ============================================================
// In-memory repositories for full-stack route tests
// ============================================================

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	user.ID = r.nextID
	dup := *user
	r.users[user.Email] = &dup
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	dup := *user
	return &dup, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[email]
	return ok, nil
}

func (r *fakeUserRepo) ExistsAny(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users) > 0, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dup := *user
	r.users[user.Email] = &dup
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, user.Email)
	return nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		dup := *u
		users = append(users, &dup)
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

type fakeEventRepo struct {
	mu     sync.Mutex
	nextID uint
	events []*models.SecurityEvent
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	dup := *event
	r.events = append(r.events, &dup)
	return nil
}

func (r *fakeEventRepo) ListAll(_ context.Context) ([]*models.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.SecurityEvent, len(r.events))
	for i, e := range r.events {
		dup := *e
		out[i] = &dup
	}
	return out, nil
}

func (r *fakeEventRepo) countAction(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

type fakePayrollRepo struct {
	mu      sync.Mutex
	nextID  uint
	records []*models.Payroll
}

func (r *fakePayrollRepo) CreateBatch(_ context.Context, payrolls []*models.Payroll) error {
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

func (r *fakePayrollRepo) GetByUserAndPeriod(_ context.Context, userID uint, period time.Time) (*models.Payroll, error) {
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

func (r *fakePayrollRepo) Update(_ context.Context, payroll *models.Payroll) error {
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

func (r *fakePayrollRepo) ListByUser(_ context.Context, userID uint) ([]*models.Payroll, error) {
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

// ============================================================
// Test harness
// ============================================================

type testEnv struct {
	app    *fiber.App
	events *fakeEventRepo
}

func newTestEnv() *testEnv {
	app := fiber.New()
	events := &fakeEventRepo{}
	SetupWithDeps(app, Deps{
		Users:    newFakeUserRepo(),
		Events:   events,
		Payrolls: &fakePayrollRepo{},
	})
	return &testEnv{app: app, events: events}
}

func (e *testEnv) request(t *testing.T, method, path, user, pass string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := e.requestRaw(t, method, path, user, pass, body)
	if len(raw) == 0 || raw[0] == '[' {
		return status, nil
	}
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return status, parsed
}

func (e *testEnv) requestRaw(t *testing.T, method, path, user, pass string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != "" {
		credential := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		req.Header.Set(fiber.HeaderAuthorization, "Basic "+credential)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (e *testEnv) signup(t *testing.T, email, password string) map[string]any {
	t.Helper()
	status, body := e.request(t, http.MethodPost, "/api/auth/signup", "", "", fiber.Map{
		"name": "John", "lastname": "Doe", "email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body
}

// ============================================================
// Tests
// ============================================================

func TestSignupEndpoint(t *testing.T) {
	env := newTestEnv()

	body := env.signup(t, "admin@acme.com", "SecretPassword1")
	assert.Equal(t, []any{"ROLE_ADMINISTRATOR"}, body["roles"])
	assert.Equal(t, "admin@acme.com", body["email"])

	body = env.signup(t, "john@acme.com", "SecretPassword1")
	assert.Equal(t, []any{"ROLE_USER"}, body["roles"])

	status, body := env.request(t, http.MethodPost, "/api/auth/signup", "", "", fiber.Map{
		"name": "John", "lastname": "Doe", "email": "john@example.com", "password": "SecretPassword1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email must belong to the acme.com domain", body["error"])

	status, body = env.request(t, http.MethodPost, "/api/auth/signup", "", "", fiber.Map{
		"name": "John", "lastname": "Doe", "email": "jane@acme.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.request(t, http.MethodPost, "/api/auth/signup", "", "", fiber.Map{
		"name": "John", "lastname": "Doe", "email": "john@acme.com", "password": "SecretPassword1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User exist!", body["error"])
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "john@acme.com", "SecretPassword1")

	status, _ := env.request(t, http.MethodGet, "/api/empl/payment", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := env.request(t, http.MethodGet, "/api/empl/payment", "john@acme.com", "WrongPassword99", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password!", body["error"])
}

func TestRoleBasedAccessControl(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "john@acme.com", "SecretPassword1")

	// A plain USER is rejected on the admin surface, and the denial is audited
	status, body := env.request(t, http.MethodGet, "/api/admin/user/", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access Denied!", body["error"])
	assert.Equal(t, 1, env.events.countAction("ACCESS_DENIED"))

	status, raw := env.requestRaw(t, http.MethodGet, "/api/admin/user/", "admin@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "admin@acme.com", users[0]["email"])
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "john@acme.com", "SecretPassword1")

	status, body := env.request(t, http.MethodPut, "/api/admin/user/role", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "john@acme.com", "role": "ACCOUNTANT", "operation": "GRANT",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"ROLE_ACCOUNTANT", "ROLE_USER"}, body["roles"])

	status, body = env.request(t, http.MethodPut, "/api/admin/user/role", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "john@acme.com", "role": "MANAGER", "operation": "GRANT",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Role not found!", body["error"])

	status, body = env.request(t, http.MethodPut, "/api/admin/user/access", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "john@acme.com", "operation": "LOCK",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User john@acme.com locked!", body["status"])

	// A locked identity is refused with its correct credential
	status, body = env.request(t, http.MethodGet, "/api/empl/payment", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "User account is locked!", body["error"])

	status, body = env.request(t, http.MethodPut, "/api/admin/user/access", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "john@acme.com", "operation": "UNLOCK",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User john@acme.com unlocked!", body["status"])

	// The administrator cannot lock or delete itself
	status, body = env.request(t, http.MethodPut, "/api/admin/user/access", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "admin@acme.com", "operation": "LOCK",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Can't lock the ADMINISTRATOR!", body["error"])

	status, body = env.request(t, http.MethodDelete, "/api/admin/user/admin@acme.com", "admin@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Can't remove ADMINISTRATOR role!", body["error"])

	status, body = env.request(t, http.MethodDelete, "/api/admin/user/john@acme.com", "admin@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Deleted successfully!", body["status"])
	assert.Equal(t, "john@acme.com", body["user"])
}

func TestPayrollEndpoints(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "john@acme.com", "SecretPassword1")
	env.signup(t, "kate@acme.com", "SecretPassword1")

	status, _ := env.request(t, http.MethodPut, "/api/admin/user/role", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "kate@acme.com", "role": "ACCOUNTANT", "operation": "GRANT",
	})
	require.Equal(t, http.StatusOK, status)

	// A plain employee cannot upload payrolls
	status, _ = env.request(t, http.MethodPost, "/api/acct/payments", "john@acme.com", "SecretPassword1", []fiber.Map{})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := env.request(t, http.MethodPost, "/api/acct/payments", "kate@acme.com", "SecretPassword1", []fiber.Map{
		{"employee": "john@acme.com", "period": "01-2021", "salary": 123456},
		{"employee": "john@acme.com", "period": "02-2021", "salary": 234567},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Added successfully!", body["status"])

	status, body = env.request(t, http.MethodPost, "/api/acct/payments", "kate@acme.com", "SecretPassword1", []fiber.Map{
		{"employee": "john@acme.com", "period": "01-2021", "salary": 999999},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Payroll already exists!", body["error"])

	status, body = env.request(t, http.MethodGet, "/api/empl/payment?period=01-2021", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "January-2021", body["period"])
	assert.Equal(t, "1234 dollar(s) 56 cent(s)", body["salary"])
	assert.Equal(t, "John", body["name"])

	status, raw := env.requestRaw(t, http.MethodGet, "/api/empl/payment", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	var payments []map[string]any
	require.NoError(t, json.Unmarshal(raw, &payments))
	require.Len(t, payments, 2)
	assert.Equal(t, "February-2021", payments[0]["period"])

	status, body = env.request(t, http.MethodPut, "/api/acct/payments", "kate@acme.com", "SecretPassword1", fiber.Map{
		"employee": "john@acme.com", "period": "01-2021", "salary": 250099,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Updated successfully!", body["status"])

	status, body = env.request(t, http.MethodGet, "/api/empl/payment?period=01-2021", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2500 dollar(s) 99 cent(s)", body["salary"])

	status, body = env.request(t, http.MethodGet, "/api/empl/payment?period=03-2021", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Payroll not found!", body["error"])
}

func TestAuditorEventLog(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "kate@acme.com", "SecretPassword1")

	status, _ := env.request(t, http.MethodPut, "/api/admin/user/role", "admin@acme.com", "SecretPassword1", fiber.Map{
		"user": "kate@acme.com", "role": "AUDITOR", "operation": "GRANT",
	})
	require.Equal(t, http.StatusOK, status)

	// The administrator holds no business role and is denied here
	status, _ = env.request(t, http.MethodGet, "/api/security/events/", "admin@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, raw := env.requestRaw(t, http.MethodGet, "/api/security/events/", "kate@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusOK, status)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(raw, &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "CREATE_USER", events[0]["action"])
	assert.Equal(t, "Anonymous", events[0]["subject"])
	assert.Equal(t, "/api/auth/signup", events[0]["path"])
	// GRANT_ROLE, then the ACCESS_DENIED from the administrator's attempt
	last := events[len(events)-1]
	assert.Equal(t, "ACCESS_DENIED", last["action"])
	assert.Equal(t, "admin@acme.com", last["subject"])
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv()
	env.signup(t, "admin@acme.com", "SecretPassword1")
	env.signup(t, "john@acme.com", "SecretPassword1")

	status, body := env.request(t, http.MethodPost, "/api/auth/changepass", "john@acme.com", "SecretPassword1", fiber.Map{
		"new_password": "SecretPassword1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.request(t, http.MethodPost, "/api/auth/changepass", "john@acme.com", "SecretPassword1", fiber.Map{
		"new_password": "FreshPassword22",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "The password has been updated successfully", body["status"])
	assert.Equal(t, "john@acme.com", body["email"])

	status, _ = env.request(t, http.MethodGet, "/api/empl/payment", "john@acme.com", "SecretPassword1", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, raw := env.requestRaw(t, http.MethodGet, "/api/empl/payment", "john@acme.com", "FreshPassword22", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(bytes.TrimSpace(raw)))
}
