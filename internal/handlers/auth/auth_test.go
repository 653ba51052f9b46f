package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authn "studyhub/internal/auth"
	handlers "studyhub/internal/handlers/auth"
	"studyhub/internal/models"
	"studyhub/internal/store"
)

type fakeUsers struct {
	nextID  int64
	byEmail map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*models.User{}}
}

func (f *fakeUsers) add(name, email, password string) *models.User {
	f.nextID++
	u := &models.User{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: store.HashPassword(password),
	}
	f.byEmail[email] = u
	return u
}

func (f *fakeUsers) ByID(ctx context.Context, id int64) (models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return *u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeUsers) ByEmail(ctx context.Context, email string) (models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return *u, nil
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, name, email, password string, isAdmin bool) (int64, error) {
	u := f.add(name, email, password)
	u.IsAdmin = isAdmin
	return u.ID, nil
}

func (f *fakeUsers) Update(ctx context.Context, id int64, name, email string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Name, u.Email = name, email
			return nil
		}
	}
	return store.ErrNotFound
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegisterSuccess(t *testing.T) {
	users := newFakeUsers()
	h := &handlers.RegisterHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/register", map[string]interface{}{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Alice", user["name"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	users.add("Alice", "alice@example.com", "password123")
	h := &handlers.RegisterHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/register", map[string]interface{}{
		"name":     "Imposter",
		"email":    "alice@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}

func TestRegisterValidation(t *testing.T) {
	users := newFakeUsers()
	h := &handlers.RegisterHandler{Users: users, Auth: authn.New("s", 1, users)}

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"email": "a@example.com", "password": "password123"}},
		{"bad email", map[string]interface{}{"name": "A", "email": "not-an-email", "password": "password123"}},
		{"short password", map[string]interface{}{"name": "A", "email": "a@example.com", "password": "123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h, "/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec), "error")
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUsers()
	users.add("Alice", "alice@example.com", "password123")
	h := &handlers.LoginHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUsers()
	users.add("Alice", "alice@example.com", "correct-password")
	h := &handlers.LoginHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/login", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := newFakeUsers()
	h := &handlers.LoginHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/login", map[string]interface{}{
		"email":    "ghost@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
	users := newFakeUsers()
	h := &handlers.LoginHandler{Users: users, Auth: authn.New("s", 1, users)}

	rec := postJSON(t, h, "/auth/login", map[string]interface{}{
		"email": "alice@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
