package api

import (
	"net/http"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testutil"
	"storefront/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/register", "", jsonMap{"name": " Ada ", "email": "  Ada@Example.com ", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email, "email is trimmed and stored lower-case")
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.NotContains(t, w.Body.String(), "password", "hash never leaves the server")

	claims, err := utils.ParseJWT(resp.Token, testutil.TestSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/register", "", jsonMap{"name": "Ada", "email": "ADA@example.com", "password": "secret1"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already registered", decode[errorBody](t, w).Error)
	})

	t.Run("validation", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/register", "", jsonMap{"email": "nope", "password": "123"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "Validation failed", body.Error)
		fields := map[string]string{}
		for _, d := range body.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "name is required", fields["name"])
		assert.Equal(t, "email must be a valid email address", fields["email"])
		assert.Equal(t, "password must be at least 6 characters", fields["password"])
	})

	t.Run("blank name", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/register", "", jsonMap{"name": "   ", "email": "blank@example.com", "password": "secret1"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name", decode[errorBody](t, w).Details[0].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/users/register", "", "not an object")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decode[errorBody](t, w).Error)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	u, _ := s.user("bob@example.com")

	w := s.do(http.MethodPost, "/api/users/login", "", jsonMap{"email": " BOB@example.com ", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[AuthResponse](t, w)
	assert.Equal(t, u.ID, resp.User.ID)

	for name, body := range map[string]jsonMap{
		"wrong password": {"email": "bob@example.com", "password": "nope"},
		"unknown email":  {"email": "ghost@example.com", "password": "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/users/login", "", body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid credentials", decode[errorBody](t, w).Error)
		})
	}
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	u, token := s.user("carol@example.com")
	s.user("taken@example.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/users/profile", "", nil).Code)

	w := s.do(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct{ User domain.User }](t, w)
	assert.Equal(t, u.Email, got.User.Email)

	w = s.do(http.MethodPut, "/api/users/profile", token, jsonMap{"name": "Carol C", "password": "newpass1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Carol C", decode[struct{ User domain.User }](t, w).User.Name)

	// The new password works
	w = s.do(http.MethodPost, "/api/users/login", "", jsonMap{"email": "carol@example.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/users/profile", token, jsonMap{"email": "taken@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/users/profile", token, jsonMap{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", decode[errorBody](t, w).Error)
}

func TestUserWrites_RefreshAdminUserList(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.admin("admin@example.com")
	_, token := s.user("dana@example.com")

	list := func() userListResponse {
		w := s.do(http.MethodGet, "/api/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[userListResponse](t, w)
	}
	assert.EqualValues(t, 2, list().Total)
	assert.True(t, list().Cached)

	w := s.do(http.MethodPost, "/api/users/register", "", jsonMap{"name": "Eve", "email": "eve@example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := list()
	assert.False(t, got.Cached, "registration drops the cached list")
	assert.EqualValues(t, 3, got.Total)

	w = s.do(http.MethodPut, "/api/users/profile", token, jsonMap{"name": "Dana D"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = list()
	assert.False(t, got.Cached, "profile updates drop the cached list")
	var names []string
	for _, u := range got.Users {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "Dana D")
}
