package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/testutil"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer is the full router over an in-memory database and cache
type testServer struct {
	t      *testing.T
	db     *gorm.DB
	cache  utils.Cache
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cache := utils.NewMemoryCache(0)
	t.Cleanup(cache.Close)
	return newTestServerWithCache(t, cache)
}

// newTestServerWithCache builds the router over cache instead of a fresh memory cache
func newTestServerWithCache(t *testing.T, cache utils.Cache) *testServer {
	t.Helper()
	gdb := testutil.NewTestDB(t)
	r, err := NewRouter(Deps{
		DB:          gdb,
		Cache:       cache,
		JWTSecret:   testutil.TestSecret,
		JWTTTL:      time.Hour,
		CacheTTL:    5 * time.Minute,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)
	return &testServer{t: t, db: gdb, cache: cache, router: r}
}

// do sends a request with an optional bearer token and JSON body
func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// user creates a customer and returns it with a token
func (s *testServer) user(email string) (domain.User, string) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, email, domain.RoleUser)
	return u, testutil.Token(s.t, u)
}

// admin creates an admin and returns it with a token
func (s *testServer) admin(email string) (domain.User, string) {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, email, domain.RoleAdmin)
	return u, testutil.Token(s.t, u)
}

// decode unmarshals a response body into T
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// jsonMap keeps request bodies short
type jsonMap = map[string]any

type errorBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

// failingCache is a Cache whose every call fails, like an unreachable Redis
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string, any) (bool, error) {
	return false, errCacheDown
}

func (failingCache) Set(context.Context, string, any, time.Duration) error {
	return errCacheDown
}

func (failingCache) Delete(context.Context, string) error {
	return errCacheDown
}

func (failingCache) DeletePrefix(context.Context, string) error {
	return errCacheDown
}

func stockOf(t *testing.T, gdb *gorm.DB, id uint) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, gdb.First(&p, id).Error)
	return p.Stock
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func httptestRecorder(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}
