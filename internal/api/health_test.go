package api

import (
	"net/http"
	"testing"

	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","db":"ok","cache":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"error","db":"error","cache":"ok"}`, w.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, "/api/products", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptestRecorder(s, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth_CacheDownIsDegraded(t *testing.T) {
	s := newTestServerWithCache(t, failingCache{})

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code, "the database still serves every request")
	assert.JSONEq(t, `{"status":"degraded","db":"ok","cache":"error"}`, w.Body.String())
}

func TestCatalog_ServedFromDatabaseWhenCacheFails(t *testing.T) {
	s := newTestServerWithCache(t, failingCache{})
	cat := testutil.CreateCategory(t, s.db, "Tools")
	hammer := testutil.CreateProduct(t, s.db, "Hammer", 12.5, 3, &cat.ID)

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodGet, "/api/products", "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		list := decode[productListResponse](t, w)
		assert.False(t, list.Cached)
		require.Len(t, list.Products, 1)
		assert.Equal(t, hammer.ID, list.Products[0].ID)
	}

	w := s.do(http.MethodGet, "/api/products/"+itoa(hammer.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[productEnvelope](t, w).Cached)

	w = s.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode[categoryListResponse](t, w)
	assert.False(t, cats.Cached)
	require.Len(t, cats.Categories, 1)
	assert.EqualValues(t, 1, cats.Categories[0].ProductCount)

	// Writes still succeed when invalidation fails
	_, token := s.user("buyer@example.com")
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": hammer.ID, "quantity": 1}).Code)
	w = s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, stockOf(t, s.db, hammer.ID))
}
