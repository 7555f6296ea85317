package api

import (
	"net/http"
	"testing"

	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCart(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("shopper@example.com")
	_, otherToken := s.user("other@example.com")
	mug := testutil.CreateProduct(t, s.db, "Mug", 7.5, 5, nil)
	pen := testutil.CreateProduct(t, s.db, "Pen", 1.25, 100, nil)
	soldOut := testutil.CreateProduct(t, s.db, "Poster", 3, 0, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/cart", "", nil).Code)

	w := s.do(http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"count":0}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": pen.ID, "quantity": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cart := decode[CartResponse](t, w)
	require.Len(t, cart.Items, 2, "adding the same product merges lines")
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "Mug", cart.Items[0].Product.Name)
	assert.Equal(t, 7, cart.Count)
	assert.InDelta(t, 27.5, cart.Total, 0.001)

	t.Run("stock is enforced", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 3})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Only 5 of Mug left in stock", decode[errorBody](t, w).Error)

		w = s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": soldOut.ID, "quantity": 1})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Poster is out of stock", decode[errorBody](t, w).Error)

		w = s.do(http.MethodPut, "/api/cart/"+itoa(mug.ID), token, jsonMap{"quantity": 6})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad input", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": 9999, "quantity": 1}).Code)
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 0}).Code)
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/cart/abc", token, jsonMap{"quantity": 1}).Code)
	})

	w = s.do(http.MethodPut, "/api/cart/"+itoa(mug.ID), token, jsonMap{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 9, decode[CartResponse](t, w).Count)

	// Carts are per user
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/cart/"+itoa(mug.ID), otherToken, jsonMap{"quantity": 1}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/cart/"+itoa(mug.ID), otherToken, nil).Code)

	w = s.do(http.MethodDelete, "/api/cart/"+itoa(pen.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart = decode[CartResponse](t, w)
	require.Len(t, cart.Items, 1)
	assert.InDelta(t, 37.5, cart.Total, 0.001)

	w = s.do(http.MethodDelete, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[CartResponse](t, w).Count)
	assert.Empty(t, decode[CartResponse](t, s.do(http.MethodGet, "/api/cart", token, nil)).Items)
}

func TestCart_ConcurrentAddsMerge(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("shopper@example.com")
	pen := testutil.CreateProduct(t, s.db, "Pen", 1.25, 100, nil)

	const adds = 6
	codes := make([]int, adds)
	var g errgroup.Group
	for i := 0; i < adds; i++ {
		i := i
		g.Go(func() error {
			codes[i] = s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": pen.ID, "quantity": 2}).Code
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	cart := decode[CartResponse](t, s.do(http.MethodGet, "/api/cart", token, nil))
	require.Len(t, cart.Items, 1, "one line per product")
	assert.Equal(t, 2*adds, cart.Items[0].Quantity)
}

func TestCart_MergeBeyondStockRollsBack(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("shopper@example.com")
	mug := testutil.CreateProduct(t, s.db, "Mug", 7.5, 4, nil)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 3}).Code)
	w := s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": mug.ID, "quantity": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Only 4 of Mug left in stock", decode[errorBody](t, w).Error)

	cart := decode[CartResponse](t, s.do(http.MethodGet, "/api/cart", token, nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity, "the rejected merge is not kept")
}
