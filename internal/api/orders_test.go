package api

import (
	"net/http"
	"strconv"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type orderEnvelope struct {
	Order domain.Order `json:"order"`
}

const address = "1 Market Street, Springfield"

func TestPlaceOrder(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("buyer@example.com")
	lamp := testutil.CreateProduct(t, s.db, "Lamp", 19.99, 4, nil)
	bulb := testutil.CreateProduct(t, s.db, "Bulb", 2.5, 10, nil)

	w := s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", decode[errorBody](t, w).Error)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": lamp.ID, "quantity": 2}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": bulb.ID, "quantity": 3}).Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/orders", token, jsonMap{}).Code)

	// Warm the product cache so we can see checkout invalidate it
	s.do(http.MethodGet, "/api/products", "", nil)

	w = s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[orderEnvelope](t, w).Order
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, address, order.ShippingAddress)
	assert.InDelta(t, 47.48, order.Total, 0.001)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Lamp", order.Items[0].Name)
	assert.InDelta(t, 39.98, order.Items[0].LineTotal, 0.001)

	assert.Equal(t, 2, stockOf(t, s.db, lamp.ID))
	assert.Equal(t, 7, stockOf(t, s.db, bulb.ID))
	assert.Empty(t, decode[CartResponse](t, s.do(http.MethodGet, "/api/cart", token, nil)).Items, "checkout empties the cart")
	assert.False(t, decode[productListResponse](t, s.do(http.MethodGet, "/api/products", "", nil)).Cached)

	// Later price changes do not touch the order
	require.NoError(t, s.db.Model(&domain.Product{}).Where("id = ?", lamp.ID).Update("price", 99).Error)
	w = s.do(http.MethodGet, "/api/orders/"+itoa(order.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 19.99, decode[orderEnvelope](t, w).Order.Items[0].Price, 0.001)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	s := newTestServer(t)
	buyer, token := s.user("buyer@example.com")
	plenty := testutil.CreateProduct(t, s.db, "Plenty", 1, 50, nil)
	scarce := testutil.CreateProduct(t, s.db, "Scarce", 1, 3, nil)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": plenty.ID, "quantity": 5}).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": scarce.ID, "quantity": 3}).Code)

	// Someone else bought the scarce item after it went into the cart
	require.NoError(t, s.db.Model(&domain.Product{}).Where("id = ?", scarce.ID).Update("stock", 1).Error)

	w := s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Only 1 of Scarce left in stock", decode[errorBody](t, w).Error)

	assert.Equal(t, 50, stockOf(t, s.db, plenty.ID), "earlier decrements are rolled back")
	assert.Equal(t, 1, stockOf(t, s.db, scarce.ID))
	var orders int64
	require.NoError(t, s.db.Model(&domain.Order{}).Where("user_id = ?", buyer.ID).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Len(t, decode[CartResponse](t, s.do(http.MethodGet, "/api/cart", token, nil)).Items, 2, "cart is kept")
}

func TestOrders_ListGetCancel(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("buyer@example.com")
	_, otherToken := s.user("other@example.com")
	kettle := testutil.CreateProduct(t, s.db, "Kettle", 30, 10, nil)

	place := func(qty int) domain.Order {
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", token, jsonMap{"product_id": kettle.ID, "quantity": qty}).Code)
		w := s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decode[orderEnvelope](t, w).Order
	}
	first := place(1)
	second := place(2)
	assert.Equal(t, 7, stockOf(t, s.db, kettle.ID))

	w := s.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[orderListResponse](t, w)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Orders, 2)
	assert.Equal(t, second.ID, list.Orders[0].ID, "newest first")
	assert.Len(t, list.Orders[0].Items, 1)

	assert.Equal(t, int64(0), decode[orderListResponse](t, s.do(http.MethodGet, "/api/orders", otherToken, nil)).Total)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/orders/"+itoa(first.ID), otherToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/orders/"+itoa(first.ID)+"/cancel", otherToken, nil).Code)

	w = s.do(http.MethodPut, "/api/orders/"+itoa(second.ID)+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.OrderCancelled, decode[orderEnvelope](t, w).Order.Status)
	assert.Equal(t, 9, stockOf(t, s.db, kettle.ID), "cancelling restores stock")

	w = s.do(http.MethodPut, "/api/orders/"+itoa(second.ID)+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "already cancelled")
	assert.Equal(t, 9, stockOf(t, s.db, kettle.ID), "stock is restored once")

	require.NoError(t, s.db.Model(&domain.Order{}).Where("id = ?", first.ID).Update("status", domain.OrderShipped).Error)
	w = s.do(http.MethodPut, "/api/orders/"+itoa(first.ID)+"/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cannot change order from shipped to cancelled", decode[errorBody](t, w).Error)
}

func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	s := newTestServer(t)
	last := testutil.CreateProduct(t, s.db, "Last Lamp", 49, 1, nil)

	const buyers = 5
	tokens := make([]string, buyers)
	for i := range tokens {
		_, tokens[i] = s.user("buyer" + strconv.Itoa(i) + "@example.com")
		// Carts do not reserve stock, so every buyer can add the last unit
		require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/cart", tokens[i], jsonMap{"product_id": last.ID, "quantity": 1}).Code)
	}

	codes := make([]int, buyers)
	var g errgroup.Group
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			codes[i] = s.do(http.MethodPost, "/api/orders", token, jsonMap{"shipping_address": address}).Code
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var created, conflicts int
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created, "exactly one buyer gets the last unit: %v", codes)
	assert.Equal(t, buyers-1, conflicts, "%v", codes)
	assert.Equal(t, 0, stockOf(t, s.db, last.ID))

	var orders int64
	require.NoError(t, s.db.Model(&domain.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}
