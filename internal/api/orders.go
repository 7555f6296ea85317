package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Auth context and payloads
	"storefront/internal/utils"      // Pagination and cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// PlaceOrderRequest is the body of POST /api/orders
type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=5,max=500"` // Delivery address
}

// Normalize trims the address before its length is checked
func (r *PlaceOrderRequest) Normalize() {
	r.ShippingAddress = strings.TrimSpace(r.ShippingAddress)
}

// orderListResponse is a page of orders
type orderListResponse struct {
	Orders     []domain.Order `json:"orders"`      // Page of orders
	Page       int            `json:"page"`        // Current page
	PageSize   int            `json:"page_size"`   // Page size
	Total      int64          `json:"total"`       // Matching orders
	TotalPages int            `json:"total_pages"` // Total pages
}

// placeOrder turns the user's cart into an order inside tx
func placeOrder(tx *gorm.DB, userID uint, address string) (domain.Order, error) {
	var items []domain.CartItem // Cart lines with products
	if err := tx.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return domain.Order{}, err
	}
	if len(items) == 0 {
		return domain.Order{}, newError(ErrEmptyCart, "Cart is empty")
	}

	order := domain.Order{
		UserID:          userID,
		Status:          domain.OrderPending,
		ShippingAddress: strings.TrimSpace(address),
		Items:           make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		// Decrement only if enough stock remains, so concurrent checkouts cannot oversell
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
			Update("stock", gorm.Expr("stock - ?", item.Quantity))
		if res.Error != nil {
			return domain.Order{}, res.Error
		}
		if res.RowsAffected == 0 {
			var current domain.Product
			if err := tx.First(&current, item.ProductID).Error; err != nil {
				return domain.Order{}, err
			}
			return domain.Order{}, stockError(current)
		}
		line := domain.RoundMoney(item.LineTotal())
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,      // Product bought
			Name:      item.Product.Name,   // Name snapshot
			Price:     item.Product.Price,  // Price snapshot
			Quantity:  item.Quantity,       // Units bought
			LineTotal: line,                // Price * Quantity
		})
		order.Total += line
	}
	order.Total = domain.RoundMoney(order.Total)

	if err := tx.Create(&order).Error; err != nil {
		return domain.Order{}, err // Creates the items too
	}
	if err := tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
		return domain.Order{}, err // Empty the cart
	}
	return order, nil
}

// transitionOrder moves order to status inside tx, restocking on cancellation
func transitionOrder(tx *gorm.DB, order *domain.Order, status string) error {
	if !domain.CanTransition(order.Status, status) {
		return newError(ErrInvalidTransition, "Cannot change order from "+order.Status+" to "+status)
	}
	// Guard on the old status so two concurrent transitions cannot both apply
	res := tx.Model(&domain.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return newError(ErrConflict, "Order was modified concurrently")
	}
	if status == domain.OrderCancelled {
		for _, item := range order.Items {
			// Deleted products are skipped
			if err := tx.Model(&domain.Product{}).Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
	}
	order.Status = status
	return nil
}

// PlaceOrderHandler checks out the authenticated user's cart
func PlaceOrderHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)               // Set by the JWT middleware
		req := middleware.Payload[PlaceOrderRequest](c) // Validated body

		var order domain.Order
		// Atomic checkout
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var err error
			order, err = placeOrder(tx, userID, req.ShippingAddress)
			return err // Any error rolls back stock and order
		})
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				// Log the error with context
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // User ID
					"error":   err.Error(), // Error message
				}).Error("Checkout failed")
			}
			respondError(c, err)
			return
		}
		// Log successful checkout
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,           // User ID
			"order_id": order.ID,         // Order ID
			"total":    order.Total,      // Order total
			"items":    len(order.Items), // Line count
		}).Info("Order placed")
		invalidate(c, cache, prefixProducts, prefixDashboard) // Stock and revenue changed
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// ListMyOrdersHandler returns the authenticated user's orders, newest first
func ListMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		page := utils.ParsePage(c)        // Validated pagination
		query := db.WithContext(c.Request.Context()).Model(&domain.Order{}).Where("user_id = ?", userID)

		resp := orderListResponse{Orders: []domain.Order{}, Page: page.Page, PageSize: page.PageSize}
		if err := query.Count(&resp.Total).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := query.Preload("Items").Order("created_at desc, id desc").Offset(page.Offset()).Limit(page.PageSize).Find(&resp.Orders).Error; err != nil {
			respondError(c, err)
			return
		}
		resp.TotalPages = page.TotalPages(resp.Total)
		c.JSON(http.StatusOK, resp)
	}
}

// findUserOrder loads an order with items; other users' orders are reported as missing
func findUserOrder(db *gorm.DB, orderID, userID uint) (domain.Order, error) {
	var order domain.Order
	err := db.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, newError(ErrNotFound, "Order not found")
	}
	return order, err
}

// GetMyOrderHandler returns one of the authenticated user's orders
func GetMyOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		orderID, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		order, err := findUserOrder(db.WithContext(c.Request.Context()), orderID, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// CancelMyOrderHandler lets the owner cancel a pending or paid order
func CancelMyOrderHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		orderID, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		var order domain.Order
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var err error
			if order, err = findUserOrder(tx, orderID, userID); err != nil {
				return err
			}
			return transitionOrder(tx, &order, domain.OrderCancelled)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": userID, "order_id": order.ID}).Info("Order cancelled")
		invalidate(c, cache, prefixProducts, prefixDashboard) // Stock restored
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
