package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"time"     // Merge timestamp

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Auth context and payloads

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Upsert clause
)

// AddToCartRequest is the body of POST /api/cart
type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required,gt=0"`         // Product to add
	Quantity  int  `json:"quantity" validate:"required,gte=1,max=1000"` // Units to add
}

// UpdateCartItemRequest is the body of PUT /api/cart/:productId
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,max=1000"` // New quantity
}

// CartResponse is the authenticated user's cart
type CartResponse struct {
	Items []domain.CartItem `json:"items"` // Cart lines with products
	Total float64           `json:"total"` // Sum of line totals at current prices
	Count int               `json:"count"` // Total units
}

// loadCart reads a user's cart with products and computes totals
func loadCart(db *gorm.DB, userID uint) (CartResponse, error) {
	resp := CartResponse{Items: []domain.CartItem{}}
	if err := db.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&resp.Items).Error; err != nil {
		return CartResponse{}, err
	}
	for _, item := range resp.Items {
		resp.Total += item.LineTotal() // Add line total
		resp.Count += item.Quantity    // Add units
	}
	resp.Total = domain.RoundMoney(resp.Total)
	return resp, nil
}

// stockError explains how many units are available
func stockError(p domain.Product) error {
	if p.Stock == 0 {
		return newError(ErrInsufficientStock, fmt.Sprintf("%s is out of stock", p.Name))
	}
	return newError(ErrInsufficientStock, fmt.Sprintf("Only %d of %s left in stock", p.Stock, p.Name))
}

// GetCartHandler returns the authenticated user's cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		cart, err := loadCart(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// AddToCartHandler adds units of a product, merging with an existing line
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)              // Set by the JWT middleware
		req := middleware.Payload[AddToCartRequest](c) // Validated body
		tx := db.WithContext(c.Request.Context())

		err := tx.Transaction(func(tx *gorm.DB) error {
			var product domain.Product // Find the product
			if err := tx.First(&product, req.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return newError(ErrNotFound, "Product not found")
				}
				return err
			}
			// Insert or merge in one statement so concurrent adds never collide on the unique index
			item := domain.CartItem{UserID: userID, ProductID: product.ID, Quantity: req.Quantity}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   gorm.Expr("cart_items.quantity + ?", req.Quantity), // Merge with the existing line
					"updated_at": time.Now(),
				}),
			}).Omit("Product").Create(&item).Error
			if err != nil {
				return err
			}
			var merged domain.CartItem // Line as stored after the merge
			if err := tx.Where("user_id = ? AND product_id = ?", userID, product.ID).First(&merged).Error; err != nil {
				return err
			}
			if merged.Quantity > product.Stock {
				return stockError(product) // Rolls the merge back
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,        // User ID
			"product_id": req.ProductID, // Product ID
			"quantity":   req.Quantity,  // Units added
		}).Info("Cart item added")

		cart, err := loadCart(tx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// UpdateCartItemHandler sets the quantity of one cart line
func UpdateCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		productID, err := parseID(c, "productId")
		if err != nil {
			respondError(c, err)
			return
		}
		req := middleware.Payload[UpdateCartItemRequest](c) // Validated body
		tx := db.WithContext(c.Request.Context())

		var item domain.CartItem
		if err := tx.Preload("Product").Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, newError(ErrNotFound, "Item not in cart"))
				return
			}
			respondError(c, err)
			return
		}
		if req.Quantity > item.Product.Stock {
			respondError(c, stockError(item.Product))
			return
		}
		// Update by ID so the preloaded product is not written back
		if err := tx.Model(&domain.CartItem{}).Where("id = ?", item.ID).Update("quantity", req.Quantity).Error; err != nil {
			respondError(c, err)
			return
		}
		cart, err := loadCart(tx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// RemoveCartItemHandler removes one product from the cart
func RemoveCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		productID, err := parseID(c, "productId")
		if err != nil {
			respondError(c, err)
			return
		}
		tx := db.WithContext(c.Request.Context())
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&domain.CartItem{})
		if res.Error != nil {
			respondError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, newError(ErrNotFound, "Item not in cart"))
			return
		}
		cart, err := loadCart(tx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// ClearCartHandler empties the cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		if err := db.WithContext(c.Request.Context()).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, CartResponse{Items: []domain.CartItem{}})
	}
}
