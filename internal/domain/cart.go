package domain

import "time" // Timestamps

// CartItem Model, one row per (user, product)
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                         // Primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // Owning user
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // Product in the cart
	Product   Product   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product"` // Product details
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`                           // Quantity, always >= 1
	CreatedAt time.Time `json:"created_at"`                                                   // Creation time
	UpdatedAt time.Time `json:"updated_at"`                                                   // Last update time
}

// LineTotal is the price of the line at the product's current price
func (i CartItem) LineTotal() float64 {
	return i.Product.Price * float64(i.Quantity)
}
