package domain

import (
	"math" // Rounding
	"time" // Timestamps
)

// Order statuses
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderStatuses lists every valid status in lifecycle order
var OrderStatuses = []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// orderTransitions maps a status to the statuses it may move to
var orderTransitions = map[string][]string{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

// Order Model
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`                                       // Primary key
	UserID          uint        `gorm:"not null;index" json:"user_id"`                              // Buyer
	User            *User       `json:"user,omitempty"`                                             // Buyer details (admin views)
	Status          string      `gorm:"size:20;not null;default:pending;index" json:"status"`       // Lifecycle status
	Total           float64     `gorm:"type:decimal(10,2);not null" json:"total"`                   // Sum of line totals
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`                 // Delivery address
	Items           []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"` // Order lines
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`                                    // Creation time
	UpdatedAt       time.Time   `json:"updated_at"`                                                 // Last update time
}

// OrderItem Model, a snapshot of a product at checkout time
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`                          // Primary key
	OrderID   uint    `gorm:"not null;index" json:"order_id"`                // Owning order
	ProductID uint    `gorm:"not null;index" json:"product_id"`              // Product bought
	Name      string  `gorm:"size:200;not null" json:"name"`                 // Product name at checkout
	Price     float64 `gorm:"type:decimal(10,2);not null" json:"price"`      // Unit price at checkout
	Quantity  int     `gorm:"not null" json:"quantity"`                      // Units bought
	LineTotal float64 `gorm:"type:decimal(10,2);not null" json:"line_total"` // Price * Quantity
}

// IsValidOrderStatus reports whether s is a known status
func IsValidOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RoundMoney rounds an amount to cents
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
