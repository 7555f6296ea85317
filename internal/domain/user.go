package domain

import "time" // Timestamps

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                                   // Primary key
	Name      string     `gorm:"size:100;not null" json:"name"`                          // Display name
	Email     string     `gorm:"size:191;uniqueIndex;not null" json:"email"`             // Unique, lower-cased email
	Password  string     `gorm:"not null" json:"-"`                                      // Hashed password, never serialized
	Role      string     `gorm:"size:20;default:user;not null" json:"role"`              // Role: user or admin
	CartItems []CartItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Items in the user's cart
	CreatedAt time.Time  `json:"created_at"`                                             // Creation time
	UpdatedAt time.Time  `json:"updated_at"`                                             // Last update time
}

// IsAdmin reports whether the user has the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
