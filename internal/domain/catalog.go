package domain

import (
	"regexp"  // Slug cleanup
	"strings" // String manipulation
	"time"    // Timestamps
)

// Category Model
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                      // Primary key
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"` // Unique category name
	Slug        string    `gorm:"size:120;uniqueIndex;not null" json:"slug"` // URL-friendly name
	Description string    `gorm:"type:text" json:"description"`              // Optional description
	CreatedAt   time.Time `json:"created_at"`                                // Creation time
	UpdatedAt   time.Time `json:"updated_at"`                                // Last update time
}

// Product Model
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                                                     // Primary key
	Name        string    `gorm:"size:200;not null;index" json:"name"`                                      // Product name
	Description string    `gorm:"type:text" json:"description"`                                             // Product description
	Price       float64   `gorm:"type:decimal(10,2);not null;default:0" json:"price"`                       // Unit price
	Stock       int       `gorm:"not null;default:0" json:"stock"`                                          // Units available
	ImageURL    string    `gorm:"size:500" json:"image_url"`                                                // Product image
	CategoryID  *uint     `gorm:"index" json:"category_id"`                                                 // Optional category
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"` // Owning category
	CreatedAt   time.Time `json:"created_at"`                                                               // Creation time
	UpdatedAt   time.Time `json:"updated_at"`                                                               // Last update time
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a category name into its slug, e.g. "Home & Garden" -> "home-garden"
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(s, "-")
}
