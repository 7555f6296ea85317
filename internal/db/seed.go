package db

import (
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Normalization

	"storefront/internal/domain" // Domain models
	"storefront/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// SeedOptions controls what Seed inserts
type SeedOptions struct {
	AdminName     string // Admin display name
	AdminEmail    string // Admin login
	AdminPassword string // Admin password, the admin is skipped when empty
	SkipProducts  bool   // Only seed the admin and categories
}

// SeedReport summarizes what Seed changed
type SeedReport struct {
	AdminCreated      bool // A new admin row was inserted
	AdminPromoted     bool // An existing user was promoted to admin
	CategoriesCreated int  // New categories
	ProductsCreated   int  // New products
}

type seedProduct struct {
	category string
	product  domain.Product
}

var seedCategories = []domain.Category{
	{Name: "Electronics", Description: "Phones, audio and accessories"},
	{Name: "Books", Description: "Fiction and non-fiction"},
	{Name: "Home & Kitchen", Description: "Everything for the house"},
	{Name: "Clothing", Description: "Apparel for every season"},
}

var seedProducts = []seedProduct{
	{"Electronics", domain.Product{Name: "Wireless Headphones", Description: "Over-ear, noise cancelling", Price: 129.99, Stock: 25}},
	{"Electronics", domain.Product{Name: "USB-C Charger", Description: "65W fast charger", Price: 39.50, Stock: 80}},
	{"Books", domain.Product{Name: "The Go Programming Language", Description: "Donovan & Kernighan", Price: 34.99, Stock: 40}},
	{"Books", domain.Product{Name: "Designing Data-Intensive Applications", Description: "Kleppmann", Price: 45.00, Stock: 15}},
	{"Home & Kitchen", domain.Product{Name: "Ceramic Mug", Description: "350ml, dishwasher safe", Price: 12.00, Stock: 120}},
	{"Home & Kitchen", domain.Product{Name: "Chef Knife", Description: "8 inch stainless steel", Price: 59.90, Stock: 4}},
	{"Clothing", domain.Product{Name: "Cotton T-Shirt", Description: "Unisex, organic cotton", Price: 19.99, Stock: 200}},
	{"Clothing", domain.Product{Name: "Rain Jacket", Description: "Waterproof, packable", Price: 89.00, Stock: 0}},
}

// Seed inserts the admin user, default categories and sample products. Running it twice is a no-op.
func Seed(db *gorm.DB, opts SeedOptions) (SeedReport, error) {
	var report SeedReport
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.AdminPassword != "" {
			created, promoted, err := EnsureAdmin(tx, opts.AdminName, opts.AdminEmail, opts.AdminPassword)
			if err != nil {
				return err
			}
			report.AdminCreated, report.AdminPromoted = created, promoted
		}

		categoryIDs := make(map[string]uint, len(seedCategories))
		for _, c := range seedCategories {
			c.Slug = domain.Slugify(c.Name)
			res := tx.Where(domain.Category{Slug: c.Slug}).Attrs(c).FirstOrCreate(&c)
			if res.Error != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, res.Error)
			}
			report.CategoriesCreated += int(res.RowsAffected)
			categoryIDs[c.Name] = c.ID
		}

		if opts.SkipProducts {
			return nil
		}
		for _, sp := range seedProducts {
			p := sp.product
			id := categoryIDs[sp.category]
			p.CategoryID = &id
			res := tx.Where(domain.Product{Name: p.Name}).Attrs(p).FirstOrCreate(&p)
			if res.Error != nil {
				return fmt.Errorf("seed product %q: %w", p.Name, res.Error)
			}
			report.ProductsCreated += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return SeedReport{}, err
	}

	logrus.WithFields(logrus.Fields{
		"admin_created":      report.AdminCreated,
		"admin_promoted":     report.AdminPromoted,
		"categories_created": report.CategoriesCreated,
		"products_created":   report.ProductsCreated,
	}).Info("Seed completed")
	return report, nil
}

// EnsureAdmin creates an admin account, or promotes the existing user with that email
func EnsureAdmin(db *gorm.DB, name, email, password string) (created, promoted bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, false, errors.New("admin email and password are required")
	}
	if name == "" {
		name = "Administrator"
	}

	var user domain.User
	err = db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == domain.RoleAdmin {
			return false, false, nil // Already an admin
		}
		if err := db.Model(&user).Update("role", domain.RoleAdmin).Error; err != nil {
			return false, false, fmt.Errorf("promote admin: %w", err)
		}
		return false, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := utils.HashPassword(password)
		if err != nil {
			return false, false, fmt.Errorf("hash admin password: %w", err)
		}
		user = domain.User{Name: name, Email: email, Password: hash, Role: domain.RoleAdmin}
		if err := db.Create(&user).Error; err != nil {
			return false, false, fmt.Errorf("create admin: %w", err)
		}
		return true, false, nil
	default:
		return false, false, fmt.Errorf("lookup admin: %w", err)
	}
}
