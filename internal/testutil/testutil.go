// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"      // Discarded log output
	"testing" // Test helpers
	"time"    // Token lifetime

	"storefront/internal/db"     // Database connection and migrations
	"storefront/internal/domain" // Importing domain models
	"storefront/internal/utils"  // Password hashing and JWT

	"github.com/sirupsen/logrus"          // Logging library
	"github.com/stretchr/testify/require" // Test assertions
	"gorm.io/gorm"                        // GORM ORM library
)

// TestSecret signs tokens in tests
const TestSecret = "test-secret-0123456789"

// SilenceLogs discards logrus output for the duration of the test
func SilenceLogs(t *testing.T) {
	t.Helper()
	prev := logrus.StandardLogger().Out // Restored on cleanup
	logrus.SetOutput(io.Discard)
	t.Cleanup(func() { logrus.SetOutput(prev) })
}

// NewTestDB returns a migrated in-memory sqlite database, closed when the test ends
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	SilenceLogs(t)

	gdb, err := db.OpenDSN("sqlite", "file::memory:?_foreign_keys=on", false) // Fresh database per test
	require.NoError(t, err, "Failed to create database connection")
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(gdb), "Failed to migrate schema")
	return gdb
}

// CreateUser inserts a user with the given role and password "password123"
func CreateUser(t *testing.T, gdb *gorm.DB, email, role string) domain.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	u := domain.User{Name: "Test User", Email: email, Password: hash, Role: role}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

// Token returns a bearer token for user
func Token(t *testing.T, u domain.User) string {
	t.Helper()
	tok, err := utils.GenerateJWT(u.ID, u.Role, TestSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// CreateCategory inserts a category
func CreateCategory(t *testing.T, gdb *gorm.DB, name string) domain.Category {
	t.Helper()
	c := domain.Category{Name: name, Slug: domain.Slugify(name)}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

// CreateProduct inserts a product
func CreateProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock int, categoryID *uint) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Description: name + " description", Price: price, Stock: stock, CategoryID: categoryID}
	require.NoError(t, gdb.Create(&p).Error)
	return p
}
