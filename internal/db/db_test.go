package db_test

import (
	"testing"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/testutil"
	"storefront/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDSN_UnsupportedDriver(t *testing.T) {
	_, err := db.OpenDSN("oracle", "whatever", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSeed_Idempotent(t *testing.T) {
	gdb := testutil.NewTestDB(t)
	opts := db.SeedOptions{AdminEmail: "Admin@Example.com", AdminPassword: "admin12345"}

	report, err := db.Seed(gdb, opts)
	require.NoError(t, err)
	assert.True(t, report.AdminCreated)
	assert.Equal(t, 4, report.CategoriesCreated)
	assert.Equal(t, 8, report.ProductsCreated)

	again, err := db.Seed(gdb, opts)
	require.NoError(t, err)
	assert.Equal(t, db.SeedReport{}, again, "second run changes nothing")

	var products []domain.Product
	require.NoError(t, gdb.Preload("Category").Find(&products).Error)
	require.Len(t, products, 8)
	for _, p := range products {
		require.NotNil(t, p.Category, p.Name)
	}

	var admin domain.User
	require.NoError(t, gdb.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)
	assert.True(t, utils.CheckPassword(admin.Password, "admin12345"))
}

func TestSeed_SkipProductsAndAdmin(t *testing.T) {
	gdb := testutil.NewTestDB(t)
	report, err := db.Seed(gdb, db.SeedOptions{SkipProducts: true})
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)
	assert.Equal(t, 4, report.CategoriesCreated)
	assert.Zero(t, report.ProductsCreated)

	var users int64
	require.NoError(t, gdb.Model(&domain.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

func TestEnsureAdmin(t *testing.T) {
	gdb := testutil.NewTestDB(t)
	existing := testutil.CreateUser(t, gdb, "owner@example.com", domain.RoleUser)

	created, promoted, err := db.EnsureAdmin(gdb, "", " OWNER@example.com", "irrelevant")
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, promoted)

	var u domain.User
	require.NoError(t, gdb.First(&u, existing.ID).Error)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.True(t, utils.CheckPassword(u.Password, "password123"), "promotion keeps the password")

	created, promoted, err = db.EnsureAdmin(gdb, "", "owner@example.com", "irrelevant")
	require.NoError(t, err)
	assert.False(t, created || promoted, "already an admin")

	_, _, err = db.EnsureAdmin(gdb, "", "", "x")
	assert.Error(t, err)
}
