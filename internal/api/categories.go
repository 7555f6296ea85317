package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Cache TTL

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Validated payloads
	"storefront/internal/utils"      // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// CategoryRequest is the body of category create and update
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"` // Category name
	Description string `json:"description" validate:"max=1000"`  // Optional description
}

// Normalize trims the name before validation so blank names are rejected
func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// CategoryResponse is a category with the number of products in it
type CategoryResponse struct {
	domain.Category
	ProductCount int64 `json:"product_count"` // Products in this category
}

type categoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Cached     bool               `json:"cached"`
}

// categoriesWithCount selects categories joined with their product counts
func categoriesWithCount(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id")
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, newError(ErrInvalidInput, "Invalid "+name)
	}
	return uint(id), nil
}

// ListCategoriesHandler returns every category with its product count
func ListCategoriesHandler(db *gorm.DB, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cacheKey := prefixCategories + "all" // Single key for the full list
		var resp categoryListResponse
		if cacheGet(c, cache, cacheKey, &resp) {
			resp.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, resp)
			return
		}
		resp.Categories = []CategoryResponse{}
		if err := categoriesWithCount(db.WithContext(c.Request.Context())).Order("categories.name").Scan(&resp.Categories).Error; err != nil {
			respondError(c, err)
			return
		}
		cacheSet(c, cache, cacheKey, resp, ttl) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// GetCategoryHandler returns one category with its product count
func GetCategoryHandler(db *gorm.DB, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		cacheKey := prefixCategories + "id=" + strconv.FormatUint(uint64(id), 10)
		var cat CategoryResponse
		if cacheGet(c, cache, cacheKey, &cat) {
			c.JSON(http.StatusOK, gin.H{"category": cat, "cached": true})
			return
		}
		res := categoriesWithCount(db.WithContext(c.Request.Context())).Where("categories.id = ?", id).Scan(&cat)
		if res.Error != nil {
			respondError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, newError(ErrNotFound, "Category not found"))
			return
		}
		cacheSet(c, cache, cacheKey, cat, ttl)
		c.JSON(http.StatusOK, gin.H{"category": cat, "cached": false})
	}
}

// CreateCategoryHandler creates a category (admin)
func CreateCategoryHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := middleware.Payload[CategoryRequest](c) // Validated body
		cat := domain.Category{
			Name:        req.Name,
			Slug:        domain.Slugify(req.Name),
			Description: req.Description,
		}
		if cat.Slug == "" {
			respondError(c, newError(ErrInvalidInput, "Category name must contain letters or digits"))
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
			if isDuplicateKey(err) {
				respondError(c, newError(ErrConflict, "Category already exists"))
				return
			}
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixCategories) // Lists now include the new category
		logrus.WithFields(logrus.Fields{"category_id": cat.ID, "name": cat.Name}).Info("Category created")
		c.JSON(http.StatusCreated, gin.H{"category": cat})
	}
}

// UpdateCategoryHandler renames or re-describes a category (admin)
func UpdateCategoryHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		req := middleware.Payload[CategoryRequest](c) // Validated body
		ctx := c.Request.Context()

		var cat domain.Category
		if err := db.WithContext(ctx).First(&cat, id).Error; err != nil {
			respondError(c, err)
			return
		}
		cat.Name = req.Name
		cat.Slug = domain.Slugify(req.Name)
		cat.Description = req.Description
		if cat.Slug == "" {
			respondError(c, newError(ErrInvalidInput, "Category name must contain letters or digits"))
			return
		}
		if err := db.WithContext(ctx).Save(&cat).Error; err != nil {
			if isDuplicateKey(err) {
				respondError(c, newError(ErrConflict, "Category already exists"))
				return
			}
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixCategories, prefixProducts) // Products embed their category
		c.JSON(http.StatusOK, gin.H{"category": cat})
	}
}

// DeleteCategoryHandler deletes a category; its products become uncategorized (admin)
func DeleteCategoryHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			// Detach products explicitly; not every driver enforces ON DELETE SET NULL
			if err := tx.Model(&domain.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
				return err
			}
			res := tx.Delete(&domain.Category{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return newError(ErrNotFound, "Category not found")
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixCategories, prefixProducts)
		logrus.WithField("category_id", id).Info("Category deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
