package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Cache TTL

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Validated payloads
	"storefront/internal/utils"      // Pagination and cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// ProductRequest is the body of product create
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`           // Product name
	Description string  `json:"description" validate:"max=5000"`            // Description
	Price       float64 `json:"price" validate:"gte=0"`                     // Unit price
	Stock       int     `json:"stock" validate:"gte=0"`                     // Units available
	ImageURL    string  `json:"image_url" validate:"omitempty,url,max=500"` // Image location
	CategoryID  *uint   `json:"category_id" validate:"omitempty,gt=0"`      // Optional category
}

// ProductUpdateRequest is the body of product update; nil fields are left unchanged
type ProductUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,max=500,url|len=0"` // Empty string clears the image
	CategoryID  *uint    `json:"category_id" validate:"omitempty,gte=0"`           // 0 clears the category
}

// Normalize trims the name before validation so blank names are rejected
func (r *ProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Normalize trims the name, when sent, before validation
func (r *ProductUpdateRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
}

// productListResponse is the cached shape of GET /api/products
type productListResponse struct {
	Products   []domain.Product `json:"products"`    // Page of products
	Page       int              `json:"page"`        // Current page
	PageSize   int              `json:"page_size"`   // Page size
	Total      int64            `json:"total"`       // Matching products
	TotalPages int              `json:"total_pages"` // Total pages
	Cached     bool             `json:"cached"`      // Served from cache
}

// productSorts maps the sort query parameter to an ORDER BY clause
var productSorts = map[string]string{
	"newest":     "products.created_at desc, products.id desc",
	"price_asc":  "products.price asc, products.id asc",
	"price_desc": "products.price desc, products.id desc",
	"name":       "products.name asc, products.id asc",
}

// productFilterKeys are the query parameters that shape the product list and its cache key
var productFilterKeys = []string{"search", "category", "min_price", "max_price", "in_stock", "sort", "page", "page_size"}

// likeEscaper escapes LIKE wildcards for use with ESCAPE '!'
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// applyProductFilters narrows query by the list filters; malformed numbers are rejected
func applyProductFilters(c *gin.Context, query *gorm.DB) (*gorm.DB, error) {
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%" // Wildcards in the term match literally
		query = query.Where("LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!'", like, like)
	}
	if cat := c.Query("category"); cat != "" {
		id, err := strconv.ParseUint(cat, 10, 64)
		if err != nil {
			return nil, newError(ErrInvalidInput, "Invalid category")
		}
		query = query.Where("products.category_id = ?", id) // Filter by category
	}
	if v := c.Query("min_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return nil, newError(ErrInvalidInput, "Invalid min_price")
		}
		query = query.Where("products.price >= ?", price) // Filter by lower price bound
	}
	if v := c.Query("max_price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return nil, newError(ErrInvalidInput, "Invalid max_price")
		}
		query = query.Where("products.price <= ?", price) // Filter by upper price bound
	}
	if v := c.Query("in_stock"); v == "true" || v == "1" {
		query = query.Where("products.stock > 0") // Only purchasable products
	}
	return query, nil
}

// ListProductsHandler returns a filtered, sorted page of products
func ListProductsHandler(db *gorm.DB, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Build cache key from all query params
		keyParts := make([]string, 0, len(productFilterKeys))
		for _, k := range productFilterKeys {
			keyParts = append(keyParts, k+"="+c.Query(k)) // Append key-value pair
		}
		cacheKey := prefixProducts + "list:" + strings.Join(keyParts, ":")

		var resp productListResponse
		if cacheGet(c, cache, cacheKey, &resp) {
			resp.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, resp)
			return
		}

		order, ok := productSorts[c.DefaultQuery("sort", "newest")]
		if !ok {
			respondError(c, newError(ErrInvalidInput, "Invalid sort, expected one of newest, price_asc, price_desc, name"))
			return
		}
		query, err := applyProductFilters(c, db.WithContext(c.Request.Context()).Model(&domain.Product{}))
		if err != nil {
			respondError(c, err)
			return
		}

		page := utils.ParsePage(c) // Validated pagination
		// Get total count of products matching the filters
		if err := query.Count(&resp.Total).Error; err != nil {
			respondError(c, err)
			return
		}
		resp.Products = []domain.Product{}
		// Fetch the requested page with categories
		if err := query.Preload("Category").Order(order).Offset(page.Offset()).Limit(page.PageSize).Find(&resp.Products).Error; err != nil {
			respondError(c, err)
			return
		}
		resp.Page = page.Page
		resp.PageSize = page.PageSize
		resp.TotalPages = page.TotalPages(resp.Total)

		cacheSet(c, cache, cacheKey, resp, ttl) // Cache the response for future requests
		c.JSON(http.StatusOK, resp)
	}
}

// GetProductHandler returns one product with its category
func GetProductHandler(db *gorm.DB, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		cacheKey := prefixProducts + "id=" + strconv.FormatUint(uint64(id), 10)
		var product domain.Product
		if cacheGet(c, cache, cacheKey, &product) {
			c.JSON(http.StatusOK, gin.H{"product": product, "cached": true})
			return
		}
		if err := db.WithContext(c.Request.Context()).Preload("Category").First(&product, id).Error; err != nil {
			respondError(c, err)
			return
		}
		cacheSet(c, cache, cacheKey, product, ttl)
		c.JSON(http.StatusOK, gin.H{"product": product, "cached": false})
	}
}

// ensureCategory returns ErrInvalidInput when id does not name an existing category
func ensureCategory(db *gorm.DB, id *uint) error {
	if id == nil || *id == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&domain.Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return newError(ErrInvalidInput, "Category does not exist")
	}
	return nil
}

// CreateProductHandler creates a product (admin)
func CreateProductHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := middleware.Payload[ProductRequest](c) // Validated body
		tx := db.WithContext(c.Request.Context())
		if err := ensureCategory(tx, req.CategoryID); err != nil {
			respondError(c, err)
			return
		}
		product := domain.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       domain.RoundMoney(req.Price),
			Stock:       req.Stock,
			ImageURL:    req.ImageURL,
			CategoryID:  req.CategoryID,
		}
		if err := tx.Create(&product).Error; err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixProducts, prefixCategories) // Lists and category counts change
		logrus.WithFields(logrus.Fields{
			"product_id": product.ID,    // New product ID
			"price":      product.Price, // Unit price
			"stock":      product.Stock, // Initial stock
		}).Info("Product created")
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

// UpdateProductHandler changes the fields present in the body (admin)
func UpdateProductHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		req := middleware.Payload[ProductUpdateRequest](c) // Validated body
		tx := db.WithContext(c.Request.Context())

		var product domain.Product
		if err := tx.First(&product, id).Error; err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{} // Only the fields that were sent
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			updates["price"] = domain.RoundMoney(*req.Price)
		}
		if req.Stock != nil {
			updates["stock"] = *req.Stock
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if req.CategoryID != nil {
			if *req.CategoryID == 0 {
				updates["category_id"] = nil // Clear the category
			} else {
				if err := ensureCategory(tx, req.CategoryID); err != nil {
					respondError(c, err)
					return
				}
				updates["category_id"] = *req.CategoryID
			}
		}
		if len(updates) == 0 {
			respondError(c, newError(ErrInvalidInput, "No fields to update"))
			return
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := tx.Preload("Category").First(&product, id).Error; err != nil {
			respondError(c, err) // Reload to return fresh values
			return
		}
		invalidate(c, cache, prefixProducts, prefixCategories)
		logrus.WithFields(logrus.Fields{"product_id": id, "fields": len(updates)}).Info("Product updated")
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// DeleteProductHandler deletes a product; cart lines referencing it go with it (admin)
func DeleteProductHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("product_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
				return err // Remove the product from every cart first
			}
			res := tx.Delete(&domain.Product{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return newError(ErrNotFound, "Product not found")
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixProducts, prefixCategories)
		logrus.WithField("product_id", id).Info("Product deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}
