package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Auth context and payloads
	"storefront/internal/utils"      // Pagination and cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/sync/errgroup" // Concurrent aggregates
	"gorm.io/gorm"               // GORM ORM library
)

// LowStockThreshold is the stock level at or below which a product is flagged on the dashboard
const LowStockThreshold = 5

// recentOrdersLimit is how many orders the dashboard shows
const recentOrdersLimit = 5

// Dashboard is the admin overview
type Dashboard struct {
	TotalUsers     int64            `json:"total_users"`      // Registered users
	TotalProducts  int64            `json:"total_products"`   // Products in the catalog
	TotalOrders    int64            `json:"total_orders"`     // Orders of any status
	TotalRevenue   float64          `json:"total_revenue"`    // Sum of non-cancelled order totals
	OrdersByStatus map[string]int64 `json:"orders_by_status"` // Order count per status
	LowStock       []domain.Product `json:"low_stock"`        // Products about to run out
	RecentOrders   []domain.Order   `json:"recent_orders"`    // Newest orders
	Cached         bool             `json:"cached"`           // Served from cache
}

// UpdateRoleRequest is the body of PUT /api/admin/users/:id/role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"` // New role
}

// UpdateOrderStatusRequest is the body of PUT /api/admin/orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"` // Target status
}

// userListResponse is the cached shape of GET /api/admin/users
type userListResponse struct {
	Users      []domain.User `json:"users"`       // List of users
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int64         `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
	Cached     bool          `json:"cached"`      // Served from cache
}

// buildDashboard runs the dashboard aggregates concurrently
func buildDashboard(c *gin.Context, db *gorm.DB) (Dashboard, error) {
	g, ctx := errgroup.WithContext(c.Request.Context())
	d := Dashboard{
		OrdersByStatus: map[string]int64{},
		LowStock:       []domain.Product{},
		RecentOrders:   []domain.Order{},
	}
	// Each goroutine writes only its own fields
	g.Go(func() error {
		return db.WithContext(ctx).Model(&domain.User{}).Count(&d.TotalUsers).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Model(&domain.Product{}).Count(&d.TotalProducts).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Model(&domain.Order{}).Count(&d.TotalOrders).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Model(&domain.Order{}).
			Where("status <> ?", domain.OrderCancelled).
			Select("COALESCE(SUM(total), 0)").Scan(&d.TotalRevenue).Error
	})
	byStatus := make(map[string]int64) // Merged after Wait
	g.Go(func() error {
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).Model(&domain.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
			return err
		}
		for _, r := range rows {
			byStatus[r.Status] = r.Count
		}
		return nil
	})
	g.Go(func() error {
		return db.WithContext(ctx).Preload("Category").Where("stock <= ?", LowStockThreshold).
			Order("stock asc, id asc").Find(&d.LowStock).Error
	})
	g.Go(func() error {
		return db.WithContext(ctx).Preload("Items").Preload("User").
			Order("created_at desc, id desc").Limit(recentOrdersLimit).Find(&d.RecentOrders).Error
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	for _, s := range domain.OrderStatuses {
		d.OrdersByStatus[s] = byStatus[s] // Every status present, zero when unused
	}
	d.TotalRevenue = domain.RoundMoney(d.TotalRevenue)
	return d, nil
}

// DashboardHandler returns store-wide totals for admins
func DashboardHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var d Dashboard
		if cacheGet(c, cache, prefixDashboard, &d) {
			d.Cached = true // Indicate response is from cache
			c.JSON(http.StatusOK, d)
			return
		}
		d, err := buildDashboard(c, db)
		if err != nil {
			respondError(c, err)
			return
		}
		cacheSet(c, cache, prefixDashboard, d, adminTTL)
		c.JSON(http.StatusOK, d)
	}
}

// ListUsersHandler returns a page of users
func ListUsersHandler(db *gorm.DB, cache utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c) // Validated pagination
		// Create a cache key based on pagination parameters
		cacheKey := prefixAdminUsers + "page=" + strconv.Itoa(page.Page) + ":size=" + strconv.Itoa(page.PageSize)
		var resp userListResponse
		// If cached data found, return it
		if cacheGet(c, cache, cacheKey, &resp) {
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
		query := db.WithContext(c.Request.Context()).Model(&domain.User{})
		// Fetch total user count and the requested page
		if err := query.Count(&resp.Total).Error; err != nil {
			respondError(c, err)
			return
		}
		resp.Users = []domain.User{}
		if err := query.Order("id asc").Offset(page.Offset()).Limit(page.PageSize).Find(&resp.Users).Error; err != nil {
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

// UpdateUserRoleHandler promotes or demotes a user
func UpdateUserRoleHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		req := middleware.Payload[UpdateRoleRequest](c) // Validated body
		adminID, _ := middleware.UserID(c)
		if id == adminID && req.Role != domain.RoleAdmin {
			// An admin demoting themselves could leave the store without any admin
			respondError(c, newError(ErrInvalidInput, "Admins cannot remove their own admin role"))
			return
		}
		tx := db.WithContext(c.Request.Context())
		var user domain.User
		if err := tx.First(&user, id).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := tx.Model(&user).Update("role", req.Role).Error; err != nil {
			respondError(c, err)
			return
		}
		user.Role = req.Role
		invalidate(c, cache, prefixAdminUsers)
		// Log the role change with context
		logrus.WithFields(logrus.Fields{
			"admin_id": adminID,  // Acting admin
			"user_id":  user.ID,  // Target user
			"role":     req.Role, // New role
		}).Info("User role changed")
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// ListAllOrdersHandler returns every order, filterable by status and user_id
func ListAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParsePage(c) // Validated pagination
		query := db.WithContext(c.Request.Context()).Model(&domain.Order{})
		if status := c.Query("status"); status != "" {
			if !domain.IsValidOrderStatus(status) {
				respondError(c, newError(ErrInvalidInput, "Invalid status"))
				return
			}
			query = query.Where("status = ?", status) // Filter by status
		}
		if uid := c.Query("user_id"); uid != "" {
			id, err := strconv.ParseUint(uid, 10, 64)
			if err != nil {
				respondError(c, newError(ErrInvalidInput, "Invalid user_id"))
				return
			}
			query = query.Where("user_id = ?", id) // Filter by user
		}

		resp := orderListResponse{Orders: []domain.Order{}, Page: page.Page, PageSize: page.PageSize}
		// Get total count of orders matching the filters
		if err := query.Count(&resp.Total).Error; err != nil {
			respondError(c, err)
			return
		}
		if err := query.Preload("Items").Preload("User").Order("created_at desc, id desc").
			Offset(page.Offset()).Limit(page.PageSize).Find(&resp.Orders).Error; err != nil {
			respondError(c, err)
			return
		}
		resp.TotalPages = page.TotalPages(resp.Total)
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateOrderStatusHandler moves any order along its lifecycle
func UpdateOrderStatusHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		req := middleware.Payload[UpdateOrderStatusRequest](c) // Validated body

		var order domain.Order
		var from string // Status before the change
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Preload("Items").First(&order, id).Error; err != nil {
				return err
			}
			from = order.Status
			return transitionOrder(tx, &order, req.Status)
		})
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				respondError(c, newError(ErrNotFound, "Order not found"))
				return
			}
			respondError(c, err)
			return
		}
		prefixes := []string{prefixDashboard}
		if order.Status == domain.OrderCancelled {
			prefixes = append(prefixes, prefixProducts) // Stock restored
		}
		invalidate(c, cache, prefixes...)
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,     // Order ID
			"from":     from,         // Previous status
			"to":       order.Status, // New status
		}).Info("Order status changed")
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
