package api

import (
	"fmt"  // Error wrapping
	"time" // Token and cache lifetimes

	"storefront/internal/middleware" // Custom package for middleware
	"storefront/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps are the collaborators the HTTP layer needs
type Deps struct {
	DB          *gorm.DB      // Database handle
	Cache       utils.Cache   // Response cache
	JWTSecret   string        // HMAC key for tokens
	JWTTTL      time.Duration // Token lifetime
	CacheTTL    time.Duration // Catalog cache lifetime
	CORSOrigins []string      // Allowed browser origins
}

// NewRouter wires every route of the storefront API
func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New() // Middleware is chosen explicitly below
	r.Use(middleware.RequestLogger(), middleware.Recovery())
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	db, cache := d.DB, d.Cache
	auth := middleware.JWTAuthMiddleware(d.JWTSecret)

	api := r.Group("/api")
	api.GET("/health", HealthHandler(db, cache)) // Liveness and dependency status

	// User routes
	users := api.Group("/users")
	users.POST("/register", middleware.ValidateJSON[RegisterRequest](), RegisterHandler(db, cache, d.JWTSecret, d.JWTTTL))
	users.POST("/login", middleware.ValidateJSON[LoginRequest](), LoginHandler(db, d.JWTSecret, d.JWTTTL))
	users.GET("/profile", auth, GetProfileHandler(db))
	users.PUT("/profile", auth, middleware.ValidateJSON[UpdateProfileRequest](), UpdateProfileHandler(db, cache))

	// Catalog routes; reads are public, writes need an admin
	adminOnly := []gin.HandlerFunc{auth, middleware.AdminOnlyMiddleware(db)}
	withAdmin := func(h ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, adminOnly...), h...)
	}

	categories := api.Group("/categories")
	categories.GET("", ListCategoriesHandler(db, cache, d.CacheTTL))
	categories.GET("/:id", GetCategoryHandler(db, cache, d.CacheTTL))
	categories.POST("", withAdmin(middleware.ValidateJSON[CategoryRequest](), CreateCategoryHandler(db, cache))...)
	categories.PUT("/:id", withAdmin(middleware.ValidateJSON[CategoryRequest](), UpdateCategoryHandler(db, cache))...)
	categories.DELETE("/:id", withAdmin(DeleteCategoryHandler(db, cache))...)

	products := api.Group("/products")
	products.GET("", ListProductsHandler(db, cache, d.CacheTTL))
	products.GET("/:id", GetProductHandler(db, cache, d.CacheTTL))
	products.POST("", withAdmin(middleware.ValidateJSON[ProductRequest](), CreateProductHandler(db, cache))...)
	products.PUT("/:id", withAdmin(middleware.ValidateJSON[ProductUpdateRequest](), UpdateProductHandler(db, cache))...)
	products.DELETE("/:id", withAdmin(DeleteProductHandler(db, cache))...)

	// Cart routes (protected by JWT)
	cart := api.Group("/cart", auth)
	cart.GET("", GetCartHandler(db))
	cart.POST("", middleware.ValidateJSON[AddToCartRequest](), AddToCartHandler(db))
	cart.DELETE("", ClearCartHandler(db))
	cart.PUT("/:productId", middleware.ValidateJSON[UpdateCartItemRequest](), UpdateCartItemHandler(db))
	cart.DELETE("/:productId", RemoveCartItemHandler(db))

	// Order routes (protected by JWT)
	orders := api.Group("/orders", auth)
	orders.POST("", middleware.ValidateJSON[PlaceOrderRequest](), PlaceOrderHandler(db, cache))
	orders.GET("", ListMyOrdersHandler(db))
	orders.GET("/:id", GetMyOrderHandler(db))
	orders.PUT("/:id/cancel", CancelMyOrderHandler(db, cache))

	// Admin routes (protected, admin only)
	admin := api.Group("/admin", adminOnly...)
	admin.GET("/dashboard", DashboardHandler(db, cache))
	admin.GET("/users", ListUsersHandler(db, cache, adminTTL))
	admin.PUT("/users/:id/role", middleware.ValidateJSON[UpdateRoleRequest](), UpdateUserRoleHandler(db, cache))
	admin.GET("/orders", ListAllOrdersHandler(db))
	admin.PUT("/orders/:id/status", middleware.ValidateJSON[UpdateOrderStatusRequest](), UpdateOrderStatusHandler(db, cache))

	return r, nil
}
