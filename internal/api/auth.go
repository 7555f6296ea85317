package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation
	"time"     // Token lifetime

	"storefront/internal/domain"     // Importing domain models
	"storefront/internal/middleware" // Auth context helpers
	"storefront/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the body of POST /api/users/register
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`          // Display name
	Email    string `json:"email" validate:"required,email,max=191"`   // Login email
	Password string `json:"password" validate:"required,min=6,max=72"` // bcrypt limit is 72 bytes
}

// LoginRequest is the body of POST /api/users/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"` // Login email
	Password string `json:"password" validate:"required"`    // Plain password
}

// UpdateProfileRequest is the body of PUT /api/users/profile; nil fields are left unchanged
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=191"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// Normalize trims the name and normalizes the email before validation
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

// Normalize normalizes the email before validation
func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

// Normalize cleans the fields that were sent
func (r *UpdateProfileRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = normalizeEmail(*r.Email)
	}
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  domain.User `json:"user"`  // Authenticated user
}

// normalizeEmail lowercases and trims an email so uniqueness is case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterHandler creates a customer account and returns a token
func RegisterHandler(db *gorm.DB, cache utils.Cache, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := middleware.Payload[RegisterRequest](c) // Validated body
		// Hash the password
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			respondError(c, err) // Hashing failure is a 500
			return
		}
		// Create user with lowercase email to ensure uniqueness
		user := domain.User{
			Name:     req.Name,  // Trimmed by Normalize
			Email:    req.Email, // Lowercased by Normalize
			Password: hash,
			Role:     domain.RoleUser,
		}
		if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				respondError(c, newError(ErrConflict, "Email already registered"))
				return
			}
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixAdminUsers, prefixDashboard) // New user in admin views
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, ttl)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // New user ID
		}).Info("User registered")
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := middleware.Payload[LoginRequest](c) // Validated body
		var user domain.User                       // Fetch user from database
		err := db.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err) // Database failure
			return
		}
		// Unknown email and wrong password look the same to the caller
		if err != nil || !utils.CheckPassword(user.Password, req.Password) {
			respondError(c, newError(ErrUnauthorized, "Invalid credentials"))
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Role, jwtSecret, ttl)
		if err != nil {
			respondError(c, err)
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}

// GetProfileHandler returns the authenticated user
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c) // Set by the JWT middleware
		var user domain.User
		if err := db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
			respondError(c, err) // Deleted users get 404
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// UpdateProfileHandler updates the authenticated user's name, email or password
func UpdateProfileHandler(db *gorm.DB, cache utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)                  // Set by the JWT middleware
		req := middleware.Payload[UpdateProfileRequest](c) // Validated body
		ctx := c.Request.Context()

		var user domain.User
		if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
			respondError(c, err)
			return
		}
		updates := map[string]any{} // Only the fields that were sent
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Email != nil {
			updates["email"] = *req.Email
		}
		if req.Password != nil {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				respondError(c, err)
				return
			}
			updates["password"] = hash
		}
		if len(updates) == 0 {
			respondError(c, newError(ErrInvalidInput, "No fields to update"))
			return
		}
		if err := db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				respondError(c, newError(ErrConflict, "Email already registered"))
				return
			}
			respondError(c, err)
			return
		}
		invalidate(c, cache, prefixAdminUsers) // Name or email shown in the admin user list
		if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
			respondError(c, err) // Reload to return fresh values
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
