package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // Driver message matching

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// Domain errors returned by handlers and mapped to HTTP statuses by respondError
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// httpError pairs a public message with the sentinel that decides the status
type httpError struct {
	kind error
	msg  string
}

func (e *httpError) Error() string { return e.msg }
func (e *httpError) Unwrap() error { return e.kind }

// newError returns an error that maps to kind's status and shows msg to the client
func newError(kind error, msg string) error {
	return &httpError{kind: kind, msg: msg}
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case isDuplicateKey(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"), // Request ID
			"path":       c.FullPath(),             // Route
			"error":      err.Error(),              // Error message
		}).Error("Unhandled error")
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	msg := err.Error()
	var he *httpError
	if !errors.As(err, &he) {
		switch status {
		case http.StatusNotFound:
			msg = "Resource not found"
		case http.StatusConflict:
			msg = "Resource already exists"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// isDuplicateKey recognises unique-constraint violations from mysql, postgres and sqlite
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || // mysql 1062
		strings.Contains(msg, "duplicate key") || // postgres 23505
		strings.Contains(msg, "unique constraint") // sqlite
}
