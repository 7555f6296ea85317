package middleware

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"reflect"  // Field name lookup
	"strings"  // Tag parsing

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Request validation
)

const ctxPayload = "payload"

// FieldError describes one failed validation rule
type FieldError struct {
	Field   string `json:"field"`   // JSON field name
	Message string `json:"message"` // Human readable reason
}

// Normalizer is implemented by request bodies that clean their fields
// (trimming, lowercasing) before the validate tags are checked
type Normalizer interface {
	Normalize()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateJSON binds the request body into T and validates its `validate` tags.
// The handler reads the result with Payload[T].
func ValidateJSON[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// Malformed JSON or wrong types
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if n, ok := any(&req).(Normalizer); ok {
			n.Normalize() // Clean input first so rules see the stored form
		}
		if errs := ValidateStruct(req); len(errs) > 0 {
			// One entry per failed rule
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": errs})
			return
		}
		c.Set(ctxPayload, &req) // Hand the payload to the handler
		c.Next()
	}
}

// Payload returns the body validated by ValidateJSON[T]
func Payload[T any](c *gin.Context) *T {
	if v, ok := c.Get(ctxPayload); ok {
		if p, ok := v.(*T); ok {
			return p
		}
	}
	panic(fmt.Sprintf("middleware: no validated %T payload in context", *new(T)))
}

// ValidateStruct validates s and returns one FieldError per failure
func ValidateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "url", "url|len=0":
		return fe.Field() + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}
}
