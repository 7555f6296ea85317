package config

import (
	"fmt"     // For error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // For durations

	"github.com/go-playground/validator/v10" // Struct validation
	"github.com/joho/godotenv"               // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported cache drivers
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	AppPort     string        `validate:"required"`                             // Application port
	IsProd      bool          // Is production environment
	DBDriver    string        `validate:"required,oneof=mysql postgres sqlite"` // Database driver
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	DBDSN       string        // Full DSN, overrides the individual DB fields
	JWTSecret   string        `validate:"required,min=16"` // JWT secret key
	JWTTTL      time.Duration `validate:"gt=0"`            // Token lifetime
	CORSOrigins []string      `validate:"min=1"`           // Allowed CORS origins
	CacheDriver string        `validate:"required,oneof=redis memory"`
	CacheTTL    time.Duration `validate:"gt=0"` // Default cache TTL
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	LogLevel    string        `validate:"oneof=debug info warn warning error"` // Log level
	LogFormat   string        `validate:"oneof=text json"`                     // Log format
	LogFile     string        // Optional rotated log file
	AdminEmail  string        // Seeded admin email
	AdminPass   string        // Seeded admin password
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),                                      // Application port
		IsProd:      os.Getenv("IS_PROD") == "true",                                  // Is production environment
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),               // Database driver
		DBUser:      os.Getenv("DB_USER"),                                            // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                                        // Database password
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),                                  // Database host
		DBPort:      os.Getenv("DB_PORT"),                                            // Database port
		DBName:      getEnv("DB_NAME", "storefront"),                                 // Database name
		DBDSN:       os.Getenv("DB_DSN"),                                             // Full DSN
		JWTSecret:   os.Getenv("JWT_SECRET"),                                         // JWT secret key
		JWTTTL:      time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,       // Token lifetime
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),      // CORS origins
		CacheDriver: strings.ToLower(getEnv("CACHE_DRIVER", CacheRedis)),             // Cache driver
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second, // Cache TTL
		RedisAddr:   getEnv("REDIS_ADDR", "127.0.0.1:6379"),                          // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                                         // Redis password
		RedisDB:     redisDB,                                                         // Redis database number
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),                    // Log level
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),                   // Log format
		LogFile:     os.Getenv("LOG_FILE"),                                           // Log file
		AdminEmail:  getEnv("ADMIN_EMAIL", "admin@example.com"),                      // Seeded admin email
		AdminPass:   os.Getenv("ADMIN_PASSWORD"),                                     // Seeded admin password
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	// sqlite needs at least a file name
	if c.DBDriver == DriverSQLite && c.DBDSN == "" && c.DBName == "" {
		return fmt.Errorf("invalid configuration: sqlite requires DB_DSN or DB_NAME")
	}
	return nil
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN // Explicit DSN wins
	}
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	case DriverSQLite:
		return c.DBName + ".db"
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
	}
}

// getEnv returns the value of key or def when it is unset
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the integer value of key or def when unset or malformed
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// splitList splits a comma separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
