// Package envfile generates the .env file the server and tools read at startup.
package envfile

import (
	"crypto/rand"     // Secret generation
	"encoding/base64" // Secret encoding
	"errors"          // Sentinel errors
	"fmt"             // Error wrapping
	"os"              // File checks

	"storefront/internal/config" // Driver names

	"github.com/joho/godotenv" // .env writer
)

// ErrExists is returned when the target file exists and overwriting was not requested
var ErrExists = errors.New("env file already exists")

// Options shapes the generated file
type Options struct {
	Driver      string // Database driver: mysql, postgres or sqlite
	CacheDriver string // redis or memory
	AppPort     string // API listen port
	CORSOrigins string // Comma separated
	AdminEmail  string // Seeded admin login
}

// defaultPorts are the usual listening ports per driver
var defaultPorts = map[string]string{
	config.DriverMySQL:    "3306",
	config.DriverPostgres: "5432",
}

// Generate returns the variables for a development environment with a fresh JWT secret
func Generate(opts Options) (map[string]string, error) {
	// Fill defaults for anything not given
	if opts.Driver == "" {
		opts.Driver = config.DriverMySQL
	}
	if opts.CacheDriver == "" {
		opts.CacheDriver = config.CacheRedis
	}
	if opts.AppPort == "" {
		opts.AppPort = "8080"
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "http://localhost:3000"
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@example.com"
	}
	if opts.CacheDriver != config.CacheRedis && opts.CacheDriver != config.CacheMemory {
		return nil, fmt.Errorf("unsupported cache driver: %s", opts.CacheDriver)
	}

	secret, err := Secret(48) // 64 characters once encoded
	if err != nil {
		return nil, err
	}
	adminPass, err := Secret(12)
	if err != nil {
		return nil, err
	}

	env := map[string]string{
		"APP_PORT":          opts.AppPort,
		"IS_PROD":           "false",
		"DB_DRIVER":         opts.Driver,
		"DB_NAME":           "storefront",
		"JWT_SECRET":        secret,
		"JWT_TTL_HOURS":     "24",
		"CORS_ORIGINS":      opts.CORSOrigins,
		"CACHE_DRIVER":      opts.CacheDriver,
		"CACHE_TTL_SECONDS": "300",
		"LOG_LEVEL":         "info",
		"LOG_FORMAT":        "text",
		"ADMIN_EMAIL":       opts.AdminEmail,
		"ADMIN_PASSWORD":    adminPass,
	}
	switch opts.Driver {
	case config.DriverMySQL, config.DriverPostgres:
		env["DB_HOST"] = "127.0.0.1"
		env["DB_PORT"] = defaultPorts[opts.Driver]
		env["DB_USER"] = "storefront"
		env["DB_PASSWORD"] = "" // Filled in by the operator
	case config.DriverSQLite:
		// DB_NAME becomes storefront.db
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}
	if opts.CacheDriver == config.CacheRedis {
		env["REDIS_ADDR"] = "127.0.0.1:6379"
		env["REDIS_DB"] = "0"
	}
	return env, nil
}

// Write saves env to path. An existing file is kept unless force is set.
func Write(path string, env map[string]string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (use --force to overwrite)", ErrExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600) // Holds the JWT secret
}

// Secret returns n random bytes encoded as URL-safe base64
func Secret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
