package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/config"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Defaults(t *testing.T) {
	env, err := Generate(Options{})
	require.NoError(t, err)
	assert.Equal(t, "mysql", env["DB_DRIVER"])
	assert.Equal(t, "3306", env["DB_PORT"])
	assert.Equal(t, "127.0.0.1:6379", env["REDIS_ADDR"])
	assert.GreaterOrEqual(t, len(env["JWT_SECRET"]), 64)

	again, err := Generate(Options{})
	require.NoError(t, err)
	assert.NotEqual(t, env["JWT_SECRET"], again["JWT_SECRET"], "every file gets its own secret")
}

func TestGenerate_Drivers(t *testing.T) {
	env, err := Generate(Options{Driver: config.DriverSQLite, CacheDriver: config.CacheMemory})
	require.NoError(t, err)
	assert.NotContains(t, env, "DB_HOST")
	assert.NotContains(t, env, "REDIS_ADDR")

	env, err = Generate(Options{Driver: config.DriverPostgres})
	require.NoError(t, err)
	assert.Equal(t, "5432", env["DB_PORT"])

	_, err = Generate(Options{Driver: "oracle"})
	assert.Error(t, err)
	_, err = Generate(Options{CacheDriver: "memcached"})
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	env, err := Generate(Options{Driver: config.DriverSQLite})
	require.NoError(t, err)

	require.NoError(t, Write(path, env, false))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	read, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, env, read)

	err = Write(path, map[string]string{"APP_PORT": "1"}, false)
	assert.ErrorIs(t, err, ErrExists)
	read, err = godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, env["JWT_SECRET"], read["JWT_SECRET"], "file is untouched")

	require.NoError(t, Write(path, map[string]string{"APP_PORT": "1"}, true))
	read, err = godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"APP_PORT": "1"}, read)
}

func TestGenerate_LoadsAsValidConfig(t *testing.T) {
	env, err := Generate(Options{Driver: config.DriverSQLite, CacheDriver: config.CacheMemory})
	require.NoError(t, err)
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg := config.LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "storefront.db", cfg.DSN())
	assert.Equal(t, env["JWT_SECRET"], cfg.JWTSecret)
}
