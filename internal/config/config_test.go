package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 720*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, cfg.JWTSecret, cfg.SessionSecret)
	assert.Equal(t, "200.00", cfg.FreeShippingThreshold.StringFixed(2))
	assert.Equal(t, "25.00", cfg.ShippingFee.StringFixed(2))
	assert.Zero(t, cfg.PlacementDelay)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "99.50")
	t.Setenv("SHIPPING_FEE", "4")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("PLACEMENT_DELAY", "2s")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example, https://admin.example")
	t.Setenv("DEVELOPMENT", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, "99.50", cfg.FreeShippingThreshold.StringFixed(2))
	assert.Equal(t, "4.00", cfg.ShippingFee.StringFixed(2))
	assert.Equal(t, 2*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 2*time.Second, cfg.PlacementDelay)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Development)
}

func TestLoad_InvalidMoney(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "cheap")
	_, err := Load()
	assert.ErrorContains(t, err, "SHIPPING_FEE")
}

func TestLoad_NegativeFee(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nSHIPPING_FEE=30\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SHIPPING_FEE", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "12.00", cfg.ShippingFee.StringFixed(2), "environment wins over file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestUpdateDatabaseURLWithSSL(t *testing.T) {
	cfg := &Config{DBSSLMode: "verify-full", DBSSLRootCert: "/certs/ca.pem"}

	got := updateDatabaseURLWithSSL("postgres://u:p@db:5432/shop?sslmode=disable&connect_timeout=5", cfg)
	assert.Equal(t, "postgres://u:p@db:5432/shop?connect_timeout=5&sslmode=verify-full&sslrootcert=/certs/ca.pem", got)

	got = updateDatabaseURLWithSSL("postgres://u:p@db:5432/shop", &Config{DBSSLMode: "require"})
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=require", got)
}
