package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"storefront/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load(viper.New())

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.True(t, cfg.CatalogFallback)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("CATALOG_SOURCE", "https://example.com/products.json")
	t.Setenv("CATALOG_TIMEOUT", "250ms")
	t.Setenv("CATALOG_FALLBACK", "false")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg := config.Load(viper.New())

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "https://example.com/products.json", cfg.CatalogSource)
	assert.Equal(t, 250*time.Millisecond, cfg.CatalogTimeout)
	assert.False(t, cfg.CatalogFallback)
	assert.Equal(t, "memory", cfg.StorageDriver)
}
