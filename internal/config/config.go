package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	AppPort         string
	LogLevel        string
	CatalogSource   string
	CatalogTimeout  time.Duration
	CatalogFallback bool
	StorageDriver   string
	DatabaseDSN     string
	RabbitMQURL     string
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CATALOG_SOURCE", "data/products.json")
	v.SetDefault("CATALOG_TIMEOUT", "5s")
	v.SetDefault("CATALOG_FALLBACK", true)
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("RABBITMQ_URL", "") // empty disables order events
}

// Load applies defaults, binds environment variables and returns the result.
func Load(v *viper.Viper) Config {
	SetDefaults(v)
	v.AutomaticEnv()

	return Config{
		AppPort:         v.GetString("APP_PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CatalogSource:   v.GetString("CATALOG_SOURCE"),
		CatalogTimeout:  v.GetDuration("CATALOG_TIMEOUT"),
		CatalogFallback: v.GetBool("CATALOG_FALLBACK"),
		StorageDriver:   v.GetString("STORAGE_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
	}
}
