package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg := config.Load(viper.New())

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	deps, err := storage(cfg)
	if err != nil {
		zl.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	deps.Logger = zl
	deps.Source = services.NewCatalogSource(cfg.CatalogSource, cfg.CatalogTimeout)

	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zl)
		if err != nil {
			zl.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		err = mqClient.ConsumeOrderEvents(func(event models.OrderPlacedEvent) error {
			zl.Info("order event received",
				zap.String("order_id", event.OrderID),
				zap.Int("items", event.ItemCount),
				zap.String("total", event.Total.String()))
			return nil
		})
		if err != nil {
			zl.Warn("order event consumer not started", zap.Error(err))
		}
	}

	app := NewApp(deps)
	if err := app.Start(cfg.CatalogFallback); err != nil {
		zl.Warn("cart not restored", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down server")
	if err := app.Fiber.Shutdown(); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

// storage builds the repositories for the configured driver.
func storage(cfg config.Config) (Dependencies, error) {
	switch cfg.StorageDriver {
	case "memory":
		return Dependencies{
			Products: repositories.NewMockProductRepository(),
			Slots:    repositories.NewMockSlotStore(),
		}, nil
	case "sqlite", "postgres":
		db, err := database.Open(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return Dependencies{}, err
		}
		return Dependencies{
			Products: repositories.NewGORMProductRepository(db),
			Slots:    repositories.NewGORMSlotStore(db),
		}, nil
	}
	return Dependencies{}, errors.New("unknown storage driver " + cfg.StorageDriver)
}
