// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"hotel-booking/cmd"
	"hotel-booking/internal/event"
	"hotel-booking/internal/wire"
	"hotel-booking/pkg/database"
	"hotel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("store", config.Store.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	catalog, err := utils.LoadRoomCatalog(config.App.RoomsFile)
	if err != nil {
		logger.Fatal("Failed to load room catalog", zap.Error(err))
	}
	logger.Info("Room catalog loaded", zap.Strings("room_types", catalog.Types()))

	// Connect to store
	store, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("Failed to connect to store", zap.Error(err))
	}
	defer store.Close()

	logger.Info("Store connected successfully", zap.String("driver", config.Store.Driver))

	var publisher event.Publisher = event.NopPublisher{}
	if config.Events.Enabled {
		publisher = event.NewRabbitPublisher(config.Events.URL, config.Events.Queue, logger).
			WithDialTimeout(config.Events.DialTimeout)
		logger.Info("Booking events enabled", zap.String("queue", config.Events.Queue))
	}

	// Wire all dependencies
	app := wire.Wiring(store, catalog, publisher, logger)

	if config.App.SeedInventory {
		created, err := app.Service.Room.SeedInventory(ctx)
		if err != nil {
			logger.Fatal("Failed to seed room inventory", zap.Error(err))
		}
		logger.Info("Room inventory ready", zap.Int("created", created))
	}

	// Start server
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}
}

func openStore(ctx context.Context, config *utils.Config) (database.Store, error) {
	switch config.Store.Driver {
	case utils.StoreDriverPostgres:
		store, err := database.InitPostgres(ctx, database.PostgresConfig{
			Host:     config.Database.Host,
			Port:     config.Database.Port,
			Name:     config.Database.Name,
			User:     config.Database.User,
			Password: config.Database.Password,
			MaxConns: config.Database.MaxConns,
			Table:    config.Database.Table,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case utils.StoreDriverRedis:
		store, err := database.InitRedis(ctx, database.RedisConfig{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
			TLS:      config.Redis.TLS,
			Prefix:   config.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case utils.StoreDriverMemory:
		return database.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
}
