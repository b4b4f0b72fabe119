// Package main is the entry point for the pipeliner server.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamhub/pipeliner/pkg/api"
	"github.com/streamhub/pipeliner/pkg/config"
	"github.com/streamhub/pipeliner/pkg/registry"
	"github.com/streamhub/pipeliner/pkg/services"
	"github.com/streamhub/pipeliner/pkg/storage"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	version    = flag.Bool("version", false, "Print version information")
)

const (
	AppVersion = "0.1.0"
	AppName    = "pipeliner"
)

func main() {
	// Environment variables in a .env file are convenient in development.
	_ = godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", AppName, AppVersion)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-stop:
		log.Println("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			log.Fatalf("Error during shutdown: %v", err)
		}
	}
}

// loadConfig loads configuration from the -config flag, a set of standard
// locations, or falls back to defaults.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", *configPath, err)
		}
	} else {
		locations := []string{
			"./config.json",
			"./configs/config.json",
			filepath.Join(os.Getenv("HOME"), ".pipeliner", "config.json"),
			"/etc/pipeliner/config.json",
		}

		for _, path := range locations {
			if loadedCfg, err := config.LoadConfig(path); err == nil {
				cfg = loadedCfg
				break
			}
		}

		if cfg == nil {
			cfg = config.DefaultConfig()

			defaultPath := filepath.Join(os.Getenv("HOME"), ".pipeliner", "config.json")
			if err := config.SaveConfig(cfg, defaultPath); err != nil {
				return nil, fmt.Errorf("failed to save default config: %w", err)
			}

			fmt.Printf("Created default configuration at %s\n", defaultPath)
		}
	}

	// A missing JWT secret would make every token verifiable by anyone who
	// reads the default, so generate one per installation instead.
	if cfg.Auth.JWTSecret == "" {
		secret, err := generateRandomKey(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
	}

	return cfg, nil
}

// generateRandomKey generates a random hex key of the specified byte length.
func generateRandomKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// App ties the storage provider, registry and HTTP server together.
type App struct {
	config          *config.Config
	server          *api.Server
	storageProvider storage.StorageProvider
}

// NewApp creates a new application instance from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	storageProvider, err := newStorageProvider(cfg)
	if err != nil {
		return nil, err
	}

	if err := storageProvider.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	pipelineRegistry := registry.NewPipelineRegistry(
		storageProvider.GetPipelineStore(),
		storageProvider.GetCatalogStore(),
		registry.PipelineRegistryOptions{},
	)

	accountService := services.NewAccountService(storageProvider.GetAccountStore())
	jwtService := services.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiration)

	server := api.NewServer(cfg, pipelineRegistry, accountService, jwtService)

	return &App{
		config:          cfg,
		server:          server,
		storageProvider: storageProvider,
	}, nil
}

func newStorageProvider(cfg *config.Config) (storage.StorageProvider, error) {
	providerConfig := storage.ProviderConfig{}

	switch cfg.Storage.Type {
	case "memory", "":
		providerConfig.Type = storage.MemoryProviderType
		log.Println("Using in-memory storage provider")
	case "redis":
		log.Printf("Initializing Redis storage provider with addr: %s", cfg.Storage.Redis.Addr)
		providerConfig.Type = storage.RedisProviderType
		providerConfig.Redis = &storage.RedisProviderConfig{
			Addr:      cfg.Storage.Redis.Addr,
			Password:  cfg.Storage.Redis.Password,
			DB:        cfg.Storage.Redis.DB,
			KeyPrefix: cfg.Storage.Redis.KeyPrefix,
		}
	case "dynamodb":
		log.Printf("Initializing DynamoDB storage provider with region: %s, endpoint: %s",
			cfg.Storage.DynamoDB.Region, cfg.Storage.DynamoDB.Endpoint)
		providerConfig.Type = storage.DynamoDBProviderType
		providerConfig.DynamoDB = &storage.DynamoDBProviderConfig{
			Region:      cfg.Storage.DynamoDB.Region,
			TablePrefix: cfg.Storage.DynamoDB.TablePrefix,
			Endpoint:    cfg.Storage.DynamoDB.Endpoint,
		}
	case "postgres", "postgresql":
		log.Printf("Initializing PostgreSQL storage provider with host: %s, port: %d, database: %s",
			cfg.Storage.Postgres.Host, cfg.Storage.Postgres.Port, cfg.Storage.Postgres.Database)
		providerConfig.Type = storage.PostgreSQLProviderType
		providerConfig.PostgreSQL = &storage.PostgreSQLProviderConfig{
			Host:     cfg.Storage.Postgres.Host,
			Port:     cfg.Storage.Postgres.Port,
			User:     cfg.Storage.Postgres.User,
			Password: cfg.Storage.Postgres.Password,
			Database: cfg.Storage.Postgres.Database,
			SSLMode:  cfg.Storage.Postgres.SSLMode,
		}
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	return storage.NewProvider(providerConfig)
}

// Start starts the server and blocks until it exits.
func (a *App) Start() error {
	fmt.Printf("Starting %s version %s\n", AppName, AppVersion)
	return a.server.Start()
}

// Stop stops the server and closes storage.
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Stop(ctx); err != nil {
		return err
	}

	if err := a.storageProvider.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}

	return nil
}
