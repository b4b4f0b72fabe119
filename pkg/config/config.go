// Package config provides configuration handling for the pipeline service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Host to bind to
	Host string `json:"host"`

	// Port to listen on
	Port int `json:"port"`

	// TLS configuration
	TLS TLSConfig `json:"tls"`
}

// TLSConfig contains TLS settings
type TLSConfig struct {
	// Enabled indicates whether TLS is enabled
	Enabled bool `json:"enabled"`

	// CertFile is the path to the certificate file
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the key file
	KeyFile string `json:"key_file"`
}

// StorageConfig contains storage settings
type StorageConfig struct {
	// Type of storage to use
	Type string `json:"type"` // "memory", "redis", "dynamodb", "postgres"

	// Redis configuration
	Redis RedisConfig `json:"redis"`

	// DynamoDB configuration
	DynamoDB DynamoDBConfig `json:"dynamodb"`

	// PostgreSQL configuration
	Postgres PostgresConfig `json:"postgres"`
}

// RedisConfig contains Redis settings
type RedisConfig struct {
	// Addr is the host:port of the Redis server
	Addr string `json:"addr"`

	// Password for the Redis server, empty for none
	Password string `json:"password"`

	// DB is the Redis database number
	DB int `json:"db"`

	// KeyPrefix is prepended to every key
	KeyPrefix string `json:"key_prefix"`
}

// DynamoDBConfig contains DynamoDB settings
type DynamoDBConfig struct {
	// Region is the AWS region
	Region string `json:"region"`

	// Endpoint is the DynamoDB endpoint (for local development)
	Endpoint string `json:"endpoint"`

	// TablePrefix is the prefix for all tables
	TablePrefix string `json:"table_prefix"`
}

// PostgresConfig contains PostgreSQL settings
type PostgresConfig struct {
	// Host is the database host
	Host string `json:"host"`

	// Port is the database port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// User is the database user
	User string `json:"user"`

	// Password is the database password
	Password string `json:"password"`

	// SSLMode is the SSL mode
	SSLMode string `json:"ssl_mode"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	// JWTSecret is the secret for signing JWT tokens
	JWTSecret string `json:"jwt_secret"`

	// TokenExpiration is the token expiration time in hours
	TokenExpiration int `json:"token_expiration"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	// Level is the logging level
	Level string `json:"level"` // "debug", "info", "warn", "error"

	// Format is the log format
	Format string `json:"format"` // "json", "text"

	// Output is the log output
	Output string `json:"output"` // "stdout", "file"

	// FilePath is the path to the log file
	FilePath string `json:"file_path"`
}

// LoadConfig loads the configuration from a file and applies environment
// variable overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvOverrides()
	return config, nil
}

// applyEnvOverrides lets deployment environments override the file settings
// that most often differ between machines.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PIPELINER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PIPELINER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("PIPELINER_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("PIPELINER_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv("PIPELINER_POSTGRES_HOST"); v != "" {
		c.Storage.Postgres.Host = v
	}
	if v := os.Getenv("PIPELINER_POSTGRES_PASSWORD"); v != "" {
		c.Storage.Postgres.Password = v
	}
	if v := os.Getenv("PIPELINER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("PIPELINER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
			TLS: TLSConfig{
				Enabled: false,
			},
		},
		Storage: StorageConfig{
			Type: "memory",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "pipeliner:",
			},
			DynamoDB: DynamoDBConfig{
				Region:      "us-west-2",
				TablePrefix: "pipeliner_",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "pipeliner",
				User:     "pipeliner",
				SSLMode:  "disable",
			},
		},
		Auth: AuthConfig{
			TokenExpiration: 24,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
