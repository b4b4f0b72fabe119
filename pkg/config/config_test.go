package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host to be 'localhost', got '%s'", cfg.Server.Host)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Server.Port)
	}

	if cfg.Storage.Type != "memory" {
		t.Errorf("Expected default storage type to be 'memory', got '%s'", cfg.Storage.Type)
	}

	if cfg.Storage.Redis.KeyPrefix != "pipeliner:" {
		t.Errorf("Expected default redis prefix to be 'pipeliner:', got '%s'", cfg.Storage.Redis.KeyPrefix)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pipeliner-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.json")

	originalCfg := DefaultConfig()
	originalCfg.Server.Host = "testhost"
	originalCfg.Server.Port = 9090
	originalCfg.Storage.Type = "postgresql"

	if err := SaveConfig(originalCfg, configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedCfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedCfg.Server.Host != originalCfg.Server.Host {
		t.Errorf("Expected host to be '%s', got '%s'", originalCfg.Server.Host, loadedCfg.Server.Host)
	}

	if loadedCfg.Server.Port != originalCfg.Server.Port {
		t.Errorf("Expected port to be %d, got %d", originalCfg.Server.Port, loadedCfg.Server.Port)
	}

	if loadedCfg.Storage.Type != originalCfg.Storage.Type {
		t.Errorf("Expected storage type to be '%s', got '%s'", originalCfg.Storage.Type, loadedCfg.Storage.Type)
	}
}

func TestEnvOverrides(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pipeliner-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.json")
	if err := SaveConfig(DefaultConfig(), configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	t.Setenv("PIPELINER_PORT", "9191")
	t.Setenv("PIPELINER_STORAGE_TYPE", "redis")
	t.Setenv("PIPELINER_JWT_SECRET", "from-env")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Expected env override port 9191, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != "redis" {
		t.Errorf("Expected env override storage 'redis', got '%s'", cfg.Storage.Type)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("Expected env override jwt secret, got '%s'", cfg.Auth.JWTSecret)
	}
}

func TestLoadConfigError(t *testing.T) {
	if _, err := LoadConfig("non-existent-file.json"); err == nil {
		t.Error("Expected error when loading non-existent config file, got nil")
	}
}
