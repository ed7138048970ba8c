package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"wallet-staking-go/internal/models"
)

func Load() (*models.Config, error) {
	checkpointInterval, err := getEnvDuration("ENGINE_CHECKPOINT_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	readTimeout, err := getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	writeTimeout, err := getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("DATABASE_PATH", "wallet-staking.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
			KeepSnapshots:   getEnvInt("DB_KEEP_SNAPSHOTS", 5),
		},
		Server: models.ServerConfig{
			ListenAddr:      getEnvString("LISTEN_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Engine: models.EngineConfig{
			CheckpointInterval: checkpointInterval,
			SettingsFile:       getEnvString("SETTINGS_FILE", ""),
			AchievementsFile:   getEnvString("ACHIEVEMENTS_FILE", ""),
			RequireAuth:        getEnvBool("REQUIRE_AUTH", true),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func validate(cfg *models.Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}
	if cfg.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.KeepSnapshots < 1 {
		return fmt.Errorf("DB_KEEP_SNAPSHOTS must be at least 1, got %d", cfg.Database.KeepSnapshots)
	}
	if cfg.Server.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR cannot be empty")
	}
	if cfg.Engine.CheckpointInterval <= 0 {
		return fmt.Errorf("ENGINE_CHECKPOINT_INTERVAL must be positive, got %v", cfg.Engine.CheckpointInterval)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
