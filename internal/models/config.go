package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Engine   EngineConfig
}

// DatabaseConfig holds checkpoint store connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	KeepSnapshots   int
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig holds state engine settings
type EngineConfig struct {
	CheckpointInterval time.Duration
	SettingsFile       string
	AchievementsFile   string
	RequireAuth        bool
}
