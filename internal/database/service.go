package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.CheckpointStore.
var _ store.CheckpointStore = (*Service)(nil)

// Service is the SQLite-backed checkpoint store. Each checkpoint is one row
// holding the full JSON-encoded state snapshot; restore reads the newest row.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite checkpoint database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	// Set connection timeouts and limits
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection with timeout
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("Checkpoint store initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) initSchema() error {
	schema := `
	-- Full-state snapshots, newest row wins on restore
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		taken_at TIMESTAMP NOT NULL,
		payload BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save persists one full-state snapshot payload.
func (s *Service) Save(ctx context.Context, payload []byte, takenAt time.Time) error {
	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, queryInsertSnapshot, id, takenAt, payload); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	zap.L().Info("Snapshot saved",
		zap.String("snapshot_id", id),
		zap.Time("taken_at", takenAt),
		zap.Int("payload_bytes", len(payload)))
	return nil
}

// LoadLatest returns the most recent snapshot payload.
func (s *Service) LoadLatest(ctx context.Context) ([]byte, error) {
	var payload []byte
	var takenAt time.Time
	err := s.db.QueryRowContext(ctx, queryGetLatestSnapshot).Scan(&payload, &takenAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	zap.L().Info("Snapshot loaded",
		zap.Time("taken_at", takenAt),
		zap.Int("payload_bytes", len(payload)))
	return payload, nil
}

// Prune removes all but the newest keep snapshots.
func (s *Service) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		return fmt.Errorf("keep must be at least 1, got %d", keep)
	}

	result, err := s.db.ExecContext(ctx, queryPruneSnapshots, keep)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if removed, err := result.RowsAffected(); err == nil && removed > 0 {
		zap.L().Info("Pruned old snapshots", zap.Int64("removed", removed), zap.Int("kept", keep))
	}
	return nil
}
