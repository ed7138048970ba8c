package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across all components. Every failure the core can
// produce is one of these, wrapped with call-site context; callers match with
// errors.Is. All are recoverable result values, never panics.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidDuration     = errors.New("no staking tier for duration")
	ErrPoolNotFound        = errors.New("staking pool not found")
	ErrPoolNotMatured      = errors.New("staking pool not matured")
	ErrAlreadyClaimed      = errors.New("staking pool already claimed")
	ErrSessionExpired      = errors.New("session expired")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrStaleRequest        = errors.New("request timestamp outside accepted window")
	ErrUserNotFound        = errors.New("no user found for address")

	// ErrNoSnapshot is returned by CheckpointStore.LoadLatest when no
	// checkpoint has ever been written.
	ErrNoSnapshot = errors.New("no snapshot available")
)

// CheckpointStore is the contract every durable checkpoint backend must
// satisfy. The engine serializes the whole state aggregate into one opaque
// payload per checkpoint; the store keeps enough history to restore the
// latest one after a restart or upgrade.
type CheckpointStore interface {
	// Save persists one full-state snapshot payload.
	Save(ctx context.Context, payload []byte, takenAt time.Time) error

	// LoadLatest returns the most recent snapshot payload, or ErrNoSnapshot.
	LoadLatest(ctx context.Context) ([]byte, error)

	// Prune removes all but the newest keep snapshots.
	Prune(ctx context.Context, keep int) error

	Close()
}
