package session

import (
	"fmt"
	"time"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/state"
	"wallet-staking-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the session map inside the state store. A wallet holds at most
// one live session; expiry is sliding on activity.
type Manager struct {
	store *state.StateStore
}

func NewManager(s *state.StateStore) *Manager {
	return &Manager{store: s}
}

// Open creates a session for the wallet, evicting any previous one, and
// returns it with a fresh opaque token.
func (m *Manager) Open(walletAddress string, kind models.WalletKind, chainID string, now time.Time) *models.Session {
	for token, s := range m.store.Sessions {
		if s.WalletAddress == walletAddress {
			delete(m.store.Sessions, token)
			zap.L().Debug("Evicted previous session",
				zap.String("wallet", walletAddress))
		}
	}

	s := &models.Session{
		Token:         uuid.New().String(),
		WalletAddress: walletAddress,
		Kind:          kind,
		ChainID:       chainID,
		ConnectedAt:   now,
		LastActivity:  now,
	}
	m.store.Sessions[s.Token] = s

	zap.L().Info("Session opened",
		zap.String("wallet", walletAddress),
		zap.String("kind", string(kind)),
		zap.String("chain_id", chainID))
	return s
}

// Touch validates the session and slides its expiry window forward to now.
// An expired session is removed and reported as expired.
func (m *Manager) Touch(token string, now time.Time) (*models.Session, error) {
	s, ok := m.store.Sessions[token]
	if !ok {
		return nil, fmt.Errorf("touch session: %w", store.ErrSessionExpired)
	}
	if s.Expired(now, m.store.Settings.SessionTimeout) {
		delete(m.store.Sessions, token)
		zap.L().Debug("Session expired on touch", zap.String("wallet", s.WalletAddress))
		return nil, fmt.Errorf("touch session for %s: %w", s.WalletAddress, store.ErrSessionExpired)
	}
	s.LastActivity = now
	return s, nil
}

// Validate is the read-only expiry check used as a precondition gate. It
// never mutates state, so it is safe under a shared read lock.
func (m *Manager) Validate(token string, now time.Time) (*models.Session, error) {
	s, ok := m.store.Sessions[token]
	if !ok {
		return nil, fmt.Errorf("validate session: %w", store.ErrSessionExpired)
	}
	if s.Expired(now, m.store.Settings.SessionTimeout) {
		return nil, fmt.Errorf("validate session for %s: %w", s.WalletAddress, store.ErrSessionExpired)
	}
	return s, nil
}

// Close removes the session immediately (explicit logout). Closing an unknown
// token is a no-op.
func (m *Manager) Close(token string) {
	if s, ok := m.store.Sessions[token]; ok {
		delete(m.store.Sessions, token)
		zap.L().Info("Session closed", zap.String("wallet", s.WalletAddress))
	}
}

// PruneExpired sweeps out every expired session and returns how many were
// removed. Called before checkpoints so snapshots carry no dead sessions.
func (m *Manager) PruneExpired(now time.Time) int {
	removed := 0
	for token, s := range m.store.Sessions {
		if s.Expired(now, m.store.Settings.SessionTimeout) {
			delete(m.store.Sessions, token)
			removed++
		}
	}
	if removed > 0 {
		zap.L().Debug("Pruned expired sessions", zap.Int("removed", removed))
	}
	return removed
}
