package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"wallet-staking-go/internal/models"
)

// SnapshotVersion is the current checkpoint schema version. Decoding accepts
// any version up to this one; new fields must be optional so old payloads
// remain readable.
const SnapshotVersion = 1

// StateStore is the process-wide state aggregate. It is not safe for
// concurrent use on its own; the engine serializes access to it.
type StateStore struct {
	Users             map[string]*models.UserRecord
	Sessions          map[string]*models.Session
	WalletConnections map[string]models.WalletConnection
	Settings          models.GlobalSettings
}

// New returns an empty store with the given global settings.
func New(settings models.GlobalSettings) *StateStore {
	return &StateStore{
		Users:             make(map[string]*models.UserRecord),
		Sessions:          make(map[string]*models.Session),
		WalletConnections: make(map[string]models.WalletConnection),
		Settings:          settings,
	}
}

// User returns the record for a wallet address, or nil.
func (s *StateStore) User(address string) *models.UserRecord {
	return s.Users[address]
}

// GetOrCreateUser returns the record for address, creating one seeded with
// the configured starting balance if it does not exist. The second return
// reports whether a new record was created.
func (s *StateStore) GetOrCreateUser(address string, now time.Time) (*models.UserRecord, bool) {
	if u, ok := s.Users[address]; ok {
		return u, false
	}
	u := NewUserRecord(address, now, s.Settings)
	s.Users[address] = u
	return u, true
}

// NewUserRecord builds a fresh user record seeded per the global settings.
func NewUserRecord(address string, now time.Time, settings models.GlobalSettings) *models.UserRecord {
	return &models.UserRecord{
		WalletAddress: address,
		Balance: models.DualBalance{
			Primary:     settings.StartingBalance,
			Token:       decimal.Zero,
			LastUpdated: now,
		},
		StakingPools: []models.StakingPool{},
		Achievements: []models.Achievement{},
		Transactions: []models.Transaction{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Snapshot is the durable full-state checkpoint payload. Its JSON encoding is
// the upgrade/persistence contract: fields are only ever added, and added
// fields must decode as their zero value from older payloads.
type Snapshot struct {
	Version           int                                `json:"version"`
	TakenAt           time.Time                          `json:"taken_at"`
	Users             map[string]*models.UserRecord      `json:"users"`
	Sessions          map[string]*models.Session         `json:"sessions"`
	WalletConnections map[string]models.WalletConnection `json:"wallet_connections"`
	Settings          models.GlobalSettings              `json:"settings"`
}

// Encode serializes the whole aggregate. The caller must hold whatever lock
// guards the store for the duration of the call.
func (s *StateStore) Encode(takenAt time.Time) ([]byte, error) {
	snap := Snapshot{
		Version:           SnapshotVersion,
		TakenAt:           takenAt,
		Users:             s.Users,
		Sessions:          s.Sessions,
		WalletConnections: s.WalletConnections,
		Settings:          s.Settings,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}

// Decode rebuilds a store from a checkpoint payload. Settings fields absent
// from older payloads fall back to defaults so adding a knob never breaks
// restore.
func Decode(payload []byte, defaults models.GlobalSettings) (*StateStore, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}

	s := &StateStore{
		Users:             snap.Users,
		Sessions:          snap.Sessions,
		WalletConnections: snap.WalletConnections,
		Settings:          mergeSettings(snap.Settings, defaults),
	}
	if s.Users == nil {
		s.Users = make(map[string]*models.UserRecord)
	}
	if s.Sessions == nil {
		s.Sessions = make(map[string]*models.Session)
	}
	if s.WalletConnections == nil {
		s.WalletConnections = make(map[string]models.WalletConnection)
	}
	return s, nil
}

// mergeSettings fills zero-valued settings fields from defaults.
func mergeSettings(loaded, defaults models.GlobalSettings) models.GlobalSettings {
	if loaded.ExchangeRate.IsZero() {
		loaded.ExchangeRate = defaults.ExchangeRate
	}
	if len(loaded.StakingAPYs) == 0 {
		loaded.StakingAPYs = defaults.StakingAPYs
	}
	if loaded.SessionTimeout == 0 {
		loaded.SessionTimeout = defaults.SessionTimeout
	}
	if loaded.AuthSkew == 0 {
		loaded.AuthSkew = defaults.AuthSkew
	}
	if loaded.StartingBalance.IsZero() {
		loaded.StartingBalance = defaults.StartingBalance
	}
	if len(loaded.AchievementCatalog) == 0 {
		loaded.AchievementCatalog = defaults.AchievementCatalog
	}
	return loaded
}
