package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet-staking-go/internal/achievements"
	"wallet-staking-go/internal/auth"
	"wallet-staking-go/internal/clock"
	"wallet-staking-go/internal/ledger"
	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/session"
	"wallet-staking-go/internal/staking"
	"wallet-staking-go/internal/state"
	"wallet-staking-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the authoritative state machine. Updates execute one at a time
// under the write lock and are all-or-nothing: every operation validates
// before mutating, samples the clock exactly once, and applies entirely or
// not at all. Queries run concurrently under the read lock and never observe
// a half-applied update.
type Engine struct {
	mu sync.RWMutex

	clock       clock.Clock
	store       *state.StateStore
	sessions    *session.Manager
	auth        *auth.Authenticator
	checkpoints store.CheckpointStore
	keep        int
}

// New builds an engine over a fresh or restored state store.
func New(clk clock.Clock, st *state.StateStore, verifier auth.Verifier, checkpoints store.CheckpointStore, keepSnapshots int) *Engine {
	sessions := session.NewManager(st)
	return &Engine{
		clock:       clk,
		store:       st,
		sessions:    sessions,
		auth:        auth.NewAuthenticator(verifier, sessions, st),
		checkpoints: checkpoints,
		keep:        keepSnapshots,
	}
}

// Restore builds an engine from the latest checkpoint, or from an empty store
// with the given settings when no checkpoint exists yet.
func Restore(ctx context.Context, clk clock.Clock, verifier auth.Verifier, checkpoints store.CheckpointStore, defaults models.GlobalSettings, keepSnapshots int) (*Engine, error) {
	payload, err := checkpoints.LoadLatest(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		zap.L().Info("No checkpoint found, starting with empty state")
		return New(clk, state.New(defaults), verifier, checkpoints, keepSnapshots), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	st, err := state.Decode(payload, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to restore state: %w", err)
	}
	zap.L().Info("State restored from checkpoint",
		zap.Int("users", len(st.Users)),
		zap.Int("sessions", len(st.Sessions)))
	return New(clk, st, verifier, checkpoints, keepSnapshots), nil
}

// ---- wallet operations ----

// ConnectWallet registers connection metadata for a wallet address.
func (e *Engine) ConnectWallet(address, chainID, walletKind string) (models.WalletConnection, error) {
	if address == "" {
		return models.WalletConnection{}, fmt.Errorf("connect wallet: address is required")
	}
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	conn := models.WalletConnection{
		Address:     address,
		ChainID:     chainID,
		Kind:        models.ParseWalletKind(walletKind),
		ConnectedAt: now,
	}
	e.store.WalletConnections[address] = conn

	zap.L().Info("Wallet connected",
		zap.String("wallet", address),
		zap.String("kind", string(conn.Kind)),
		zap.String("chain_id", chainID))
	return conn, nil
}

// WalletStatus reports whether a wallet is currently connected.
func (e *Engine) WalletStatus(address string) models.WalletStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	conn, ok := e.store.WalletConnections[address]
	if !ok {
		return models.WalletStatus{Connected: false}
	}
	return models.WalletStatus{
		Connected: true,
		Address:   conn.Address,
		Kind:      conn.Kind,
		Balance:   conn.Balance,
	}
}

// AuthenticateWeb3 verifies a signed login request and opens a session.
func (e *Engine) AuthenticateWeb3(address, signature, message string, timestamp time.Time) (*models.AuthResult, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.auth.Authenticate(address, signature, message, timestamp, now)
	if err != nil {
		return nil, err
	}
	userCopy := cloneUser(result.User)
	return &models.AuthResult{User: &userCopy, Token: result.Token, IsNewUser: result.IsNewUser}, nil
}

// ValidateSession checks a token without extending it.
func (e *Engine) ValidateSession(token string) (models.Session, error) {
	now := e.clock.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	s, err := e.sessions.Validate(token, now)
	if err != nil {
		return models.Session{}, err
	}
	return *s, nil
}

// TouchSession validates a token and slides its expiry window.
func (e *Engine) TouchSession(token string) (models.Session, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessions.Touch(token, now)
	if err != nil {
		return models.Session{}, err
	}
	return *s, nil
}

// Logout closes the session immediately.
func (e *Engine) Logout(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions.Close(token)
}

// ---- ledger operations ----

// Deposit credits the primary balance.
func (e *Engine) Deposit(address string, amount decimal.Decimal) (models.Transaction, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.user(address)
	if err != nil {
		return models.Transaction{}, err
	}

	tx, err := ledger.Credit(user, models.CurrencyPrimary, amount, models.TxDeposit, now)
	if err != nil {
		return models.Transaction{}, err
	}

	e.finishUpdate(user, achievements.EventDeposit, now)
	return *tx, nil
}

// Withdraw debits the primary balance.
func (e *Engine) Withdraw(address string, amount decimal.Decimal) (models.Transaction, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.user(address)
	if err != nil {
		return models.Transaction{}, err
	}

	tx, err := ledger.Debit(user, models.CurrencyPrimary, amount, models.TxWithdraw, now)
	if err != nil {
		return models.Transaction{}, err
	}

	e.finishUpdate(user, achievements.EventWithdraw, now)
	return *tx, nil
}

// Exchange converts between the two denominations at the configured rate.
func (e *Engine) Exchange(address string, amount decimal.Decimal, from models.Currency) (models.ExchangeResult, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.user(address)
	if err != nil {
		return models.ExchangeResult{}, err
	}

	result, err := ledger.Exchange(user, from, amount, e.store.Settings.ExchangeRate, now)
	if err != nil {
		return models.ExchangeResult{}, err
	}

	e.finishUpdate(user, achievements.EventExchange, now)
	return *result, nil
}

// Balance returns the user's dual balance.
func (e *Engine) Balance(address string) (models.DualBalance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	user := e.store.User(address)
	if user == nil {
		return models.DualBalance{}, fmt.Errorf("balance for %s: %w", address, store.ErrUserNotFound)
	}
	return user.Balance, nil
}

// TransactionHistory returns the append-only transaction log, oldest first.
func (e *Engine) TransactionHistory(address string) ([]models.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	user := e.store.User(address)
	if user == nil {
		return nil, fmt.Errorf("transactions for %s: %w", address, store.ErrUserNotFound)
	}

	history := make([]models.Transaction, len(user.Transactions))
	copy(history, user.Transactions)
	return history, nil
}

// ---- staking operations ----

// Stake opens a new staking pool against the primary balance.
func (e *Engine) Stake(address string, amount decimal.Decimal, durationDays int) (models.StakingPool, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.user(address)
	if err != nil {
		return models.StakingPool{}, err
	}

	pool, err := staking.Stake(user, amount, durationDays, e.store.Settings, now)
	if err != nil {
		return models.StakingPool{}, err
	}

	e.finishUpdate(user, achievements.EventStake, now)
	return *pool, nil
}

// ClaimStake pays out a matured pool.
func (e *Engine) ClaimStake(address, poolID string) (models.Transaction, error) {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.user(address)
	if err != nil {
		return models.Transaction{}, err
	}

	tx, err := staking.Claim(user, poolID, now)
	if err != nil {
		return models.Transaction{}, err
	}

	e.finishUpdate(user, achievements.EventClaim, now)
	return *tx, nil
}

// Pools returns the user's staking pools with maturity and rewards evaluated
// at the current instant. Maturity is derived on read; the stored records are
// not mutated by a query.
func (e *Engine) Pools(address string) ([]models.StakingPool, error) {
	now := e.clock.Now()

	e.mu.RLock()
	defer e.mu.RUnlock()

	user := e.store.User(address)
	if user == nil {
		return nil, fmt.Errorf("pools for %s: %w", address, store.ErrUserNotFound)
	}

	pools := make([]models.StakingPool, len(user.StakingPools))
	copy(pools, user.StakingPools)
	for i := range pools {
		staking.Refresh(&pools[i], now)
	}
	return pools, nil
}

// ---- achievements ----

// Achievements returns the user's unlock states.
func (e *Engine) Achievements(address string) ([]models.Achievement, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	user := e.store.User(address)
	if user == nil {
		return nil, fmt.Errorf("achievements for %s: %w", address, store.ErrUserNotFound)
	}

	list := make([]models.Achievement, len(user.Achievements))
	copy(list, user.Achievements)
	return list, nil
}

// ---- persistence ----

// Checkpoint serializes the full state aggregate to the checkpoint store.
// Expired sessions are swept first so snapshots carry no dead grants.
func (e *Engine) Checkpoint(ctx context.Context) error {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions.PruneExpired(now)

	payload, err := e.store.Encode(now)
	if err != nil {
		return err
	}
	if err := e.checkpoints.Save(ctx, payload, now); err != nil {
		return err
	}
	if err := e.checkpoints.Prune(ctx, e.keep); err != nil {
		zap.L().Warn("Failed to prune old snapshots", zap.Error(err))
	}
	return nil
}

// Settings returns a copy of the current global settings.
func (e *Engine) Settings() models.GlobalSettings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Settings
}

// ---- helpers ----

// user resolves the acting user for an update.
func (e *Engine) user(address string) (*models.UserRecord, error) {
	user := e.store.User(address)
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", address, store.ErrUserNotFound)
	}
	return user, nil
}

// finishUpdate runs the bookkeeping shared by every successful update:
// activity stamp and achievement evaluation.
func (e *Engine) finishUpdate(user *models.UserRecord, event achievements.EventKind, now time.Time) {
	user.LastActivity = now
	achievements.Evaluate(user, event, e.store.Settings.AchievementCatalog, now)
}

// cloneUser deep-copies a record so callers cannot reach engine-owned state.
func cloneUser(u *models.UserRecord) models.UserRecord {
	c := *u
	c.StakingPools = append([]models.StakingPool(nil), u.StakingPools...)
	c.Achievements = append([]models.Achievement(nil), u.Achievements...)
	c.Transactions = append([]models.Transaction(nil), u.Transactions...)
	return c
}
