package auth

import (
	"fmt"
	"time"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/session"
	"wallet-staking-go/internal/state"
	"wallet-staking-go/internal/store"

	"go.uber.org/zap"
)

// Verifier checks that signature was produced over message by the holder of
// the wallet address. Implementations live outside the core; the engine is
// wired with one at startup.
type Verifier interface {
	Verify(address, message, signature string) bool
}

// AllowAll accepts every signature. For tests and local development only.
type AllowAll struct{}

func (AllowAll) Verify(_, _, _ string) bool { return true }

// Authenticator performs wallet authentication: replay-window check,
// signature verification, user lookup-or-create and session issuance.
type Authenticator struct {
	verifier Verifier
	sessions *session.Manager
	store    *state.StateStore
}

func NewAuthenticator(verifier Verifier, sessions *session.Manager, s *state.StateStore) *Authenticator {
	return &Authenticator{verifier: verifier, sessions: sessions, store: s}
}

// Authenticate validates the request and opens a session. Verification or
// freshness failure mutates nothing. New users are seeded with the configured
// starting balance.
func (a *Authenticator) Authenticate(address, signature, message string, timestamp, now time.Time) (*models.AuthResult, error) {
	skew := a.store.Settings.AuthSkew
	drift := now.Sub(timestamp)
	if drift < -skew || drift > skew {
		return nil, fmt.Errorf("auth request for %s timestamped %s at %s: %w",
			address, timestamp.Format(time.RFC3339), now.Format(time.RFC3339), store.ErrStaleRequest)
	}

	if !a.verifier.Verify(address, message, signature) {
		zap.L().Warn("Signature verification failed", zap.String("wallet", address))
		return nil, fmt.Errorf("auth request for %s: %w", address, store.ErrInvalidSignature)
	}

	user, created := a.store.GetOrCreateUser(address, now)
	user.LastActivity = now

	kind := models.WalletInjected
	chainID := ""
	if conn, ok := a.store.WalletConnections[address]; ok {
		kind = conn.Kind
		chainID = conn.ChainID
	}
	s := a.sessions.Open(address, kind, chainID, now)

	zap.L().Info("Wallet authenticated",
		zap.String("wallet", address),
		zap.Bool("is_new_user", created))

	return &models.AuthResult{
		User:      user,
		Token:     s.Token,
		IsNewUser: created,
	}, nil
}
