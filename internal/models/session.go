package models

import "time"

// Session is a time-bounded authentication grant tied to a wallet address.
// A wallet holds at most one live session; opening a new one evicts the old.
type Session struct {
	Token         string     `json:"token"`
	WalletAddress string     `json:"wallet_address"`
	Kind          WalletKind `json:"kind"`
	ChainID       string     `json:"chain_id"`
	ConnectedAt   time.Time  `json:"connected_at"`
	LastActivity  time.Time  `json:"last_activity"`
}

// Expired reports whether the session has been idle longer than timeout.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// AuthResult is returned by a successful web3 authentication.
type AuthResult struct {
	User      *UserRecord `json:"user"`
	Token     string      `json:"token"`
	IsNewUser bool        `json:"is_new_user"`
}
