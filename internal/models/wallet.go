package models

import (
	"strings"
	"time"
)

// WalletKind identifies the wallet provider a user connected with.
type WalletKind string

const (
	WalletMetaMask      WalletKind = "metamask"
	WalletPhantom       WalletKind = "phantom"
	WalletCoinbase      WalletKind = "coinbase"
	WalletWalletConnect WalletKind = "walletconnect"
	WalletInjected      WalletKind = "injected"
)

// ParseWalletKind maps a client-supplied provider name to a WalletKind.
// Unknown providers are treated as a generic injected wallet.
func ParseWalletKind(s string) WalletKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metamask":
		return WalletMetaMask
	case "phantom":
		return WalletPhantom
	case "coinbase":
		return WalletCoinbase
	case "walletconnect":
		return WalletWalletConnect
	default:
		return WalletInjected
	}
}

// WalletConnection is the transient connection metadata for a wallet.
type WalletConnection struct {
	Address     string     `json:"address"`
	ChainID     string     `json:"chain_id"`
	Kind        WalletKind `json:"kind"`
	Balance     string     `json:"balance,omitempty"` // client-reported on-chain balance, opaque to the core
	ConnectedAt time.Time  `json:"connected_at"`
}

// WalletStatus is the read-only view returned by the wallet status query.
type WalletStatus struct {
	Connected bool       `json:"connected"`
	Address   string     `json:"address,omitempty"`
	Kind      WalletKind `json:"kind,omitempty"`
	Balance   string     `json:"balance,omitempty"`
	Error     string     `json:"error,omitempty"`
}
