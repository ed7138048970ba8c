package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRecord is the full per-user aggregate, keyed by wallet address and owned
// exclusively by the state store.
type UserRecord struct {
	WalletAddress string        `json:"wallet_address"`
	Balance       DualBalance   `json:"balance"`
	StakingPools  []StakingPool `json:"staking_pools"`
	Achievements  []Achievement `json:"achievements"`
	Transactions  []Transaction `json:"transactions"`
	CreatedAt     time.Time     `json:"created_at"`
	LastActivity  time.Time     `json:"last_activity"`
}

// Pool returns the staking pool with the given id, or nil.
func (u *UserRecord) Pool(id string) *StakingPool {
	for i := range u.StakingPools {
		if u.StakingPools[i].ID == id {
			return &u.StakingPools[i]
		}
	}
	return nil
}

// AchievementByID returns the unlock state row for id, or nil.
func (u *UserRecord) AchievementByID(id string) *Achievement {
	for i := range u.Achievements {
		if u.Achievements[i].ID == id {
			return &u.Achievements[i]
		}
	}
	return nil
}

// CountTransactions returns how many confirmed transactions of the given type
// the user has in their history.
func (u *UserRecord) CountTransactions(t TransactionType) int64 {
	var n int64
	for i := range u.Transactions {
		if u.Transactions[i].Type == t && u.Transactions[i].Status == TxConfirmed {
			n++
		}
	}
	return n
}

// GlobalSettings is the singleton mutable configuration read by all
// components. APY percentages are keyed by staking duration in days.
type GlobalSettings struct {
	ExchangeRate       decimal.Decimal         `json:"exchange_rate"`
	StakingAPYs        map[int]decimal.Decimal `json:"staking_apys"`
	SessionTimeout     time.Duration           `json:"session_timeout"`
	AuthSkew           time.Duration           `json:"auth_skew"`
	StartingBalance    decimal.Decimal         `json:"starting_balance"`
	AchievementCatalog []AchievementDef        `json:"achievement_catalog"`
}
