package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StakingStatus is the lifecycle state of a staking pool.
type StakingStatus string

const (
	StakingActive  StakingStatus = "active"
	StakingMatured StakingStatus = "matured"
	StakingClaimed StakingStatus = "claimed"
)

// StakingPool is a single staking position. StakedAmount and APY are fixed at
// creation. AccruedRewards is a presentation value refreshed on read; the
// authoritative reward is always recomputed from the timestamps.
type StakingPool struct {
	ID             string          `json:"id"`
	StakedAmount   decimal.Decimal `json:"staked_amount"`
	APY            decimal.Decimal `json:"apy"`
	StartTime      time.Time       `json:"start_time"`
	MaturityTime   time.Time       `json:"maturity_time"`
	AccruedRewards decimal.Decimal `json:"accrued_rewards"`
	Status         StakingStatus   `json:"status"`
}

// Matured reports whether the pool has reached its maturity time.
func (p *StakingPool) Matured(now time.Time) bool {
	return !now.Before(p.MaturityTime)
}
