package staking

import (
	"fmt"
	"time"

	"wallet-staking-go/internal/ledger"
	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// rewardPlaces is the rounding applied to accrued reward values.
const rewardPlaces = 8

var hundred = decimal.NewFromInt(100)

// Stake locks amount of the user's primary balance into a new pool. The APY
// is fixed from the settings table at creation and never changes afterwards.
func Stake(user *models.UserRecord, amount decimal.Decimal, durationDays int, settings models.GlobalSettings, now time.Time) (*models.StakingPool, error) {
	apy, ok := settings.StakingAPYs[durationDays]
	if !ok {
		return nil, fmt.Errorf("stake for %d days: %w", durationDays, store.ErrInvalidDuration)
	}

	if _, err := ledger.Debit(user, models.CurrencyPrimary, amount, models.TxStake, now); err != nil {
		return nil, err
	}

	pool := models.StakingPool{
		ID:             uuid.New().String(),
		StakedAmount:   amount,
		APY:            apy,
		StartTime:      now,
		MaturityTime:   now.Add(time.Duration(durationDays) * 24 * time.Hour),
		AccruedRewards: decimal.Zero,
		Status:         models.StakingActive,
	}
	user.StakingPools = append(user.StakingPools, pool)

	zap.L().Info("Staking pool created",
		zap.String("wallet", user.WalletAddress),
		zap.String("pool_id", pool.ID),
		zap.String("amount", amount.String()),
		zap.Int("duration_days", durationDays),
		zap.String("apy", apy.String()),
		zap.Time("maturity", pool.MaturityTime))

	return &user.StakingPools[len(user.StakingPools)-1], nil
}

// Accrue computes the rewards earned by a pool at the given instant. It is a
// pure function: the reward grows linearly from zero at start to the full
// staked × apy/100 at maturity, and is capped there.
func Accrue(pool *models.StakingPool, now time.Time) decimal.Decimal {
	if !now.After(pool.StartTime) {
		return decimal.Zero
	}

	full := pool.StakedAmount.Mul(pool.APY).Div(hundred)
	if pool.Matured(now) {
		return full.Round(rewardPlaces)
	}

	elapsed := decimal.NewFromInt(now.Sub(pool.StartTime).Nanoseconds())
	total := decimal.NewFromInt(pool.MaturityTime.Sub(pool.StartTime).Nanoseconds())
	return full.Mul(elapsed).Div(total).Round(rewardPlaces)
}

// Refresh updates a pool's presentation fields for the given instant: the
// lazily-derived active→matured transition and the current accrued rewards.
// A claimed pool is immutable and is left alone.
func Refresh(pool *models.StakingPool, now time.Time) {
	if pool.Status == models.StakingClaimed {
		return
	}
	if pool.Matured(now) {
		pool.Status = models.StakingMatured
	}
	pool.AccruedRewards = Accrue(pool, now)
}

// Claim pays out a matured pool: principal plus full rewards back to the
// primary balance. Claiming is terminal; a claimed pool stays in the history
// but can never pay again.
func Claim(user *models.UserRecord, poolID string, now time.Time) (*models.Transaction, error) {
	pool := user.Pool(poolID)
	if pool == nil {
		return nil, fmt.Errorf("claim pool %s: %w", poolID, store.ErrPoolNotFound)
	}
	if pool.Status == models.StakingClaimed {
		return nil, fmt.Errorf("claim pool %s: %w", poolID, store.ErrAlreadyClaimed)
	}
	if !pool.Matured(now) {
		return nil, fmt.Errorf("claim pool %s before maturity %s: %w",
			poolID, pool.MaturityTime.Format(time.RFC3339), store.ErrPoolNotMatured)
	}

	rewards := Accrue(pool, now)
	payout := pool.StakedAmount.Add(rewards)

	tx, err := ledger.Credit(user, models.CurrencyPrimary, payout, models.TxStake, now)
	if err != nil {
		return nil, err
	}

	pool.Status = models.StakingClaimed
	pool.AccruedRewards = rewards

	zap.L().Info("Staking pool claimed",
		zap.String("wallet", user.WalletAddress),
		zap.String("pool_id", pool.ID),
		zap.String("principal", pool.StakedAmount.String()),
		zap.String("rewards", rewards.String()),
		zap.String("payout", payout.String()),
		zap.String("tx_id", tx.ID))

	return tx, nil
}
