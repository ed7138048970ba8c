package staking

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/store"
)

func testSettings() models.GlobalSettings {
	return models.GlobalSettings{
		StakingAPYs: map[int]decimal.Decimal{
			30:  decimal.NewFromInt(5),
			90:  decimal.NewFromInt(7),
			180: decimal.NewFromInt(10),
		},
	}
}

func testUser(primary int64, now time.Time) *models.UserRecord {
	return &models.UserRecord{
		WalletAddress: "0xabc",
		Balance: models.DualBalance{
			Primary:     decimal.NewFromInt(primary),
			Token:       decimal.Zero,
			LastUpdated: now,
		},
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestStake_CreatesActivePool(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	user := testUser(25000, now)

	pool, err := Stake(user, decimal.NewFromInt(1000), 30, testSettings(), now)
	if err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	if !user.Balance.Primary.Equal(decimal.NewFromInt(24000)) {
		t.Errorf("Expected primary 24000 after stake, got %s", user.Balance.Primary)
	}
	if pool.Status != models.StakingActive {
		t.Errorf("Expected active pool, got %s", pool.Status)
	}
	if !pool.APY.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected APY 5, got %s", pool.APY)
	}
	wantMaturity := now.Add(30 * 24 * time.Hour)
	if !pool.MaturityTime.Equal(wantMaturity) {
		t.Errorf("Expected maturity %v, got %v", wantMaturity, pool.MaturityTime)
	}
	if len(user.Transactions) != 1 || user.Transactions[0].Type != models.TxStake {
		t.Error("Stake must record one stake transaction")
	}
}

func TestStake_InvalidDuration(t *testing.T) {
	now := time.Now()
	user := testUser(25000, now)

	_, err := Stake(user, decimal.NewFromInt(1000), 45, testSettings(), now)
	if !errors.Is(err, store.ErrInvalidDuration) {
		t.Fatalf("Expected ErrInvalidDuration, got %v", err)
	}
	if !user.Balance.Primary.Equal(decimal.NewFromInt(25000)) {
		t.Error("Failed stake must not move the balance")
	}
	if len(user.StakingPools) != 0 {
		t.Error("Failed stake must not create a pool")
	}
}

func TestStake_InsufficientBalance(t *testing.T) {
	now := time.Now()
	user := testUser(500, now)

	_, err := Stake(user, decimal.NewFromInt(1000), 30, testSettings(), now)
	if !errors.Is(err, store.ErrInsufficientBalance) {
		t.Fatalf("Expected ErrInsufficientBalance, got %v", err)
	}
	if len(user.StakingPools) != 0 {
		t.Error("Failed stake must not create a pool")
	}
}

func TestAccrue_LinearAndCapped(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pool := &models.StakingPool{
		ID:           "p1",
		StakedAmount: decimal.NewFromInt(1000),
		APY:          decimal.NewFromInt(5),
		StartTime:    start,
		MaturityTime: start.Add(30 * 24 * time.Hour),
		Status:       models.StakingActive,
	}

	if !Accrue(pool, start).IsZero() {
		t.Error("Expected zero rewards at start")
	}

	half := Accrue(pool, start.Add(15*24*time.Hour))
	if !half.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected 25 at half duration, got %s", half)
	}

	atMaturity := Accrue(pool, pool.MaturityTime)
	if !atMaturity.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected full reward 50 at maturity, got %s", atMaturity)
	}

	// Capped past maturity.
	late := Accrue(pool, pool.MaturityTime.Add(90*24*time.Hour))
	if !late.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected capped reward 50 past maturity, got %s", late)
	}
}

func TestAccrue_Monotonic(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pool := &models.StakingPool{
		StakedAmount: decimal.NewFromInt(777),
		APY:          decimal.NewFromInt(7),
		StartTime:    start,
		MaturityTime: start.Add(90 * 24 * time.Hour),
		Status:       models.StakingActive,
	}

	prev := decimal.Zero
	for hours := 0; hours <= 100*24; hours += 17 {
		r := Accrue(pool, start.Add(time.Duration(hours)*time.Hour))
		if r.LessThan(prev) {
			t.Fatalf("Rewards decreased at +%dh: %s < %s", hours, r, prev)
		}
		prev = r
	}
}

func TestRefresh_LazyMaturity(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pool := &models.StakingPool{
		StakedAmount: decimal.NewFromInt(1000),
		APY:          decimal.NewFromInt(5),
		StartTime:    start,
		MaturityTime: start.Add(30 * 24 * time.Hour),
		Status:       models.StakingActive,
	}

	Refresh(pool, start.Add(24*time.Hour))
	if pool.Status != models.StakingActive {
		t.Errorf("Expected active before maturity, got %s", pool.Status)
	}

	Refresh(pool, pool.MaturityTime)
	if pool.Status != models.StakingMatured {
		t.Errorf("Expected matured at maturity, got %s", pool.Status)
	}

	// Claimed pools are immutable.
	pool.Status = models.StakingClaimed
	pool.AccruedRewards = decimal.NewFromInt(50)
	Refresh(pool, pool.MaturityTime.Add(time.Hour))
	if pool.Status != models.StakingClaimed || !pool.AccruedRewards.Equal(decimal.NewFromInt(50)) {
		t.Error("Refresh must not touch a claimed pool")
	}
}

func TestClaim_Lifecycle(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	user := testUser(25000, start)
	settings := testSettings()

	pool, err := Stake(user, decimal.NewFromInt(1000), 30, settings, start)
	if err != nil {
		t.Fatalf("Stake failed: %v", err)
	}

	// Claim at start fails: not matured.
	_, err = Claim(user, pool.ID, start)
	if !errors.Is(err, store.ErrPoolNotMatured) {
		t.Fatalf("Expected ErrPoolNotMatured, got %v", err)
	}
	if !user.Balance.Primary.Equal(decimal.NewFromInt(24000)) {
		t.Error("Failed claim must not move the balance")
	}

	// Claim at maturity: 24000 + 1000 + 50 = 25050.
	maturity := pool.MaturityTime
	tx, err := Claim(user, pool.ID, maturity)
	if err != nil {
		t.Fatalf("Claim at maturity failed: %v", err)
	}
	if !user.Balance.Primary.Equal(decimal.NewFromInt(25050)) {
		t.Errorf("Expected primary 25050 after claim, got %s", user.Balance.Primary)
	}
	if tx.Type != models.TxStake || tx.Status != models.TxConfirmed {
		t.Error("Claim must record a confirmed stake transaction")
	}
	if pool.Status != models.StakingClaimed {
		t.Errorf("Expected claimed pool, got %s", pool.Status)
	}

	// Second claim fails and pays nothing.
	_, err = Claim(user, pool.ID, maturity.Add(time.Hour))
	if !errors.Is(err, store.ErrAlreadyClaimed) {
		t.Fatalf("Expected ErrAlreadyClaimed, got %v", err)
	}
	if !user.Balance.Primary.Equal(decimal.NewFromInt(25050)) {
		t.Errorf("Second claim changed the balance: %s", user.Balance.Primary)
	}
}

func TestClaim_UnknownPool(t *testing.T) {
	now := time.Now()
	user := testUser(1000, now)

	_, err := Claim(user, "nope", now)
	if !errors.Is(err, store.ErrPoolNotFound) {
		t.Fatalf("Expected ErrPoolNotFound, got %v", err)
	}
}
