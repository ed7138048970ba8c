package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet-staking-go/internal/models"
)

func testSettings() models.GlobalSettings {
	return models.GlobalSettings{
		ExchangeRate:    decimal.RequireFromString("0.1"),
		StartingBalance: decimal.NewFromInt(25000),
		SessionTimeout:  24 * time.Hour,
		AuthSkew:        5 * time.Minute,
		StakingAPYs:     map[int]decimal.Decimal{30: decimal.NewFromInt(5)},
	}
}

func TestNewUserSeededWithStartingBalance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(testSettings())

	user, created := s.GetOrCreateUser("0xabc", now)
	if !created {
		t.Fatal("expected a new user")
	}
	if !user.Balance.Primary.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("expected primary 25000, got %s", user.Balance.Primary)
	}
	if !user.Balance.Token.IsZero() {
		t.Errorf("expected zero token balance, got %s", user.Balance.Token)
	}

	again, created := s.GetOrCreateUser("0xabc", now.Add(time.Hour))
	if created {
		t.Error("expected existing user on second lookup")
	}
	if again != user {
		t.Error("expected the same record to be returned")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := New(testSettings())

	user, _ := s.GetOrCreateUser("0xabc", now)
	user.Balance.Set(models.CurrencyToken, decimal.NewFromInt(42), now)
	user.StakingPools = append(user.StakingPools, models.StakingPool{
		ID:           "pool-1",
		StakedAmount: decimal.NewFromInt(1000),
		APY:          decimal.NewFromInt(5),
		StartTime:    now,
		MaturityTime: now.Add(30 * 24 * time.Hour),
		Status:       models.StakingActive,
	})
	s.Sessions["tok"] = &models.Session{
		Token:         "tok",
		WalletAddress: "0xabc",
		ConnectedAt:   now,
		LastActivity:  now,
	}
	s.WalletConnections["0xabc"] = models.WalletConnection{
		Address:     "0xabc",
		Kind:        models.WalletMetaMask,
		ConnectedAt: now,
	}

	payload, err := s.Encode(now)
	if err != nil {
		t.Fatal(err)
	}

	restored, err := Decode(payload, testSettings())
	if err != nil {
		t.Fatal(err)
	}

	ru := restored.User("0xabc")
	if ru == nil {
		t.Fatal("user missing after round trip")
	}
	if !ru.Balance.Primary.Equal(user.Balance.Primary) || !ru.Balance.Token.Equal(user.Balance.Token) {
		t.Errorf("balance changed across round trip: %+v", ru.Balance)
	}
	if len(ru.StakingPools) != 1 || ru.StakingPools[0].ID != "pool-1" {
		t.Errorf("pools changed across round trip: %+v", ru.StakingPools)
	}
	if ru.StakingPools[0].Status != models.StakingActive {
		t.Errorf("pool status changed across round trip: %s", ru.StakingPools[0].Status)
	}
	if _, ok := restored.Sessions["tok"]; !ok {
		t.Error("session missing after round trip")
	}
	if restored.WalletConnections["0xabc"].Kind != models.WalletMetaMask {
		t.Error("wallet connection missing after round trip")
	}
	if !restored.Settings.ExchangeRate.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("settings changed across round trip: %s", restored.Settings.ExchangeRate)
	}
}

func TestDecodeFillsMissingSettingsFromDefaults(t *testing.T) {
	// A payload from an older build that carried no settings at all.
	payload, err := json.Marshal(map[string]any{
		"version": 1,
		"users": map[string]any{
			"0xabc": map[string]any{"wallet_address": "0xabc"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	restored, err := Decode(payload, testSettings())
	if err != nil {
		t.Fatal(err)
	}

	if !restored.Settings.ExchangeRate.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("exchange rate not defaulted: %s", restored.Settings.ExchangeRate)
	}
	if restored.Settings.SessionTimeout != 24*time.Hour {
		t.Errorf("session timeout not defaulted: %v", restored.Settings.SessionTimeout)
	}
	if restored.Sessions == nil || restored.WalletConnections == nil {
		t.Error("missing maps must decode as empty, not nil")
	}
	if restored.User("0xabc") == nil {
		t.Error("user missing from decoded payload")
	}
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	payload, err := json.Marshal(map[string]any{"version": SnapshotVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(payload, testSettings()); err == nil {
		t.Error("expected an error for a newer snapshot version")
	}
}
