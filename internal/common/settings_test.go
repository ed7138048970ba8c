package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet-staking-go/internal/models"
)

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	settings, err := LoadSettings(models.EngineConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !settings.ExchangeRate.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("unexpected default exchange rate: %s", settings.ExchangeRate)
	}
	if !settings.StartingBalance.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("unexpected default starting balance: %s", settings.StartingBalance)
	}
	if settings.SessionTimeout != 24*time.Hour {
		t.Errorf("unexpected default session timeout: %v", settings.SessionTimeout)
	}
	if len(settings.StakingAPYs) != 3 {
		t.Errorf("expected 3 default APY tiers, got %d", len(settings.StakingAPYs))
	}
	if len(settings.AchievementCatalog) == 0 {
		t.Error("expected a built-in achievement catalog")
	}
}

func TestLoadSettingsFileOverrides(t *testing.T) {
	path := writeSettingsFile(t, `
exchange_rate: "0.25"
starting_balance: "1000"
session_timeout: 1h
staking_apys:
  7: "2.5"
`)

	settings, err := LoadSettings(models.EngineConfig{SettingsFile: path})
	if err != nil {
		t.Fatal(err)
	}
	if !settings.ExchangeRate.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("exchange rate not overridden: %s", settings.ExchangeRate)
	}
	if !settings.StartingBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("starting balance not overridden: %s", settings.StartingBalance)
	}
	if settings.SessionTimeout != time.Hour {
		t.Errorf("session timeout not overridden: %v", settings.SessionTimeout)
	}
	if len(settings.StakingAPYs) != 1 || !settings.StakingAPYs[7].Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("APY tiers not overridden: %v", settings.StakingAPYs)
	}
	// Untouched fields keep their defaults.
	if settings.AuthSkew != 5*time.Minute {
		t.Errorf("auth skew should keep its default: %v", settings.AuthSkew)
	}
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative rate", "exchange_rate: \"-1\""},
		{"garbage balance", "starting_balance: \"abc\""},
		{"zero timeout", "session_timeout: 0s"},
		{"bad duration tier", "staking_apys:\n  -5: \"3\""},
		{"bad apy", "staking_apys:\n  30: \"lots\""},
	}
	for _, tc := range cases {
		path := writeSettingsFile(t, tc.content)
		if _, err := LoadSettings(models.EngineConfig{SettingsFile: path}); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}
