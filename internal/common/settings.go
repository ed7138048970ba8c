package common

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallet-staking-go/internal/achievements"
	"wallet-staking-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// settingsFile is the YAML shape of an optional settings override file.
// Amounts and percentages are strings so they parse losslessly into decimals.
type settingsFile struct {
	ExchangeRate    string         `yaml:"exchange_rate"`
	StartingBalance string         `yaml:"starting_balance"`
	SessionTimeout  string         `yaml:"session_timeout"`
	AuthSkew        string         `yaml:"auth_skew"`
	StakingAPYs     map[int]string `yaml:"staking_apys"`
}

// DefaultSettings returns the built-in global settings: 0.1 primary→token
// exchange rate, 25000 starting primary balance, 24h session timeout, 5m auth
// skew window and the 30/90/180-day APY tiers.
func DefaultSettings() models.GlobalSettings {
	return models.GlobalSettings{
		ExchangeRate:    decimal.RequireFromString("0.1"),
		StartingBalance: decimal.NewFromInt(25000),
		SessionTimeout:  24 * time.Hour,
		AuthSkew:        5 * time.Minute,
		StakingAPYs: map[int]decimal.Decimal{
			30:  decimal.NewFromInt(5),
			90:  decimal.NewFromInt(7),
			180: decimal.NewFromInt(10),
		},
		AchievementCatalog: achievements.DefaultCatalog(),
	}
}

// LoadSettings builds the global settings from defaults, an optional YAML
// settings file and an optional YAML achievement catalog file.
func LoadSettings(cfg models.EngineConfig) (models.GlobalSettings, error) {
	settings := DefaultSettings()

	if cfg.SettingsFile != "" {
		if err := applySettingsFile(&settings, cfg.SettingsFile); err != nil {
			return settings, err
		}
	}

	if cfg.AchievementsFile != "" {
		catalog, err := achievements.LoadCatalog(cfg.AchievementsFile)
		if err != nil {
			return settings, err
		}
		settings.AchievementCatalog = catalog
	}

	return settings, nil
}

func applySettingsFile(settings *models.GlobalSettings, file string) error {
	data, err := os.ReadFile(resolvePath(file))
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", file, err)
	}

	var overrides settingsFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("unable to parse %s: %w", file, err)
	}

	if overrides.ExchangeRate != "" {
		rate, err := decimal.NewFromString(overrides.ExchangeRate)
		if err != nil || !rate.IsPositive() {
			return fmt.Errorf("invalid exchange_rate %q in %s", overrides.ExchangeRate, file)
		}
		settings.ExchangeRate = rate
	}

	if overrides.StartingBalance != "" {
		balance, err := decimal.NewFromString(overrides.StartingBalance)
		if err != nil || balance.IsNegative() {
			return fmt.Errorf("invalid starting_balance %q in %s", overrides.StartingBalance, file)
		}
		settings.StartingBalance = balance
	}

	if overrides.SessionTimeout != "" {
		timeout, err := time.ParseDuration(overrides.SessionTimeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("invalid session_timeout %q in %s", overrides.SessionTimeout, file)
		}
		settings.SessionTimeout = timeout
	}

	if overrides.AuthSkew != "" {
		skew, err := time.ParseDuration(overrides.AuthSkew)
		if err != nil || skew <= 0 {
			return fmt.Errorf("invalid auth_skew %q in %s", overrides.AuthSkew, file)
		}
		settings.AuthSkew = skew
	}

	if len(overrides.StakingAPYs) > 0 {
		apys := make(map[int]decimal.Decimal, len(overrides.StakingAPYs))
		for days, pct := range overrides.StakingAPYs {
			if days <= 0 {
				return fmt.Errorf("invalid staking duration %d in %s", days, file)
			}
			apy, err := decimal.NewFromString(pct)
			if err != nil || !apy.IsPositive() {
				return fmt.Errorf("invalid APY %q for %d days in %s", pct, days, file)
			}
			apys[days] = apy
		}
		settings.StakingAPYs = apys
	}

	return nil
}

func resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	wd, err := os.Getwd()
	if err != nil {
		return file
	}
	return filepath.Join(wd, file)
}
