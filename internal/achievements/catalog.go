package achievements

import (
	"fmt"
	"os"
	"path/filepath"

	"wallet-staking-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// DefaultCatalog is the built-in achievement catalog. Content can be replaced
// wholesale by a YAML file (LoadCatalog); only the state transitions are core.
func DefaultCatalog() []models.AchievementDef {
	reward := func(c models.Currency, amount int64) *models.AchievementReward {
		return &models.AchievementReward{Currency: c, Amount: decimal.NewFromInt(amount)}
	}

	return []models.AchievementDef{
		{
			ID:          "first-deposit",
			Title:       "Money In The Bank",
			Description: "Make your first deposit",
			Category:    models.CategorySaving,
			Rarity:      models.RarityCommon,
			Trigger:     models.TriggerFirstDeposit,
			Reward:      reward(models.CurrencyPrimary, 100),
		},
		{
			ID:          "first-exchange",
			Title:       "Currency Trader",
			Description: "Complete your first exchange",
			Category:    models.CategoryTrading,
			Rarity:      models.RarityCommon,
			Trigger:     models.TriggerFirstExchange,
			Reward:      reward(models.CurrencyToken, 5),
		},
		{
			ID:          "first-stake",
			Title:       "Long Game",
			Description: "Open your first staking pool",
			Category:    models.CategoryStaking,
			Rarity:      models.RarityRare,
			Trigger:     models.TriggerFirstStake,
			Reward:      reward(models.CurrencyPrimary, 250),
		},
		{
			ID:          "stake-veteran",
			Title:       "Staking Veteran",
			Description: "Open five staking pools",
			Category:    models.CategoryStaking,
			Rarity:      models.RarityEpic,
			Trigger:     models.TriggerStakeCount,
			Threshold:   5,
			Reward:      reward(models.CurrencyPrimary, 1000),
		},
		{
			ID:          "busy-bee",
			Title:       "Busy Bee",
			Description: "Record twenty-five transactions",
			Category:    models.CategoryLearning,
			Rarity:      models.RarityRare,
			Trigger:     models.TriggerTxCount,
			Threshold:   25,
		},
		{
			ID:          "high-roller",
			Title:       "High Roller",
			Description: "Hold a primary balance of 50000",
			Category:    models.CategorySaving,
			Rarity:      models.RarityLegendary,
			Trigger:     models.TriggerPrimaryAtLeast,
			Threshold:   50000,
			Reward:      reward(models.CurrencyToken, 100),
		},
		{
			ID:          "token-collector",
			Title:       "Token Collector",
			Description: "Hold a token balance of 1000",
			Category:    models.CategoryTrading,
			Rarity:      models.RarityEpic,
			Threshold:   1000,
			Trigger:     models.TriggerTokenAtLeast,
		},
	}
}

// catalogFile is the YAML shape of an achievement catalog override. Amounts
// are strings so they parse losslessly into decimals.
type catalogFile struct {
	Achievements []struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Category    string `yaml:"category"`
		Rarity      string `yaml:"rarity"`
		Trigger     string `yaml:"trigger"`
		Threshold   int64  `yaml:"threshold"`
		Reward      *struct {
			Currency string `yaml:"currency"`
			Amount   string `yaml:"amount"`
		} `yaml:"reward"`
	} `yaml:"achievements"`
}

var (
	validCategories = map[models.AchievementCategory]bool{
		models.CategoryTrading:  true,
		models.CategorySaving:   true,
		models.CategoryStaking:  true,
		models.CategoryLearning: true,
	}
	validRarities = map[models.AchievementRarity]bool{
		models.RarityCommon:    true,
		models.RarityRare:      true,
		models.RarityEpic:      true,
		models.RarityLegendary: true,
	}
	validTriggers = map[models.AchievementTrigger]bool{
		models.TriggerFirstDeposit:   true,
		models.TriggerFirstExchange:  true,
		models.TriggerFirstStake:     true,
		models.TriggerStakeCount:     true,
		models.TriggerTxCount:        true,
		models.TriggerPrimaryAtLeast: true,
		models.TriggerTokenAtLeast:   true,
	}
)

// LoadCatalog reads a full replacement catalog from a YAML file.
func LoadCatalog(file string) ([]models.AchievementDef, error) {
	path := file
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, file)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", file, err)
	}

	var parsed catalogFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", file, err)
	}

	seen := make(map[string]bool, len(parsed.Achievements))
	defs := make([]models.AchievementDef, 0, len(parsed.Achievements))
	for i, entry := range parsed.Achievements {
		if entry.ID == "" {
			return nil, fmt.Errorf("achievement at index %d missing id", i)
		}
		if seen[entry.ID] {
			return nil, fmt.Errorf("duplicate achievement id %q", entry.ID)
		}
		seen[entry.ID] = true

		def := models.AchievementDef{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Category:    models.AchievementCategory(entry.Category),
			Rarity:      models.AchievementRarity(entry.Rarity),
			Trigger:     models.AchievementTrigger(entry.Trigger),
			Threshold:   entry.Threshold,
		}
		if !validCategories[def.Category] {
			return nil, fmt.Errorf("achievement %q: unknown category %q", entry.ID, entry.Category)
		}
		if !validRarities[def.Rarity] {
			return nil, fmt.Errorf("achievement %q: unknown rarity %q", entry.ID, entry.Rarity)
		}
		if !validTriggers[def.Trigger] {
			return nil, fmt.Errorf("achievement %q: unknown trigger %q", entry.ID, entry.Trigger)
		}

		if entry.Reward != nil {
			amount, err := decimal.NewFromString(entry.Reward.Amount)
			if err != nil || !amount.IsPositive() {
				return nil, fmt.Errorf("achievement %q: invalid reward amount %q", entry.ID, entry.Reward.Amount)
			}
			currency := models.Currency(entry.Reward.Currency)
			if currency != models.CurrencyPrimary && currency != models.CurrencyToken {
				return nil, fmt.Errorf("achievement %q: unknown reward currency %q", entry.ID, entry.Reward.Currency)
			}
			def.Reward = &models.AchievementReward{Currency: currency, Amount: amount}
		}

		defs = append(defs, def)
	}

	return defs, nil
}
