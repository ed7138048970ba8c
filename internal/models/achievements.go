package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AchievementCategory groups achievements by the activity that earns them.
type AchievementCategory string

const (
	CategoryTrading  AchievementCategory = "trading"
	CategorySaving   AchievementCategory = "saving"
	CategoryStaking  AchievementCategory = "staking"
	CategoryLearning AchievementCategory = "learning"
)

// AchievementRarity is the display tier of an achievement.
type AchievementRarity string

const (
	RarityCommon    AchievementRarity = "common"
	RarityRare      AchievementRarity = "rare"
	RarityEpic      AchievementRarity = "epic"
	RarityLegendary AchievementRarity = "legendary"
)

// AchievementTrigger names the condition kind an achievement definition checks.
type AchievementTrigger string

const (
	TriggerFirstDeposit   AchievementTrigger = "first_deposit"
	TriggerFirstExchange  AchievementTrigger = "first_exchange"
	TriggerFirstStake     AchievementTrigger = "first_stake"
	TriggerStakeCount     AchievementTrigger = "stake_count"
	TriggerTxCount        AchievementTrigger = "transaction_count"
	TriggerPrimaryAtLeast AchievementTrigger = "primary_balance_at_least"
	TriggerTokenAtLeast   AchievementTrigger = "token_balance_at_least"
)

// AchievementReward is an optional one-time payout for unlocking.
type AchievementReward struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// AchievementDef is a catalog entry: the static definition of one achievement.
type AchievementDef struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Rarity      AchievementRarity   `json:"rarity"`
	Trigger     AchievementTrigger  `json:"trigger"`
	Threshold   int64               `json:"threshold,omitempty"`
	Reward      *AchievementReward  `json:"reward,omitempty"`
}

// Achievement is per-user unlock state. Identity fields are copied from the
// catalog definition so snapshots stay self-describing across catalog edits.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    AchievementCategory `json:"category"`
	Rarity      AchievementRarity   `json:"rarity"`
	Unlocked    bool                `json:"unlocked"`
	UnlockedAt  *time.Time          `json:"unlocked_at,omitempty"`
	Reward      *AchievementReward  `json:"reward,omitempty"`
	RewardPaid  bool                `json:"reward_paid,omitempty"`
}
