package achievements

import (
	"time"

	"wallet-staking-go/internal/ledger"
	"wallet-staking-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventKind names the user activity that prompts an evaluation pass.
type EventKind string

const (
	EventDeposit  EventKind = "deposit"
	EventWithdraw EventKind = "withdraw"
	EventExchange EventKind = "exchange"
	EventStake    EventKind = "stake"
	EventClaim    EventKind = "claim"
)

// Evaluate checks the catalog against the user's history and unlocks every
// satisfied achievement that is not already unlocked. Unlocking is idempotent:
// the timestamp is set once and a defined reward is paid exactly once, through
// the ledger. Returns the definitions unlocked by this pass.
func Evaluate(user *models.UserRecord, event EventKind, catalog []models.AchievementDef, now time.Time) []models.AchievementDef {
	var unlocked []models.AchievementDef

	for _, def := range catalog {
		if !relevant(def.Trigger, event) {
			continue
		}
		existing := user.AchievementByID(def.ID)
		if existing != nil && existing.Unlocked {
			continue
		}
		if !satisfied(user, def) {
			continue
		}

		unlock(user, def, now)
		unlocked = append(unlocked, def)
	}

	return unlocked
}

// relevant filters triggers to the activity that can change their outcome.
// Balance-threshold triggers can flip on any balance movement.
func relevant(trigger models.AchievementTrigger, event EventKind) bool {
	switch trigger {
	case models.TriggerFirstDeposit:
		return event == EventDeposit
	case models.TriggerFirstExchange:
		return event == EventExchange
	case models.TriggerFirstStake, models.TriggerStakeCount:
		return event == EventStake
	default:
		return true
	}
}

func satisfied(user *models.UserRecord, def models.AchievementDef) bool {
	switch def.Trigger {
	case models.TriggerFirstDeposit:
		return user.CountTransactions(models.TxDeposit) >= 1
	case models.TriggerFirstExchange:
		return user.CountTransactions(models.TxExchange) >= 1
	case models.TriggerFirstStake:
		return len(user.StakingPools) >= 1
	case models.TriggerStakeCount:
		return int64(len(user.StakingPools)) >= def.Threshold
	case models.TriggerTxCount:
		return int64(len(user.Transactions)) >= def.Threshold
	case models.TriggerPrimaryAtLeast:
		return user.Balance.Primary.GreaterThanOrEqual(decimal.NewFromInt(def.Threshold))
	case models.TriggerTokenAtLeast:
		return user.Balance.Token.GreaterThanOrEqual(decimal.NewFromInt(def.Threshold))
	default:
		return false
	}
}

func unlock(user *models.UserRecord, def models.AchievementDef, now time.Time) {
	row := user.AchievementByID(def.ID)
	if row == nil {
		user.Achievements = append(user.Achievements, models.Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Category:    def.Category,
			Rarity:      def.Rarity,
			Reward:      def.Reward,
		})
		row = &user.Achievements[len(user.Achievements)-1]
	}

	unlockedAt := now
	row.Unlocked = true
	row.UnlockedAt = &unlockedAt

	if def.Reward != nil && !row.RewardPaid {
		// Reward credit cannot fail: catalog validation guarantees a
		// positive amount.
		if _, err := ledger.Credit(user, def.Reward.Currency, def.Reward.Amount, models.TxDeposit, now); err != nil {
			zap.L().Error("Achievement reward credit failed",
				zap.String("wallet", user.WalletAddress),
				zap.String("achievement_id", def.ID),
				zap.Error(err))
		} else {
			row.RewardPaid = true
		}
	}

	zap.L().Info("Achievement unlocked",
		zap.String("wallet", user.WalletAddress),
		zap.String("achievement_id", def.ID),
		zap.String("rarity", string(def.Rarity)))
}
