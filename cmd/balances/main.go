package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"wallet-staking-go/internal/common"
	"wallet-staking-go/internal/config"
	"wallet-staking-go/internal/models"
	"wallet-staking-go/internal/staking"
	"wallet-staking-go/internal/state"

	"go.uber.org/zap"
)

type reportStats struct {
	totalUsers  int
	totalPools  int
	activePools int
}

func printBalance(balance models.DualBalance) {
	fmt.Printf("│  Rupees: %s  Tokens: %s  (updated: %s)\n",
		common.FormatAmount(balance.Primary),
		common.FormatAmount(balance.Token),
		balance.LastUpdated.Format("2006-01-02 15:04:05"))
}

func printPool(pool models.StakingPool, isLast bool) {
	symbol := common.BoxPrefix(isLast)
	fmt.Printf("%s %-8s staked %s at %s%% APY, rewards %s, matures %s\n",
		symbol,
		pool.Status,
		common.FormatAmount(pool.StakedAmount),
		pool.APY.String(),
		common.FormatAmount(pool.AccruedRewards),
		pool.MaturityTime.Format("2006-01-02 15:04:05"))
}

func printUser(user *models.UserRecord, now time.Time) int {
	fmt.Printf("\n┌─ Wallet: %s\n", user.WalletAddress)
	fmt.Printf("│  Transactions: %d  Achievements: %d  Last activity: %s\n",
		len(user.Transactions),
		len(user.Achievements),
		user.LastActivity.Format("2006-01-02 15:04:05"))
	printBalance(user.Balance)

	active := 0
	for i, pool := range user.StakingPools {
		staking.Refresh(&pool, now)
		if pool.Status == models.StakingActive {
			active++
		}
		printPool(pool, i == len(user.StakingPools)-1)
	}
	return active
}

func generateReport(st *state.StateStore, walletFilter string, now time.Time) reportStats {
	addresses := make([]string, 0, len(st.Users))
	for address := range st.Users {
		if walletFilter != "" && address != walletFilter {
			continue
		}
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	stats := reportStats{}
	for _, address := range addresses {
		user := st.Users[address]
		stats.totalUsers++
		stats.totalPools += len(user.StakingPools)
		stats.activePools += printUser(user, now)
	}
	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	walletFlag := flag.String("wallet", "", "Filter by specific wallet address (optional)")
	flag.Parse()

	logger.Info("Starting snapshot report")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	settings, err := common.LoadSettings(cfg.Engine)
	if err != nil {
		logger.Fatal("Failed to load settings", zap.Error(err))
	}

	logger.Info("Opening checkpoint store", zap.String("path", cfg.Database.Path))
	checkpoints, err := common.InitializeCheckpointStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open checkpoint store", zap.Error(err))
	}
	defer checkpoints.Close()

	payload, err := checkpoints.LoadLatest(ctx)
	if err != nil {
		logger.Fatal("Failed to load latest snapshot", zap.Error(err))
	}

	st, err := state.Decode(payload, settings)
	if err != nil {
		logger.Fatal("Failed to decode snapshot", zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT", common.DefaultWidth)

	now := time.Now()
	stats := generateReport(st, *walletFlag, now)

	summary := fmt.Sprintf("SUMMARY: %d wallets, %d staking pools (%d active)",
		stats.totalUsers, stats.totalPools, stats.activePools)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Snapshot report completed",
		zap.Int("wallets", stats.totalUsers),
		zap.Int("pools", stats.totalPools),
		zap.Int("active_pools", stats.activePools))
}
