package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-staking-go/internal/api"
	"wallet-staking-go/internal/auth"
	"wallet-staking-go/internal/auth/ethverify"
	"wallet-staking-go/internal/clock"
	"wallet-staking-go/internal/common"
	"wallet-staking-go/internal/config"
	"wallet-staking-go/internal/engine"

	"go.uber.org/zap"
)

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	allowAllSignatures := flag.Bool("allow-all-signatures", false, "Skip signature verification (local development only)")
	flag.Parse()

	zap.L().Info("Starting wallet staking server")

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings, err := common.LoadSettings(cfg.Engine)
	if err != nil {
		zap.L().Fatal("Failed to load settings", zap.Error(err))
	}

	checkpoints, err := common.InitializeCheckpointStore(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to open checkpoint store", zap.Error(err))
	}
	defer checkpoints.Close()

	var verifier auth.Verifier = ethverify.New()
	if *allowAllSignatures {
		zap.L().Warn("Signature verification DISABLED (--allow-all-signatures)")
		verifier = auth.AllowAll{}
	}

	eng, err := engine.Restore(ctx, clock.System(), verifier, checkpoints, settings, cfg.Database.KeepSnapshots)
	if err != nil {
		zap.L().Fatal("Failed to restore engine state", zap.Error(err))
	}

	service := api.NewService(eng, cfg.Engine.RequireAuth)
	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      service.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zap.L().Info("HTTP API listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Periodic checkpoints between the boot and shutdown ones.
	go func() {
		ticker := time.NewTicker(cfg.Engine.CheckpointInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := eng.Checkpoint(ctx); err != nil {
					zap.L().Error("Periodic checkpoint failed", zap.Error(err))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP shutdown failed", zap.Error(err))
	}

	// Final checkpoint so no state outlives the process only in memory.
	if err := eng.Checkpoint(shutdownCtx); err != nil {
		zap.L().Error("Final checkpoint failed", zap.Error(err))
	} else {
		zap.L().Info("Final checkpoint written")
	}

	zap.L().Info("Server stopped")
}
