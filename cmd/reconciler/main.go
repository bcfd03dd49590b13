package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/forumforge/reputation/internal/cache"
	"github.com/forumforge/reputation/internal/db"
	"github.com/forumforge/reputation/internal/karma"
	"github.com/forumforge/reputation/internal/trust"
	"github.com/forumforge/reputation/pkg/config"
	"github.com/forumforge/reputation/pkg/logging"
	"github.com/forumforge/reputation/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting Reputation Reconciler")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Redis is optional here; trust reads go straight to the database
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	reconciler := karma.NewReconciler(database)
	trustService := trust.NewService(database, redisCache, &cfg.Engine)

	// Cancel the run on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down reconciler...")
		cancel()
	}()

	interval := cfg.Engine.ReconcileInterval
	if interval <= 0 {
		// Single pass mode for cron-style deployment
		runPass(ctx, database, reconciler, trustService, logger)
		logger.Info("Reconciler exited")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runPass(ctx, database, reconciler, trustService, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Reconciler exited")
			return
		case <-ticker.C:
			runPass(ctx, database, reconciler, trustService, logger)
		}
	}
}

// runPass rebuilds karma counters from the vote ledger, then recomputes
// trust levels from the corrected counters. Per-user failures are logged
// and skipped.
func runPass(ctx context.Context, database *db.DB, reconciler *karma.Reconciler, trustService *trust.Service, logger *zap.Logger) {
	start := time.Now()

	users := db.NewUserRepository(db.NewRepository(database.DB))
	userIDs, err := users.ListIDs(ctx)
	if err != nil {
		logger.Error("Failed to list users for reconciliation", zap.Error(err))
		return
	}

	var karmaFailed int64
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := reconciler.RecomputeUserKarma(ctx, userID); err != nil {
			karmaFailed++
			logger.Error("Failed to reconcile user karma",
				zap.Int64("user_id", userID),
				zap.Error(err))
			continue
		}
		if err := reconciler.RecomputeUserCommunities(ctx, userID); err != nil {
			karmaFailed++
			logger.Error("Failed to reconcile community reputation",
				zap.Int64("user_id", userID),
				zap.Error(err))
		}
	}

	result, err := trustService.RecomputeAll(ctx)
	if err != nil {
		logger.Error("Trust recompute pass aborted", zap.Error(err))
		return
	}

	logger.Info("Reconciliation pass finished",
		zap.Int("users", len(userIDs)),
		zap.Int64("karma_failed", karmaFailed),
		zap.Int64("trust_successful", result.Successful),
		zap.Int64("trust_failed", result.Failed),
		zap.Duration("elapsed", time.Since(start)))
}
