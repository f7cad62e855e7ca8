package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentmart/agentmart/internal/api"
	"github.com/agentmart/agentmart/internal/cache"
	"github.com/agentmart/agentmart/internal/config"
	"github.com/agentmart/agentmart/internal/query"
	"github.com/agentmart/agentmart/internal/slogutil"
	"github.com/agentmart/agentmart/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the AgentMart catalog service",
		Long:  `Start the AgentMart catalog query and cache service using configuration from YAML file.`,
		RunE:  runServe,
	}

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Default().Error("failed to load config", "err", err)
		return err
	}

	logger := slogutil.Setup(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting agentmart",
		"port", cfg.API.Port,
		"database", cfg.Database.Path,
		"redis_enabled", cfg.RedisEnabled(),
		"log_level", cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog document store
	db, err := store.NewDB(store.Config{DatabasePath: cfg.Database.Path})
	if err != nil {
		logger.Error("failed to open catalog database", "err", err)
		return err
	}
	defer db.Close()

	// Cache tier: Redis when configured, otherwise in-process
	var cacheStore cache.Store
	if cfg.RedisEnabled() {
		redisStore := cache.NewRedisStore(cache.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			OpTimeout: cfg.Redis.OpTimeout,
		}, logger)
		redisStore.StartKeepAlive(ctx, cfg.Redis.KeepAliveInterval)
		cacheStore = redisStore
	} else {
		memStore, err := cache.NewMemoryStore(cache.DefaultMemoryEntries)
		if err != nil {
			logger.Error("failed to create in-process cache", "err", err)
			return err
		}
		cacheStore = memStore
		logger.Info("redis disabled, using in-process cache")
	}
	defer cacheStore.Close()

	service := query.NewService(db.Repository, cacheStore, query.ServiceConfig{
		StoreTimeout: cfg.Store.QueryTimeout,
	})
	invalidator := query.NewInvalidator(cacheStore)

	server := api.NewServer(&api.Config{
		Port:   cfg.API.Port,
		Prefix: cfg.API.Prefix,
	}, service, invalidator, func() any { return cacheStore.Stats() })

	// Scheduled cache maintenance flush
	var scheduler *cron.Cron
	if cfg.Maintenance.FlushSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Maintenance.FlushSchedule, func() {
			logger.Info("running scheduled cache flush")
			invalidator.InvalidateAll(ctx)
		})
		if err != nil {
			logger.Error("invalid maintenance schedule", "schedule", cfg.Maintenance.FlushSchedule, "err", err)
			return err
		}
		scheduler.Start()
		logger.Info("cache maintenance scheduled", "schedule", cfg.Maintenance.FlushSchedule)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Listen(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server failed", "err", err)
		return err
	}

	cancel()
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := server.Shutdown(shutdownTimeout); err != nil {
		logger.Warn("server shutdown incomplete", "err", err)
	}

	logger.Info("agentmart stopped")
	return nil
}
