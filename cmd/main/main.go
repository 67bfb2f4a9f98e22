package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crypto-signals/src/aggregator"
	"crypto-signals/src/analysis"
	"crypto-signals/src/config"
	datasource "crypto-signals/src/data_source"
	"crypto-signals/src/interfaces"
	"crypto-signals/src/logger"
	"crypto-signals/src/network"
	"crypto-signals/src/providers"
	"crypto-signals/src/risk"
	"crypto-signals/src/sentiment"
	"crypto-signals/src/server"
	"crypto-signals/src/storage"
	"crypto-signals/src/strategy"
	"crypto-signals/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Archive
	var archive interfaces.IArchive

	switch cfg.Storage.DBType {
	case "postgres":
		archive, err = storage.NewPostgresArchive(cfg.MConfig, appLogger.Named("Postgres"))
	default:
		// "sqlite"; config.Validate rejects anything else
		archive, err = storage.NewSQLiteArchive(cfg.MConfig, appLogger.Named("SQLite"))
	}
	if err != nil {
		appLogger.Critical("Failed to init archive: %v", err)
	}
	if err := archive.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate archive: %v", err)
	}
	defer archive.Close()

	// Optional Redis cache
	var cache interfaces.ICacheStore
	if cfg.Cache.Enabled {
		redisCache, err := storage.NewRedisCache(cfg.MConfig, appLogger.Named("Redis"))
		if err != nil {
			appLogger.Warning("Redis unavailable, continuing without cache: %v", err)
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	// Tick providers behind the source adapter
	netMgr := network.NewManager(cfg.MConfig, appLogger.Named("Network"))

	adapter := datasource.NewSourceAdapter(cfg.Adapter, appLogger.Named("Adapter"))
	for _, srcCfg := range cfg.Sources {
		var provider interfaces.ITickProvider
		switch srcCfg.Type {
		case "coinbase":
			provider = providers.NewCoinbaseProvider(srcCfg, netMgr, appLogger.Named("Coinbase"))
		case "simulated":
			provider = providers.NewSimulatedProvider(srcCfg)
		default:
			appLogger.Warning("Unknown source type %q, skipping %s", srcCfg.Type, srcCfg.Name)
			continue
		}
		adapter.AddProvider(provider, srcCfg.PriorityRank)
	}

	// Pipeline components
	history := utils.NewHistoryStore(cfg.History.Size, appLogger.Named("History"))
	engine := analysis.NewEngine(cfg.Indicators.Period)
	scorer := sentiment.NewHeadlineScorer(sentiment.DefaultFeed())
	sentimentCache := sentiment.NewCache(scorer, cfg.Sentiment, appLogger.Named("Sentiment"))
	combiner := strategy.NewCombiner(cfg.Strategy)
	riskManager := risk.NewManager(cfg.Risk)

	// Server (broadcast + query surface)
	srv := server.NewServer(cfg.MConfig, adapter, appLogger.Named("Server"))

	agg := aggregator.New(
		adapter, history, engine, sentimentCache, combiner, riskManager,
		srv, cfg.Aggregator, cfg.Symbols, appLogger.Named("Aggregator"),
	)
	agg.Cache = cache
	agg.Archive = archive
	agg.HistoryMaxEntries = cfg.Cache.MaxEntries

	// Start server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// Run the aggregation loop until interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	srv.Stop()
	if err := archive.CleanupOldData(); err != nil {
		appLogger.Warning("Final cleanup failed: %v", err)
	}
}
