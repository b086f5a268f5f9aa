package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vesselworks/helm-search/pkg/config"
	"github.com/vesselworks/helm-search/pkg/database"
	"github.com/vesselworks/helm-search/pkg/extract"
	"github.com/vesselworks/helm-search/pkg/handlers"
	"github.com/vesselworks/helm-search/pkg/llm"
	"github.com/vesselworks/helm-search/pkg/logging"
	"github.com/vesselworks/helm-search/pkg/merge"
	"github.com/vesselworks/helm-search/pkg/middleware"
	"github.com/vesselworks/helm-search/pkg/pipeline"
	"github.com/vesselworks/helm-search/pkg/registry"
	"github.com/vesselworks/helm-search/pkg/results"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("ai_fallback", cfg.AI.IsAvailable()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	reg, err := registry.Load(cfg.CapabilityDefinitionsPath)
	if err != nil {
		logger.Fatal("Failed to load capability registry", zap.Error(err))
	}

	var aiExtractor llm.EntityExtractor
	if cfg.AI.IsAvailable() {
		client, err := llm.NewClient(&llm.Config{
			Endpoint: cfg.AI.Endpoint,
			Model:    cfg.AI.Model,
			APIKey:   cfg.AI.APIKey,
			Timeout:  cfg.AI.Timeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create AI extraction client", zap.Error(err))
		}
		aiExtractor = client
	} else {
		logger.Info("AI fallback extractor not configured, running deterministic extraction only")
	}

	ranker := results.NewRanker(results.RankerConfig{
		MaxPerTable:  cfg.Ranking.MaxPerTable,
		MaxPerParent: cfg.Ranking.MaxPerParent,
		MaxResults:   cfg.Ranking.MaxResults,
	}, logger)

	searchPipeline := pipeline.New(
		extract.NewExtractor(logger),
		merge.NewMerger(logger),
		reg,
		db,
		aiExtractor,
		ranker,
		pipeline.Config{
			StageDeadline:      cfg.Pipeline.StageDeadline,
			MaxConcurrentPlans: cfg.Pipeline.MaxConcurrentPlans,
			DefaultLimit:       cfg.Pipeline.DefaultLimit,
		},
		logger,
	)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	searchHandler := handlers.NewSearchHandler(searchPipeline, logger)
	searchHandler.RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting helm-search",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
