package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/cache"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/config"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/dedup"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/extract"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/logging"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/repository"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/service"
)

const memoryCacheSize = 10_000

var (
	verbose    bool
	noProgress bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build the car catalog from scraped listings",
	Long: `catalog turns scraped listings into the searchable car catalog.

  dedup     drop near-duplicate listings (text and image similarity)
  enrich    extract structured attributes and summaries
  index     embed catalog entries and store them in PostgreSQL
  pipeline  run all three steps`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		// progress bars own stderr, so logs stay human readable
		logger = logging.New(level, "console", "catalog")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bars")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newResolver() *dedup.Resolver {
	return dedup.NewResolver(dedup.Config{
		TextThreshold:  cfg.Dedup.TextThreshold,
		ImageThreshold: cfg.Dedup.ImageThreshold,
		PriceTolerance: cfg.Dedup.PriceTolerance,
		MaxFeatures:    cfg.Dedup.MaxFeatures,
		MaxImages:      cfg.Dedup.MaxImages,
		Workers:        cfg.Dedup.Workers,
	}, logger)
}

// newEnricher wires the extractor to the completion service and the
// attribute cache: Redis when REDIS_URL is set, in-memory otherwise.
func newEnricher(ctx context.Context) (*extract.Enricher, cache.Client, error) {
	var completer extract.Completer
	if cfg.OpenAI.Enabled {
		completer = service.NewOpenAIClient(&cfg.OpenAI, logger)
	} else {
		logger.Warn().Msg("⚠️  OpenAI is disabled, only the pattern stage will run")
	}

	var c cache.Client
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("✅ Using Redis attribute cache")
		c = rc
	} else {
		c = cache.NewMemoryClient(memoryCacheSize)
	}

	enricher := extract.NewEnricher(extract.NewExtractor(completer, logger), c, extract.EnricherConfig{
		Workers:       cfg.Enrich.Workers,
		Summaries:     cfg.Enrich.Summaries && completer != nil,
		DefaultRating: cfg.Enrich.DefaultRating,
		DropFailed:    cfg.Enrich.DropFailed,
		CacheTTL:      cfg.Redis.TTL,
	}, logger)
	return enricher, c, nil
}

// newIndexer connects to PostgreSQL and prepares the schema. The caller
// closes the returned repository.
func newIndexer(ctx context.Context) (*service.SearchService, *repository.PostgresRepository, error) {
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	logger.Info().Msg("✅ Connected to PostgreSQL database")

	var embedder service.Embedder
	if cfg.OpenAI.Enabled {
		embedder = service.NewOpenAIClient(&cfg.OpenAI, logger)
	} else {
		logger.Warn().Msg("⚠️  OpenAI is disabled, cars are stored without embeddings")
	}

	ranker := service.NewRanker(cfg.Ranking.WeightSemantic, cfg.Ranking.WeightRating, cfg.Ranking.WeightPrice)
	return service.NewSearchService(repo, embedder, ranker, logger), repo, nil
}
