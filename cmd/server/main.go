package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/config"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/dialogue"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/handler"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/logging"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/repository"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const serviceName = "auto-assistant"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, serviceName)
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Auto Assistant")

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare database schema")
	}
	logger.Info().Msg("✅ Connected to PostgreSQL database")

	// Initialize OpenAI client
	var (
		completer dialogue.Completer
		embedder  service.Embedder
	)
	if cfg.OpenAI.Enabled {
		openaiClient := service.NewOpenAIClient(&cfg.OpenAI, logger)
		completer = openaiClient
		embedder = openaiClient
		logger.Info().
			Str("api_base", cfg.OpenAI.APIBase).
			Str("chat_model", cfg.OpenAI.ChatModel).
			Str("embedding_model", cfg.OpenAI.EmbeddingModel).
			Int("retry_max_attempts", cfg.OpenAI.RetryMaxAttempts).
			Msg("✅ OpenAI client initialized")
	} else {
		logger.Warn().Msg("⚠️  OpenAI is disabled, every turn will be answered with the fallback reply. Set OPENAI_API_KEY to enable it")
	}

	// Initialize services
	ranker := service.NewRanker(
		cfg.Ranking.WeightSemantic,
		cfg.Ranking.WeightRating,
		cfg.Ranking.WeightPrice,
	)
	searchService := service.NewSearchService(repo, embedder, ranker, logger)

	machine := dialogue.NewMachine(completer, dialogue.Config{
		MaxTurns:       cfg.Dialogue.MaxTurns,
		FilterMaxTurns: cfg.Dialogue.FilterMaxTurns,
	}, logger)
	sessions := service.NewSessionStore(machine, cfg.Dialogue.SessionTTL)
	assistant := service.NewAssistant(machine, searchService, sessions, cfg.Dialogue.ResultLimit, logger)

	logger.Info().Msg("✅ Services initialized")

	router := handler.NewRouter(
		handler.BuildInfo{
			Service:   serviceName,
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		},
		handler.CORSConfig{
			Origins: cfg.Server.AllowedOrigins,
			Methods: cfg.Server.AllowedMethods,
			Headers: cfg.Server.AllowedHeaders,
		},
		handler.Handlers{
			Chat:      handler.NewChatHandler(assistant),
			Cars:      handler.NewCarHandler(searchService),
			Embedding: handler.NewEmbeddingHandler(searchService, cfg.OpenAI.EmbeddingDimensions),
			Feedback:  handler.NewFeedbackHandler(searchService),
		},
		logger.With().Str("component", "http").Logger(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, cfg.Dialogue.SessionTTL, logger)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msgf("🚀 Starting server, API at http://localhost:%d/api/v1", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	logger.Info().Msg("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("✅ Server stopped")
}

// sweepSessions drops idle conversations until ctx is done.
func sweepSessions(ctx context.Context, sessions *service.SessionStore, ttl time.Duration, logger zerolog.Logger) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(max(ttl/4, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug().Int("removed", n).Int("live", sessions.Len()).Msg("Expired idle conversations")
			}
		}
	}
}
