package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Dedup      DedupConfig
	Enrich     EnrichConfig
	Dialogue   DialogueConfig
	Redis      RedisConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the parts below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// SearchConfig holds car search configuration
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
	IndexStep    int // cars embedded and stored per indexing step
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightSemantic float64
	WeightRating   float64
	WeightPrice    float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	ChatExtraBody       string // JSON object merged into chat requests
	EmbeddingModel      string
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool

	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

// DedupConfig holds duplicate detection thresholds
type DedupConfig struct {
	TextThreshold  float64
	ImageThreshold float64
	PriceTolerance float64
	MaxFeatures    int
	MaxImages      int
	Workers        int
}

// EnrichConfig holds attribute enrichment settings
type EnrichConfig struct {
	Workers       int
	DefaultRating float64
	Summaries     bool
	DropFailed    bool
}

// DialogueConfig holds conversation settings
type DialogueConfig struct {
	MaxTurns       int
	FilterMaxTurns int
	ResultLimit    int
	SessionTTL     time.Duration
}

// RedisConfig holds the attribute cache connection
type RedisConfig struct {
	URL    string
	Prefix string
	TTL    time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "auto_assistant"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 50),
			IndexStep:    getEnvAsInt("SEARCH_INDEX_STEP", 10),
		},
		Ranking: RankingConfig{
			WeightSemantic: getEnvAsFloat("RANK_WEIGHT_SEMANTIC", 0.6),
			WeightRating:   getEnvAsFloat("RANK_WEIGHT_RATING", 0.2),
			WeightPrice:    getEnvAsFloat("RANK_WEIGHT_PRICE", 0.2),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:              getEnv("OPENAI_API_KEY", ""),
			APIBase:             strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			ChatModel:           getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
			ChatTemperature:     getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0),
			ChatTopP:            getEnvAsFloat("OPENAI_CHAT_TOP_P", 0.2),
			ChatMaxTokens:       getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 2048),
			ChatExtraBody:       getEnv("OPENAI_CHAT_EXTRA_BODY", ""),
			EmbeddingModel:      getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			BatchSize:           getEnvAsInt("OPENAI_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("OPENAI_TIMEOUT", 60),
			Enabled:             getEnv("OPENAI_API_KEY", "") != "",
			RetryMaxAttempts:    getEnvAsInt("OPENAI_RETRY_MAX_ATTEMPTS", 5),
			RetryInitialDelay:   getEnvAsDuration("OPENAI_RETRY_INITIAL_DELAY", 15*time.Second),
			RetryMaxDelay:       getEnvAsDuration("OPENAI_RETRY_MAX_DELAY", 60*time.Second),
		},
		Dedup: DedupConfig{
			TextThreshold:  getEnvAsFloat("DEDUP_TEXT_THRESHOLD", 0.65),
			ImageThreshold: getEnvAsFloat("DEDUP_IMAGE_THRESHOLD", 0.30),
			PriceTolerance: getEnvAsFloat("DEDUP_PRICE_TOLERANCE", 0.15),
			MaxFeatures:    getEnvAsInt("DEDUP_MAX_FEATURES", 1000),
			MaxImages:      getEnvAsInt("DEDUP_MAX_IMAGES", 5),
			Workers:        getEnvAsInt("DEDUP_WORKERS", 4),
		},
		Enrich: EnrichConfig{
			Workers:       getEnvAsInt("ENRICH_WORKERS", 5),
			DefaultRating: getEnvAsFloat("ENRICH_DEFAULT_RATING", 9.0),
			Summaries:     getEnvAsBool("ENRICH_SUMMARIES", true),
			DropFailed:    getEnvAsBool("ENRICH_DROP_FAILED", false),
		},
		Dialogue: DialogueConfig{
			MaxTurns:       getEnvAsInt("DIALOGUE_MAX_TURNS", 3),
			FilterMaxTurns: getEnvAsInt("DIALOGUE_FILTER_MAX_TURNS", 3),
			ResultLimit:    getEnvAsInt("DIALOGUE_RESULT_LIMIT", 3),
			SessionTTL:     getEnvAsDuration("DIALOGUE_SESSION_TTL", 2*time.Hour),
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", ""),
			Prefix: getEnv("REDIS_PREFIX", "autoassistant:"),
			TTL:    getEnvAsDuration("REDIS_TTL", 0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenAI.RetryMaxAttempts < 1 {
		return fmt.Errorf("OPENAI_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.OpenAI.RetryMaxAttempts)
	}
	for name, v := range map[string]float64{
		"DEDUP_TEXT_THRESHOLD":  c.Dedup.TextThreshold,
		"DEDUP_IMAGE_THRESHOLD": c.Dedup.ImageThreshold,
		"DEDUP_PRICE_TOLERANCE": c.Dedup.PriceTolerance,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	if c.Dialogue.MaxTurns < 1 {
		return fmt.Errorf("DIALOGUE_MAX_TURNS must be at least 1, got %d", c.Dialogue.MaxTurns)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("invalid bool value, using default")
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("15s") or plain seconds ("15").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration value, using default")
		return defaultValue
	}
	return value
}
