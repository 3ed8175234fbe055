package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/mkalinin/docqa-backend/internal/pkg/retry"
)

// AnswerMode selects the synthesis strategy at deployment time.
// It is never a per-request parameter.
type AnswerMode string

const (
	ModeSingle   AnswerMode = "single"
	ModeEnsemble AnswerMode = "ensemble"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingCfg  EmbeddingConfig  `envPrefix:"EMBEDDING_"`
	CompletionCfg CompletionConfig `envPrefix:"COMPLETION_"`

	// Answer pipeline configuration
	AnswerCfg AnswerConfig `envPrefix:"ANSWER_"`

	// Ingestion configuration
	UploadCfg  FileUploadConfig `envPrefix:"UPLOAD_"`
	IndexerCfg IndexerConfig    `envPrefix:"INDEXER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// EmbeddingConfig configures the embedding gateway. One embedding model is
// configured per deployment; it is not parameterized per call.
type EmbeddingConfig struct {
	HTTPClientConfig
	Model     string               `env:"MODEL,notEmpty"`
	Dimension int                  `env:"DIM" envDefault:"1024"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// CompletionConfig configures the completion gateway shared by every
// synthesis stage. Model identifiers live in AnswerConfig.
type CompletionConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// AnswerConfig selects the synthesis mode and its models. Single mode uses
// Model/TopK; ensemble mode uses the Primary/Secondary/Fusion triple and the
// PrimaryTopK/SecondaryTopK pair.
type AnswerConfig struct {
	Mode AnswerMode `env:"MODE" envDefault:"single"`

	Model string `env:"MODEL"`
	TopK  int    `env:"TOP_K" envDefault:"10"`

	PrimaryModel   string `env:"PRIMARY_MODEL"`
	SecondaryModel string `env:"SECONDARY_MODEL"`
	FusionModel    string `env:"FUSION_MODEL"`
	PrimaryTopK    int    `env:"PRIMARY_TOP_K" envDefault:"5"`
	SecondaryTopK  int    `env:"SECONDARY_TOP_K" envDefault:"10"`

	// CacheTTL enables the optional bounded answer cache when positive.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"0s"`
}

// IndexerConfig configures the background chunk+embed worker.
type IndexerConfig struct {
	QueueSize         int           `env:"QUEUE_SIZE" envDefault:"64"`
	SentencesPerChunk int           `env:"SENTENCES_PER_CHUNK" envDefault:"5"`
	OverlapSentences  int           `env:"OVERLAP_SENTENCES" envDefault:"1"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig catches configuration faults at startup so that a broken
// deployment never reaches per-request handling.
func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.AnswerCfg.Mode {
	case ModeSingle:
		if cfg.AnswerCfg.Model == "" {
			errors = append(errors, "ANSWER_MODEL is required in single mode")
		}
		if cfg.AnswerCfg.TopK < 1 {
			errors = append(errors, fmt.Sprintf("ANSWER_TOP_K must be >= 1, got %d", cfg.AnswerCfg.TopK))
		}
	case ModeEnsemble:
		if cfg.AnswerCfg.PrimaryModel == "" || cfg.AnswerCfg.SecondaryModel == "" || cfg.AnswerCfg.FusionModel == "" {
			errors = append(errors, "ANSWER_PRIMARY_MODEL, ANSWER_SECONDARY_MODEL and ANSWER_FUSION_MODEL are all required in ensemble mode")
		}
		if cfg.AnswerCfg.PrimaryTopK < 1 {
			errors = append(errors, fmt.Sprintf("ANSWER_PRIMARY_TOP_K must be >= 1, got %d", cfg.AnswerCfg.PrimaryTopK))
		}
		if cfg.AnswerCfg.PrimaryTopK >= cfg.AnswerCfg.SecondaryTopK {
			errors = append(errors, fmt.Sprintf("ANSWER_PRIMARY_TOP_K (%d) must be smaller than ANSWER_SECONDARY_TOP_K (%d)",
				cfg.AnswerCfg.PrimaryTopK, cfg.AnswerCfg.SecondaryTopK))
		}
	default:
		errors = append(errors, fmt.Sprintf("ANSWER_MODE must be 'single' or 'ensemble', got %q", cfg.AnswerCfg.Mode))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIM must be >= 1, got %d", cfg.EmbeddingCfg.Dimension))
	}

	// API credentials are only optional when mocks replace the gateways.
	if !cfg.EnableMocks {
		if cfg.EmbeddingCfg.Token == "" {
			errors = append(errors, "EMBEDDING_TOKEN is required when mocks are disabled")
		}
		if cfg.CompletionCfg.Token == "" {
			errors = append(errors, "COMPLETION_TOKEN is required when mocks are disabled")
		}
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.IndexerCfg.QueueSize < 1 {
		errors = append(errors, fmt.Sprintf("INDEXER_QUEUE_SIZE must be >= 1, got %d", cfg.IndexerCfg.QueueSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
