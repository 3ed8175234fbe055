package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkalinin/docqa-backend/internal/api"
	askapi "github.com/mkalinin/docqa-backend/internal/api/ask"
	documentapi "github.com/mkalinin/docqa-backend/internal/api/document"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/integration/completion"
	"github.com/mkalinin/docqa-backend/internal/integration/embedding"
	"github.com/mkalinin/docqa-backend/internal/pkg/formatter"
	"github.com/mkalinin/docqa-backend/internal/pkg/validator"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"github.com/mkalinin/docqa-backend/internal/usecase/answer"
	"github.com/mkalinin/docqa-backend/internal/usecase/ingest"
	"github.com/mkalinin/docqa-backend/internal/worker"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("answer_mode", string(cfg.AnswerCfg.Mode)),
	)

	// Initialize repositories
	var (
		db           *pgxpool.Pool
		documentRepo repository.DocumentRepository
		fragmentRepo repository.FragmentRepository
	)
	if cfg.EnableMocks {
		logger.Info("Using in-memory repositories")
		documentRepo = repository.NewDocumentMemory()
		fragmentRepo = repository.NewFragmentMemory()
	} else {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		documentRepo = repository.NewDocumentPostgres(db)
		fragmentRepo = repository.NewFragmentPostgres(db)
	}
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var embeddingConn answer.EmbeddingConnector
	var completionConn answer.CompletionConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embeddingConn = embedding.NewMockConnector(cfg.EmbeddingCfg.Dimension, logger)
		completionConn = completion.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embeddingConn = embedding.NewConnector(cfg.EmbeddingCfg, logger)
		completionConn = completion.NewConnector(cfg.CompletionCfg, logger)
	}

	// Initialize validators
	fileValidator := validator.NewFileValidator(cfg.UploadCfg)
	logger.Info("Validators initialized")

	// Initialize the answer pipeline
	retriever := answer.NewRetriever(embeddingConn, fragmentRepo)

	var synthesizer answer.Synthesizer
	switch cfg.AnswerCfg.Mode {
	case config.ModeEnsemble:
		synthesizer = answer.NewEnsembleSynthesizer(retriever, completionConn, cfg.AnswerCfg)
	default:
		synthesizer = answer.NewSingleSynthesizer(retriever, completionConn, cfg.AnswerCfg)
	}

	// Initialize the background indexer
	indexer := worker.NewIndexer(cfg.IndexerCfg, embeddingConn, fragmentRepo, logger)

	// Initialize use cases
	answerUC := answer.NewUsecase(documentRepo, retriever, synthesizer, cfg.AnswerCfg, logger)
	ingestUC := ingest.NewUsecase(documentRepo, fileValidator, indexer, formatter.NewFactory(), logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	documentHandler := documentapi.NewHandler(ingestUC, cfg.UploadCfg)
	askHandler := askapi.NewHandler(answerUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(documentHandler, askHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		db:      db,
		indexer: indexer,
		logger:  logger,
	}, nil
}
