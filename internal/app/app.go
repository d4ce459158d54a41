// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/config"
	db "github.com/danielokoye-py/Notestack/internal/core/database"
	"github.com/danielokoye-py/Notestack/internal/core/ingestion_engine"
	"github.com/danielokoye-py/Notestack/internal/core/llm"
	objectclient "github.com/danielokoye-py/Notestack/internal/core/object-client"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

type App struct {
	DBClient     *db.DatabaseClient
	ObjectClient *objectclient.S3Client
	Pipeline     *ingestion_engine.Pipeline
	Server       *Server
	Log          *zap.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("object client initialized and ready")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	extractor := ingestion_engine.NewPdfExtractor(log)

	pipeline := ingestion_engine.NewPipeline(dbClient, extractor, geminiEmbedder, ingestion_engine.IngestConfig{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		EmbedBatchSize: cfg.EmbedBatchSize,
	}, log)

	selector := retrieval.NewSelector(dbClient, cfg.MaxContextDocs, log)

	server := NewServer(cfg, dbClient, objClient, pipeline, selector, llmProvider, log)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Pipeline:     pipeline,
		Server:       server,
		Log:          log,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
