package cmd

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tieubaoca/docqa-be/config"
	"github.com/tieubaoca/docqa-be/database"
	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
	"github.com/tieubaoca/docqa-be/utils"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	utils.SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildDocumentService wires the pipeline. With persist set it also connects
// to MongoDB; the caller disconnects the returned client.
func buildDocumentService(ctx context.Context, cfg *config.Config, persist bool) (*service.DocumentService, *mongo.Client, error) {
	chunker, err := service.NewChunker(types.DocumentServiceConfig{
		MaxChunkSize: cfg.Document.ChunkSize,
		OverlapSize:  cfg.Document.ChunkOverlap,
		TopK:         cfg.Document.TopK,
	})
	if err != nil {
		return nil, nil, err
	}

	embedder, err := service.NewOpenAIEmbedder(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	policy := service.ProviderPolicy{
		Timeout: cfg.Provider.Timeout,
		Retries: cfg.Provider.Retries,
	}
	llm := service.NewOpenAIService(service.NewOpenAIClient(cfg.AIEndpoint, cfg.OpenAIAPIKey), cfg.Model, policy)
	qaService := service.NewQAService(embedder, llm, policy, cfg.Document.TopK)
	tableAgent := service.NewTableAgent(llm, cfg.Agent.MaxIterations, cfg.Agent.EvalTimeout)

	var (
		mongoClient *mongo.Client
		fileRepo    repository.FileRepo
		resultRepo  repository.ResultRepo
	)
	if persist {
		if err := cfg.ValidateStorage(); err != nil {
			return nil, nil, err
		}
		mongoClient, err = database.NewMongoClient(ctx, cfg.MongoDBURI)
		if err != nil {
			return nil, nil, err
		}
		mongoDb := mongoClient.Database(cfg.Database)
		fileRepo = repository.NewFileRepo(mongoDb.Collection(database.FileCollection))
		resultRepo = repository.NewResultRepo(mongoDb.Collection(database.ResultCollection))
	}

	return service.NewDocumentService(chunker, qaService, tableAgent, fileRepo, resultRepo), mongoClient, nil
}
