package service

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"
)

// openAIEmbeddingClient serves langchaingo's embedder from go-openai, so
// failed calls surface as *openai.APIError with their HTTP status.
type openAIEmbeddingClient struct {
	client *openai.Client
	model  string
}

func (c *openAIEmbeddingClient) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// NewOpenAIEmbedder creates a langchaingo embedder backed by an
// OpenAI-compatible embeddings endpoint.
func NewOpenAIEmbedder(baseURL, apiKey, embeddingModel string) (embeddings.Embedder, error) {
	embedder, err := embeddings.NewEmbedder(&openAIEmbeddingClient{
		client: NewOpenAIClient(baseURL, apiKey),
		model:  embeddingModel,
	})
	if err != nil {
		return nil, err
	}
	return embedder, nil
}
