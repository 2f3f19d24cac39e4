package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"

	"github.com/tieubaoca/docqa-be/database"
)

const stuffPromptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// QAService answers a query from the chunks of a single document. Every call
// builds its own index; nothing is shared between calls.
type QAService struct {
	embedder embeddings.Embedder
	llm      *OpenAIService
	policy   ProviderPolicy
	topK     int
}

func NewQAService(embedder embeddings.Embedder, llm *OpenAIService, policy ProviderPolicy, topK int) *QAService {
	if topK <= 0 {
		topK = 4
	}
	return &QAService{
		embedder: embedder,
		llm:      llm,
		policy:   policy,
		topK:     topK,
	}
}

// Answer indexes chunks, retrieves the topK closest to query and asks the
// model once with all of them stuffed into the prompt. A nil answer means
// there was nothing to search.
func (s *QAService) Answer(ctx context.Context, chunks []string, query string) (*string, error) {
	if len(chunks) == 0 {
		log.Ctx(ctx).Warn().Msg("Document produced no chunks, skipping completion")
		return nil, nil
	}

	hits, err := s.retrieve(ctx, chunks, query)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Content
	}
	prompt := fmt.Sprintf(stuffPromptTemplate, strings.Join(contexts, "\n\n"), query)

	msg, err := s.llm.Complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	answer := msg.Content
	return &answer, nil
}

func (s *QAService) retrieve(ctx context.Context, chunks []string, query string) ([]database.ScoredChunk, error) {
	var vectors [][]float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = s.embedder.EmbedDocuments(ctx, chunks)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	index, err := database.NewVectorIndex("document")
	if err != nil {
		return nil, err
	}
	if err := index.AddChunks(ctx, chunks, vectors); err != nil {
		return nil, err
	}

	var queryVector []float32
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		queryVector, err = s.embedder.EmbedQuery(ctx, query)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := index.Search(ctx, queryVector, s.topK)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Int("chunks", len(chunks)).Int("hits", len(hits)).Msg("Retrieved context")
	return hits, nil
}
