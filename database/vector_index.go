package database

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
)

var errEmbeddingRequired = errors.New("vector index: embeddings must be supplied by the caller")

// ScoredChunk is a chunk returned by a similarity search.
type ScoredChunk struct {
	Index      int
	Content    string
	Similarity float32
}

// VectorIndex is an in-memory, request-scoped similarity index over the
// chunks of one document. Similarity is cosine.
type VectorIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

func NewVectorIndex(name string) (*VectorIndex, error) {
	db := chromem.NewDB()
	// chromem would otherwise fall back to its own OpenAI client.
	noEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errEmbeddingRequired
	}
	c, err := db.GetOrCreateCollection(name, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}
	return &VectorIndex{
		db:         db,
		collection: c,
	}, nil
}

// AddChunks stores chunks with their precomputed embeddings; vectors[i]
// belongs to chunks[i].
func (m *VectorIndex) AddChunks(ctx context.Context, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("vector index: %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   chunk,
			Embedding: vectors[i],
		}
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

func (m *VectorIndex) Count() int {
	return m.collection.Count()
}

// Search returns up to k chunks ordered by descending similarity to vector.
func (m *VectorIndex) Search(ctx context.Context, vector []float32, k int) ([]ScoredChunk, error) {
	n := m.collection.Count()
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	results, err := m.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	hits := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		idx, err := strconv.Atoi(r.ID)
		if err != nil {
			return nil, fmt.Errorf("vector index: unexpected document id %q", r.ID)
		}
		hits = append(hits, ScoredChunk{
			Index:      idx,
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}
	return hits, nil
}
