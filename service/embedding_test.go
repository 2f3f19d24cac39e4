package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAIEmbedderRetriesRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	embedder, err := NewOpenAIEmbedder(srv.URL, "sk-test", "text-embedding-3-small")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	policy := ProviderPolicy{Timeout: 5 * time.Second, Retries: 2}
	err = policy.Do(context.Background(), func(ctx context.Context) error {
		_, err := embedder.EmbedQuery(ctx, "hello")
		return err
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsTransient(err) {
		t.Errorf("429 from the embeddings endpoint should be transient: %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestOpenAIEmbedderBadRequestNotRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	embedder, err := NewOpenAIEmbedder(srv.URL, "sk-test", "text-embedding-3-small")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	policy := ProviderPolicy{Timeout: 5 * time.Second, Retries: 2}
	err = policy.Do(context.Background(), func(ctx context.Context) error {
		_, err := embedder.EmbedQuery(ctx, "hello")
		return err
	})
	if err == nil || IsTransient(err) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestOpenAIEmbedderEmbedsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Model != "text-embedding-3-small" {
			http.Error(w, "wrong model", http.StatusBadRequest)
			return
		}
		// reversed on purpose; the client must order by index
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Embedding: []float32{float32(i), 1}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	defer srv.Close()

	embedder, err := NewOpenAIEmbedder(srv.URL, "sk-test", "text-embedding-3-small")
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder: %v", err)
	}
	vectors, err := embedder.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedDocuments: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
}
