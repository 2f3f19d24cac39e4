// Package servicetest provides in-memory stand-ins for the provider clients
// and repositories so the pipeline can run without network or MongoDB.
package servicetest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tieubaoca/docqa-be/types"
)

// ChatFunc adapts a function to the chat completion client interface and
// records every request it receives.
type ChatFunc struct {
	mu       sync.Mutex
	Requests []openai.ChatCompletionRequest
	Reply    func(req openai.ChatCompletionRequest) (openai.ChatCompletionMessage, error)
}

func (f *ChatFunc) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	msg, err := f.Reply(req)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if msg.Role == "" {
		msg.Role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: msg}},
	}, nil
}

func (f *ChatFunc) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// LastUserMessage returns the content of the last user message in req.
func LastUserMessage(req openai.ChatCompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == openai.ChatMessageRoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

// HashEmbedder embeds text as a bag of hashed lowercase words. Texts sharing
// words get closer vectors, which is enough to make retrieval deterministic.
type HashEmbedder struct {
	Dims int

	mu    sync.Mutex
	Texts int
}

func (e *HashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	e.mu.Lock()
	e.Texts += len(texts)
	e.mu.Unlock()
	return vectors, nil
}

func (e *HashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.Texts++
	e.mu.Unlock()
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	dims := e.Dims
	if dims < 2 {
		dims = 64
	}
	v := make([]float32, dims)
	// never a zero vector
	v[0] = 1
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		v[1+int(h.Sum32()%uint32(dims-1))]++
	}
	return v
}

var ErrInjected = errors.New("injected failure")

// FileRepo is an in-memory repository.FileRepo.
type FileRepo struct {
	mu      sync.Mutex
	Records []types.FileRecord
	Fail    bool
}

func (r *FileRepo) CreateFile(ctx context.Context, file *types.FileRecord) error {
	if r.Fail {
		return ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	file.ID = bson.NewObjectID()
	r.Records = append(r.Records, *file)
	return nil
}

func (r *FileRepo) GetFile(ctx context.Context, id bson.ObjectID) (*types.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.Records {
		if r.Records[i].ID == id {
			rec := r.Records[i]
			return &rec, nil
		}
	}
	return nil, errors.New("file not found")
}

func (r *FileRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Records)
}

// ResultRepo is an in-memory repository.ResultRepo.
type ResultRepo struct {
	mu      sync.Mutex
	Records []types.ResultRecord
	Fail    bool
}

func (r *ResultRepo) CreateResult(ctx context.Context, result *types.ResultRecord) error {
	if r.Fail {
		return ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = bson.NewObjectID()
	r.Records = append(r.Records, *result)
	return nil
}

func (r *ResultRepo) ListResultsByFile(ctx context.Context, fileID bson.ObjectID) ([]*types.ResultRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ResultRecord
	for i := range r.Records {
		if r.Records[i].FileID == fileID {
			rec := r.Records[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (r *ResultRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Records)
}
