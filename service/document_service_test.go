package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/tieubaoca/docqa-be/service/servicetest"
	"github.com/tieubaoca/docqa-be/types"
)

type testDeps struct {
	chat    *servicetest.ChatFunc
	files   *servicetest.FileRepo
	results *servicetest.ResultRepo
}

// newTestDocumentService wires the real pipeline to in-memory fakes. The fake
// model answers "Paris" for prompts mentioning it and runs the average-age
// expression when offered tools.
func newTestDocumentService(t *testing.T) (*DocumentService, *testDeps) {
	t.Helper()
	agentChat := expressionChat("sum(map(rows, .age)) / len(rows)")
	qaChat := parisChat()
	deps := &testDeps{
		files:   &servicetest.FileRepo{},
		results: &servicetest.ResultRepo{},
	}
	deps.chat = &servicetest.ChatFunc{Reply: func(req openai.ChatCompletionRequest) (openai.ChatCompletionMessage, error) {
		if len(req.Tools) > 0 {
			return agentChat.Reply(req)
		}
		return qaChat.Reply(req)
	}}

	chunker, err := NewChunker(types.DocumentServiceConfig{MaxChunkSize: 500, OverlapSize: 200})
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	llm := NewOpenAIService(deps.chat, "m", testPolicy)
	svc := NewDocumentService(
		chunker,
		NewQAService(&servicetest.HashEmbedder{Dims: 256}, llm, testPolicy, 4),
		NewTableAgent(llm, 5, time.Second),
		deps.files,
		deps.results,
	)
	return svc, deps
}

func TestPredictTextPersistsLinkedRecords(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	file := textUpload("france.txt", types.ContentTypeText, "The capital of France is Paris.")

	result, err := svc.Predict(context.Background(), types.DocumentKindText, file, "What is the capital of France?")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result == nil || *result != "Paris" {
		t.Fatalf("unexpected result %v", result)
	}

	if deps.files.Len() != 1 || deps.results.Len() != 1 {
		t.Fatalf("expected 1 file and 1 result record, got %d and %d", deps.files.Len(), deps.results.Len())
	}
	fileRec := deps.files.Records[0]
	resultRec := deps.results.Records[0]
	if fileRec.Filename != "france.txt" || fileRec.ContentType != types.ContentTypeText || fileRec.Size != file.Size {
		t.Errorf("unexpected file record %+v", fileRec)
	}
	if resultRec.FileID != fileRec.ID {
		t.Errorf("result not linked to file: %s != %s", resultRec.FileID.Hex(), fileRec.ID.Hex())
	}
	if resultRec.Query != "What is the capital of France?" || resultRec.Result == nil || *resultRec.Result != "Paris" {
		t.Errorf("unexpected result record %+v", resultRec)
	}
}

func TestPredictPDF(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	file := pdfUpload("france.pdf", servicetest.BuildPDF([]string{"The capital of France is Paris."}))

	result, err := svc.Predict(context.Background(), types.DocumentKindPDF, file, "What is the capital of France?")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result == nil || *result != "Paris" {
		t.Fatalf("unexpected result %v", result)
	}
	if deps.files.Len() != 1 || deps.results.Len() != 1 {
		t.Errorf("expected one record pair, got %d/%d", deps.files.Len(), deps.results.Len())
	}
}

func TestPredictCSV(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	file := textUpload("people.csv", types.ContentTypeCSV, peopleCSV)

	result, err := svc.Predict(context.Background(), types.DocumentKindCSV, file, "What is the average age?")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result == nil || !strings.Contains(*result, "27.5") {
		t.Fatalf("unexpected result %v", result)
	}
	if deps.results.Len() != 1 || !strings.Contains(*deps.results.Records[0].Result, "27.5") {
		t.Errorf("agent answer not persisted")
	}
}

func TestPredictEmptyDocument(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	file := textUpload("empty.txt", types.ContentTypeText, "\n\n")

	result, err := svc.Predict(context.Background(), types.DocumentKindText, file, "anything?")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %q", *result)
	}
	if deps.chat.Calls() != 0 {
		t.Errorf("model should not be called for an empty document")
	}
	if deps.results.Len() != 1 || deps.results.Records[0].Result != nil {
		t.Errorf("expected a stored null result")
	}
}

func TestPredictTwiceWritesTwoPairs(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	for i := 0; i < 2; i++ {
		file := textUpload("france.txt", types.ContentTypeText, "The capital of France is Paris.")
		if _, err := svc.Predict(context.Background(), types.DocumentKindText, file, "capital?"); err != nil {
			t.Fatalf("Predict #%d: %v", i, err)
		}
	}
	if deps.files.Len() != 2 || deps.results.Len() != 2 {
		t.Fatalf("expected 2 record pairs, got %d/%d", deps.files.Len(), deps.results.Len())
	}
	if deps.files.Records[0].ID == deps.files.Records[1].ID {
		t.Error("file records share an id")
	}
	for i := range deps.results.Records {
		if deps.results.Records[i].FileID != deps.files.Records[i].ID {
			t.Errorf("result %d linked to the wrong file", i)
		}
	}
}

func TestPredictResultInsertFailureLeavesFileRecord(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	deps.results.Fail = true
	file := textUpload("france.txt", types.ContentTypeText, "The capital of France is Paris.")

	_, err := svc.Predict(context.Background(), types.DocumentKindText, file, "capital?")
	if !errors.Is(err, servicetest.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if deps.files.Len() != 1 || deps.results.Len() != 0 {
		t.Errorf("expected orphan file record only, got %d/%d", deps.files.Len(), deps.results.Len())
	}
}

func TestPredictFileInsertFailureSkipsResult(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	deps.files.Fail = true
	file := textUpload("france.txt", types.ContentTypeText, "The capital of France is Paris.")

	if _, err := svc.Predict(context.Background(), types.DocumentKindText, file, "capital?"); err == nil {
		t.Fatal("expected error")
	}
	if deps.results.Len() != 0 {
		t.Errorf("result written without a file record")
	}
}

func TestPredictIngestionFailureWritesNothing(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	file := textUpload("bad.txt", types.ContentTypeText, "\xff\xfe")

	_, err := svc.Predict(context.Background(), types.DocumentKindText, file, "?")
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if deps.files.Len() != 0 || deps.results.Len() != 0 {
		t.Errorf("records written for a failed request")
	}
}

func TestAnswerUnsupportedKind(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	_, err := svc.Answer(context.Background(), types.DocumentKind("docx"), textUpload("a.docx", "x", "x"), "?")
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestPredictLogsOrphanWithRequestID(t *testing.T) {
	svc, deps := newTestDocumentService(t)
	deps.results.Fail = true

	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("request_id", "req-7").Logger()
	ctx := logger.WithContext(context.Background())

	file := textUpload("france.txt", types.ContentTypeText, "The capital of France is Paris.")
	if _, err := svc.Predict(ctx, types.DocumentKindText, file, "capital?"); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-7"`) || !strings.Contains(out, deps.files.Records[0].ID.Hex()) {
		t.Errorf("orphan log missing request or file id: %q", out)
	}
}
