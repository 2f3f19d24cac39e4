package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/docqa-be/repository"
	"github.com/tieubaoca/docqa-be/types"
)

// Answerer answers a query from the chunks of one document.
type Answerer interface {
	Answer(ctx context.Context, chunks []string, query string) (*string, error)
}

// TableAnalyzer answers a query about a parsed table.
type TableAnalyzer interface {
	Run(ctx context.Context, df *DataFrame, query string) (string, error)
}

// DocumentService runs one upload through ingestion, answering and
// persistence. It keeps no per-request state.
type DocumentService struct {
	extractors map[types.DocumentKind]TextExtractor
	chunker    *Chunker
	qa         Answerer
	agent      TableAnalyzer
	fileRepo   repository.FileRepo
	resultRepo repository.ResultRepo
}

func NewDocumentService(
	chunker *Chunker,
	qa Answerer,
	agent TableAnalyzer,
	fileRepo repository.FileRepo,
	resultRepo repository.ResultRepo,
) *DocumentService {
	return &DocumentService{
		extractors: map[types.DocumentKind]TextExtractor{
			types.DocumentKindPDF:  NewPDFService(),
			types.DocumentKindText: NewTextService(),
		},
		chunker:    chunker,
		qa:         qa,
		agent:      agent,
		fileRepo:   fileRepo,
		resultRepo: resultRepo,
	}
}

// Answer produces the answer for file without persisting anything. A nil
// answer means the document had no usable text.
func (s *DocumentService) Answer(ctx context.Context, kind types.DocumentKind, file *types.UploadedFile, query string) (*string, error) {
	if kind == types.DocumentKindCSV {
		df, err := ReadCSV(file.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Filename, err)
		}
		log.Ctx(ctx).Debug().Str("file", file.Filename).Int("rows", df.NumRows()).Strs("columns", df.Columns()).Msg("Loaded table")
		answer, err := s.agent.Run(ctx, df, query)
		if err != nil {
			return nil, fmt.Errorf("table agent: %w", err)
		}
		return &answer, nil
	}

	extractor, ok := s.extractors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	text, err := extractor.ExtractText(ctx, file)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunker.Split(text)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", file.Filename, err)
	}
	log.Ctx(ctx).Debug().Str("file", file.Filename).Int("chunks", len(chunks)).Msg("Chunked document")
	return s.qa.Answer(ctx, chunks, query)
}

// Persist writes the file record and then the result record linked to it.
// The two inserts are not atomic: when the second fails the file record
// stays behind and its id is logged.
func (s *DocumentService) Persist(ctx context.Context, file *types.UploadedFile, query string, result *string) (*types.ResultRecord, error) {
	now := time.Now().Unix()
	fileRecord := &types.FileRecord{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		CreatedAt:   now,
	}
	if err := s.fileRepo.CreateFile(ctx, fileRecord); err != nil {
		return nil, fmt.Errorf("insert file record: %w", err)
	}

	resultRecord := &types.ResultRecord{
		FileID:    fileRecord.ID,
		Query:     query,
		Result:    result,
		CreatedAt: now,
	}
	if err := s.resultRepo.CreateResult(ctx, resultRecord); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("file_id", fileRecord.ID.Hex()).Msg("Result insert failed, file record left without result")
		return nil, fmt.Errorf("insert result record: %w", err)
	}
	return resultRecord, nil
}

// Predict answers query against file and stores both records.
func (s *DocumentService) Predict(ctx context.Context, kind types.DocumentKind, file *types.UploadedFile, query string) (*string, error) {
	result, err := s.Answer(ctx, kind, file, query)
	if err != nil {
		return nil, err
	}
	if _, err := s.Persist(ctx, file, query, result); err != nil {
		return nil, err
	}
	return result, nil
}
