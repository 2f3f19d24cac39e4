package service

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/tieubaoca/docqa-be/types"
)

// TextExtractor turns an uploaded file into its full plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, file *types.UploadedFile) (string, error)
}

// TextService decodes plain-text uploads.
type TextService struct{}

func NewTextService() *TextService {
	return &TextService{}
}

func (s *TextService) ExtractText(ctx context.Context, file *types.UploadedFile) (string, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file.Filename, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", file.Filename, ErrInvalidUTF8)
	}
	return string(data), nil
}
