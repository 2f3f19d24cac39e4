package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/docqa-be/types"
)

// PDFService handles PDF text extraction
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExtractText reads the PDF page by page and concatenates the text of every
// page in order, with no separator. Pages that fail to extract or carry no
// text are skipped.
func (s *PDFService) ExtractText(ctx context.Context, file *types.UploadedFile) (text string, err error) {
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%s: %w: %v", file.Filename, ErrCorruptPDF, r)
		}
	}()

	reader, err := pdf.NewReader(file.Content, file.Size)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", file.Filename, ErrCorruptPDF, err)
	}

	var raw strings.Builder
	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pageText, err := extractPage(reader.Page(pageNum))
		if err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("file", file.Filename).Int("page", pageNum).Msg("Skipping unreadable page")
			continue
		}
		raw.WriteString(pageText)
	}

	log.Ctx(ctx).Debug().Str("file", file.Filename).Int("pages", totalPages).Int("chars", raw.Len()).Msg("Extracted PDF text")
	return raw.String(), nil
}

func extractPage(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
