package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tieubaoca/docqa-be/service/servicetest"
	"github.com/tieubaoca/docqa-be/types"
)

func pdfUpload(name string, data []byte) *types.UploadedFile {
	return &types.UploadedFile{
		Filename:    name,
		ContentType: types.ContentTypePDF,
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}
}

func TestPDFServiceExtractText(t *testing.T) {
	s := NewPDFService()
	data := servicetest.BuildPDF([]string{"Hello first page", "", "Goodbye last page"})

	text, err := s.ExtractText(context.Background(), pdfUpload("doc.pdf", data))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	first := strings.Index(text, "Hello first page")
	last := strings.Index(text, "Goodbye last page")
	if first < 0 || last < 0 {
		t.Fatalf("missing page text in %q", text)
	}
	if first > last {
		t.Errorf("pages out of order: %q", text)
	}
}

func TestPDFServiceCorrupt(t *testing.T) {
	s := NewPDFService()
	_, err := s.ExtractText(context.Background(), pdfUpload("broken.pdf", []byte("this is not a pdf at all")))
	if !errors.Is(err, ErrCorruptPDF) {
		t.Fatalf("expected ErrCorruptPDF, got %v", err)
	}
}

func TestPDFServiceCancelled(t *testing.T) {
	s := NewPDFService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ExtractText(ctx, pdfUpload("doc.pdf", servicetest.BuildPDF([]string{"page"})))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
