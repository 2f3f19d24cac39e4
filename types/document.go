package types

import (
	"io"
)

// DocumentKind selects which ingestion path handles an upload.
type DocumentKind string

const (
	DocumentKindPDF  DocumentKind = "pdf"
	DocumentKindText DocumentKind = "text"
	DocumentKindCSV  DocumentKind = "csv"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
	ContentTypeCSV  = "text/csv"
)

// ContentType is the exact declared content type accepted for the kind.
func (k DocumentKind) ContentType() string {
	switch k {
	case DocumentKindPDF:
		return ContentTypePDF
	case DocumentKindText:
		return ContentTypeText
	case DocumentKindCSV:
		return ContentTypeCSV
	}
	return ""
}

// KindForContentType is the inverse of ContentType.
func KindForContentType(contentType string) (DocumentKind, bool) {
	switch contentType {
	case ContentTypePDF:
		return DocumentKindPDF, true
	case ContentTypeText:
		return DocumentKindText, true
	case ContentTypeCSV:
		return DocumentKindCSV, true
	}
	return "", false
}

// FileContent is satisfied by both multipart.File and *os.File.
type FileContent interface {
	io.Reader
	io.ReaderAt
}

// UploadedFile lives only for the duration of one request.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     FileContent
}

// DocumentServiceConfig contains configuration options for document processing
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks, in characters
	OverlapSize  int // Size of overlap between chunks, in characters
	TopK         int // Number of chunks retrieved per query
}
