package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docqa-be/types"
)

// multipartMemory is how much of a form is held in memory before file parts
// spill to temporary files.
const multipartMemory = 8 << 20

// uploadError is a client error with the status and detail to send back.
type uploadError struct {
	status int
	detail string
}

// readUpload parses the multipart form and returns the "file" part and the
// "query" field. Missing fields are checked before the content type.
func readUpload(c *gin.Context, kind types.DocumentKind, maxBytes int64) (*types.UploadedFile, multipart.File, string, *uploadError) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, "", &uploadError{
				status: http.StatusRequestEntityTooLarge,
				detail: fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, nil, "", &uploadError{status: http.StatusUnprocessableEntity, detail: "Invalid multipart form"}
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, "", &uploadError{status: http.StatusUnprocessableEntity, detail: "Field required: file"}
	}
	query, ok := c.GetPostForm("query")
	if !ok || query == "" {
		return nil, nil, "", &uploadError{status: http.StatusUnprocessableEntity, detail: "Field required: query"}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != kind.ContentType() {
		return nil, nil, "", &uploadError{status: http.StatusUnsupportedMediaType, detail: unsupportedDetail(kind)}
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, "", &uploadError{status: http.StatusUnprocessableEntity, detail: "Unreadable file"}
	}
	return &types.UploadedFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     file,
	}, file, query, nil
}

func unsupportedDetail(kind types.DocumentKind) string {
	switch kind {
	case types.DocumentKindPDF:
		return "Only PDF files are supported"
	case types.DocumentKindText:
		return "Only text files (.txt) are supported"
	case types.DocumentKindCSV:
		return "Only CSV files are supported"
	}
	return "Unsupported file type"
}
