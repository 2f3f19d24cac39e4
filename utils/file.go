package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tieubaoca/docqa-be/types"
)

var extensionContentTypes = map[string]string{
	".pdf": types.ContentTypePDF,
	".txt": types.ContentTypeText,
	".csv": types.ContentTypeCSV,
}

// ContentTypeFromPath maps a local file extension to the content type the
// HTTP endpoints expect. ok is false for unsupported extensions.
func ContentTypeFromPath(path string) (string, bool) {
	ct, ok := extensionContentTypes[strings.ToLower(filepath.Ext(path))]
	return ct, ok
}

// OpenLocalFile opens path as an UploadedFile. The caller closes the returned file.
func OpenLocalFile(path string) (*types.UploadedFile, *os.File, error) {
	contentType, ok := ContentTypeFromPath(path)
	if !ok {
		return nil, nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %v", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %v", err)
	}

	return &types.UploadedFile{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        stat.Size(),
		Content:     f,
	}, f, nil
}
