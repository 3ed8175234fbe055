package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

// Extract converts an uploaded file into plain text suitable for chunking.
// The format is chosen by file extension.
func Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return extractText(data)
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidExtension, filepath.Ext(filename))
	}
}

func extractText(data []byte) (string, error) {
	// Uploaded text files occasionally carry NUL bytes (UTF-16 leftovers,
	// truncated uploads); PostgreSQL rejects them in text columns.
	cleaned := strings.ReplaceAll(string(data), "\x00", "")
	return cleaned, nil
}
