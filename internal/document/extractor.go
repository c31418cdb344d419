package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/legalrag/pkg/textextract"
)

var ErrNoText = errors.New("no extractable text")

type TextExtractor interface {
	Extract(data []byte, fileType string) (string, error)
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return extractor{}
}

// Extract fails with ErrNoText for files without a text layer, such as
// scanned PDFs.
func (extractor) Extract(data []byte, fileType string) (string, error) {
	result, err := textextract.Extract(bytes.NewReader(data), int64(len(data)), fileType)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	text := strings.TrimSpace(result.Content)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
