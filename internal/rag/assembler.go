package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/legalrag/internal/models"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

// MetadataItem describes one source file of an answer. Lookup fields are nil
// when the file's metadata could not be loaded.
type MetadataItem struct {
	FileID      int64   `json:"file_id"`
	ID          int64   `json:"id"`
	FileURL     *string `json:"file_url"`
	FileSummary *string `json:"file_summary"`
	CaseType    *string `json:"case_type"`
	Score       float64 `json:"score"`
	Text        string  `json:"text"`
	Date        *string `json:"date"`
}

type MetadataLookup interface {
	FileMetadata(ctx context.Context, fileID int64) (*models.FileMetadata, error)
}

type MetadataLookupFunc func(ctx context.Context, fileID int64) (*models.FileMetadata, error)

func (f MetadataLookupFunc) FileMetadata(ctx context.Context, fileID int64) (*models.FileMetadata, error) {
	return f(ctx, fileID)
}

var errNoMetadata = errors.New("no metadata")

// Assemble builds the generator context from every result, in order, and one
// metadata item per distinct file in first-seen order.
func Assemble(ctx context.Context, results []vectorstore.SearchResult, lookup MetadataLookup) (string, []MetadataItem) {
	var sb strings.Builder
	items := make([]MetadataItem, 0)
	seen := make(map[int64]struct{}, len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "%dText: %s\n\n", i, r.Payload.Text)

		if _, ok := seen[r.Payload.FileID]; ok {
			continue
		}
		seen[r.Payload.FileID] = struct{}{}
		items = append(items, metadataItem(ctx, r, lookup))
	}

	return sb.String(), items
}

func metadataItem(ctx context.Context, r vectorstore.SearchResult, lookup MetadataLookup) MetadataItem {
	item := MetadataItem{
		FileID: r.Payload.FileID,
		ID:     r.ID,
		Score:  r.Score,
		Text:   r.Payload.Text,
	}
	if r.Payload.Date != "" {
		item.Date = &r.Payload.Date
	}

	if lookup == nil {
		return item
	}
	meta, err := lookup.FileMetadata(ctx, r.Payload.FileID)
	if err == nil && meta == nil {
		err = errNoMetadata
	}
	if err != nil {
		slog.Warn("file metadata lookup failed", "file_id", r.Payload.FileID, "error", err)
		return item
	}

	item.FileURL = &meta.FileURL
	item.FileSummary = &meta.FileSummary
	item.CaseType = &meta.CaseType
	return item
}
