package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MaxChunksPerFile bounds the chunk offset so every file owns the id range
// [fileID*MaxChunksPerFile, (fileID+1)*MaxChunksPerFile).
const MaxChunksPerFile = 1000

var ErrTooManyChunks = errors.New("too many chunks for one file")

// Payload is the metadata stored alongside every vector.
type Payload struct {
	Text     string `json:"text"`
	FileID   int64  `json:"file_id"`
	CaseType string `json:"case_type"`
	Date     string `json:"date,omitempty"`
}

// Point is the unit written to the index.
type Point struct {
	ID      int64     `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// SearchResult is a scored hit. Score is cosine similarity.
type SearchResult struct {
	ID      int64   `json:"id"`
	Score   float64 `json:"score"`
	Payload Payload `json:"payload"`
}

// Filter is a conjunction of conditions. Its JSON form is the Qdrant filter
// syntax, so it can be sent to Qdrant unchanged.
type Filter struct {
	Must []Condition `json:"must,omitempty"`
}

// Condition is either an id membership test (HasID) or a payload match on Key.
type Condition struct {
	HasID []int64 `json:"has_id,omitempty"`
	Key   string  `json:"key,omitempty"`
	Match *Match  `json:"match,omitempty"`
}

// Match holds a single exact value or a set of alternatives.
type Match struct {
	Value string   `json:"value,omitempty"`
	Any   []string `json:"any,omitempty"`
}

type SearchRequest struct {
	Vector      []float32
	Filter      *Filter
	Limit       int
	WithPayload bool
}

type VectorIndex interface {
	// EnsureCollection creates the collection for vectors of the given
	// dimension if it does not exist yet.
	EnsureCollection(ctx context.Context, dim int) error
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)
	// DeleteFile removes every point whose payload file_id matches.
	DeleteFile(ctx context.Context, fileID int64) error
}

// PointID derives the id of chunk offset within file fileID.
func PointID(fileID int64, offset int) (int64, error) {
	if offset < 0 || offset >= MaxChunksPerFile {
		return 0, fmt.Errorf("%w: offset %d for file %d", ErrTooManyChunks, offset, fileID)
	}
	return fileID*MaxChunksPerFile + int64(offset), nil
}

// FileIDRange returns the inclusive id bounds owned by fileID.
func FileIDRange(fileID int64) (lo, hi int64) {
	lo = fileID * MaxChunksPerFile
	return lo, lo + MaxChunksPerFile - 1
}

// HasID builds an id membership condition.
func HasID(ids []int64) Condition {
	return Condition{HasID: ids}
}

// MatchCaseTypes builds the case_type condition: an exact match for one
// value, an OR match for several, and nil when nothing is selected.
// Blank entries and duplicates are ignored.
func MatchCaseTypes(caseTypes []string) *Condition {
	seen := make(map[string]bool, len(caseTypes))
	var values []string
	for _, ct := range caseTypes {
		ct = strings.TrimSpace(ct)
		if ct == "" || seen[ct] {
			continue
		}
		seen[ct] = true
		values = append(values, ct)
	}

	switch len(values) {
	case 0:
		return nil
	case 1:
		return &Condition{Key: "case_type", Match: &Match{Value: values[0]}}
	default:
		return &Condition{Key: "case_type", Match: &Match{Any: values}}
	}
}
