package rag

import "github.com/nikhilbhutani/legalrag/internal/vectorstore"

const (
	// personalizedLimit is the sample size of the personalized stage. It is
	// fixed so that confidenceCount is measured against the same sample no
	// matter what limit the caller asks for.
	personalizedLimit = 6
	confidenceScore   = 0.5
	confidenceCount   = 3
)

// confidenceGate keeps the personalized results scoring at least
// confidenceScore and reports whether enough of them remain to skip the
// fallback stage.
func confidenceGate(results []vectorstore.SearchResult) ([]vectorstore.SearchResult, bool) {
	good := make([]vectorstore.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= confidenceScore {
			good = append(good, r)
		}
	}
	return good, len(good) >= confidenceCount
}
