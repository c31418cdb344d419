package rag

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery   = errors.New("query must not be empty")
	ErrEmbedding    = errors.New("embedding failure")
	ErrIndexQuery   = errors.New("index query failure")
	ErrContextStore = errors.New("context store failure")
)

// Search stages, reported in SearchError.
const (
	StageEmbed        = "embed"
	StagePersonalized = "personalized"
	StageFallback     = "fallback"
)

// SearchError is fatal for a single Search call. It matches both its Kind
// and the underlying cause with errors.Is.
type SearchError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *SearchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
