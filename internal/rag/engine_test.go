package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

func TestSearchWithoutUserRunsOnlyFallback(t *testing.T) {
	for _, caseTypes := range [][]string{nil, {"penal"}, {"penal", "civil"}} {
		idx := &fakeIndex{responses: [][]vectorstore.SearchResult{{result(1000, 0.2, 1, "a")}}}
		contexts := &fakeContexts{}
		engine := NewEngine(&fakeEmbedder{}, idx, contexts)

		got, err := engine.Search(context.Background(), SearchRequest{Query: "robo", CaseTypes: caseTypes, Limit: 4})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		require.Len(t, idx.requests, 1)
		assert.Equal(t, 4, idx.requests[0].Limit)
		assert.Zero(t, contexts.calls)
	}
}

func TestSearchWithEmptyOrMissingContextMatchesNoUser(t *testing.T) {
	contexts := &fakeContexts{ids: map[string][]int64{"empty": {}}}

	for _, user := range []string{"empty", "missing"} {
		t.Run(user, func(t *testing.T) {
			idx := &fakeIndex{}
			engine := NewEngine(&fakeEmbedder{}, idx, contexts)

			_, err := engine.Search(context.Background(), SearchRequest{Query: "robo", UserID: user})
			require.NoError(t, err)
			require.Len(t, idx.requests, 1)
			assert.Nil(t, idx.requests[0].Filter)
			assert.Equal(t, DefaultLimit, idx.requests[0].Limit)
		})
	}
}

func TestSearchConfidentPersonalizedSkipsFallback(t *testing.T) {
	stage1 := []vectorstore.SearchResult{
		result(42000, 0.91, 42, "a"),
		result(42001, 0.30, 42, "b"),
		result(43005, 0.75, 43, "c"),
		result(44002, 0.50, 44, "d"),
	}
	idx := &fakeIndex{responses: [][]vectorstore.SearchResult{stage1}}
	contexts := &fakeContexts{ids: map[string][]int64{"u1": {42000, 42001, 43005, 44002}}}
	engine := NewEngine(&fakeEmbedder{}, idx, contexts)

	got, err := engine.Search(context.Background(), SearchRequest{Query: "robo", UserID: "u1", Limit: 20})
	require.NoError(t, err)

	require.Len(t, idx.requests, 1)
	assert.Equal(t, personalizedLimit, idx.requests[0].Limit)
	assert.True(t, idx.requests[0].WithPayload)
	assert.Equal(t, []vectorstore.SearchResult{stage1[0], stage1[2], stage1[3]}, got)
}

func TestSearchWeakPersonalizedFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		stage1 []vectorstore.SearchResult
	}{
		{name: "no results", stage1: []vectorstore.SearchResult{}},
		{name: "none good", stage1: []vectorstore.SearchResult{result(1, 0.49, 1, "a"), result(2, 0.1, 1, "b")}},
		{name: "two good", stage1: []vectorstore.SearchResult{
			result(1, 0.9, 1, "a"), result(2, 0.8, 1, "b"), result(3, 0.2, 1, "c"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage2 := []vectorstore.SearchResult{result(9000, 0.05, 9, "low"), result(9001, 0.01, 9, "lower")}
			idx := &fakeIndex{responses: [][]vectorstore.SearchResult{tt.stage1, stage2}}
			contexts := &fakeContexts{ids: map[string][]int64{"u1": {1, 2, 3}}}
			engine := NewEngine(&fakeEmbedder{}, idx, contexts)

			got, err := engine.Search(context.Background(), SearchRequest{Query: "robo", UserID: "u1", Limit: 10})
			require.NoError(t, err)
			require.Len(t, idx.requests, 2)
			assert.Equal(t, personalizedLimit, idx.requests[0].Limit)
			assert.Equal(t, 10, idx.requests[1].Limit)
			assert.Equal(t, stage2, got)
		})
	}
}

func TestSearchFilterShapes(t *testing.T) {
	ids := []int64{42000, 42001}
	tests := []struct {
		name       string
		caseTypes  []string
		wantStage1 *vectorstore.Filter
		wantStage2 *vectorstore.Filter
	}{
		{
			name:       "no case types",
			caseTypes:  nil,
			wantStage1: &vectorstore.Filter{Must: []vectorstore.Condition{vectorstore.HasID(ids)}},
			wantStage2: nil,
		},
		{
			name:      "single case type",
			caseTypes: []string{"penal"},
			wantStage1: &vectorstore.Filter{Must: []vectorstore.Condition{
				vectorstore.HasID(ids),
				{Key: "case_type", Match: &vectorstore.Match{Value: "penal"}},
			}},
			wantStage2: &vectorstore.Filter{Must: []vectorstore.Condition{
				{Key: "case_type", Match: &vectorstore.Match{Value: "penal"}},
			}},
		},
		{
			name:      "several case types",
			caseTypes: []string{"penal", "civil"},
			wantStage1: &vectorstore.Filter{Must: []vectorstore.Condition{
				vectorstore.HasID(ids),
				{Key: "case_type", Match: &vectorstore.Match{Any: []string{"penal", "civil"}}},
			}},
			wantStage2: &vectorstore.Filter{Must: []vectorstore.Condition{
				{Key: "case_type", Match: &vectorstore.Match{Any: []string{"penal", "civil"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndex{}
			contexts := &fakeContexts{ids: map[string][]int64{"u1": ids}}
			engine := NewEngine(&fakeEmbedder{}, idx, contexts)

			_, err := engine.Search(context.Background(), SearchRequest{Query: "robo", UserID: "u1", CaseTypes: tt.caseTypes})
			require.NoError(t, err)
			require.Len(t, idx.requests, 2)
			assert.Equal(t, tt.wantStage1, idx.requests[0].Filter)
			assert.Equal(t, tt.wantStage2, idx.requests[1].Filter)
		})
	}
}

func TestSearchErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("empty query", func(t *testing.T) {
		idx := &fakeIndex{}
		_, err := NewEngine(&fakeEmbedder{}, idx, &fakeContexts{}).Search(context.Background(), SearchRequest{Query: "  "})
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Empty(t, idx.requests)
	})

	t.Run("embedding", func(t *testing.T) {
		idx := &fakeIndex{}
		_, err := NewEngine(&fakeEmbedder{err: boom}, idx, &fakeContexts{}).Search(context.Background(), SearchRequest{Query: "robo"})
		assert.ErrorIs(t, err, ErrEmbedding)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, idx.requests)
	})

	t.Run("context store", func(t *testing.T) {
		idx := &fakeIndex{}
		_, err := NewEngine(&fakeEmbedder{}, idx, &fakeContexts{err: boom}).Search(context.Background(), SearchRequest{Query: "robo", UserID: "u1"})
		assert.ErrorIs(t, err, ErrContextStore)
		assert.Empty(t, idx.requests)
	})

	t.Run("personalized index", func(t *testing.T) {
		idx := &fakeIndex{errs: []error{boom}}
		contexts := &fakeContexts{ids: map[string][]int64{"u1": {1}}}
		got, err := NewEngine(&fakeEmbedder{}, idx, contexts).Search(context.Background(), SearchRequest{Query: "robo", UserID: "u1"})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrIndexQuery)

		var se *SearchError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StagePersonalized, se.Stage)
		assert.Len(t, idx.requests, 1)
	})

	t.Run("fallback index", func(t *testing.T) {
		idx := &fakeIndex{errs: []error{boom}}
		got, err := NewEngine(&fakeEmbedder{}, idx, &fakeContexts{}).Search(context.Background(), SearchRequest{Query: "robo"})
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrIndexQuery)

		var se *SearchError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageFallback, se.Stage)
	})
}

func TestSearchCancelledBeforeIndex(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := &fakeIndex{}
	_, err := NewEngine(&fakeEmbedder{}, idx, &fakeContexts{}).Search(ctx, SearchRequest{Query: "robo"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, idx.requests)
}
