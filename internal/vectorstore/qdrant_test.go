package vectorstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQdrantSearch(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/collections/legal/points/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"result":[
			{"id":42003,"version":1,"score":0.91,"payload":{"text":"fallo","file_id":42,"case_type":"penal","date":"2021-05-01"}},
			{"id":43000,"version":1,"score":0.40,"payload":{"text":"auto","file_id":43,"case_type":"civil"}}
		],"status":"ok","time":0.001}`)
	}))
	defer srv.Close()

	store := NewQdrantStore(srv.URL+"/", "secret", "legal")
	results, err := store.Search(context.Background(), SearchRequest{
		Vector:      []float32{0.1, 0.2},
		Filter:      &Filter{Must: []Condition{*MatchCaseTypes([]string{"penal"})}},
		Limit:       6,
		WithPayload: true,
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, int64(42003), results[0].ID)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
	assert.Equal(t, Payload{Text: "fallo", FileID: 42, CaseType: "penal", Date: "2021-05-01"}, results[0].Payload)

	assert.Equal(t, float64(6), gotBody["limit"])
	assert.Equal(t, true, gotBody["with_payload"])
	assert.Equal(t, false, gotBody["with_vector"])
	assert.Equal(t, map[string]any{
		"must": []any{map[string]any{"key": "case_type", "match": map[string]any{"value": "penal"}}},
	}, gotBody["filter"])
}

func TestQdrantSearchOmitsNilFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasFilter := body["filter"]
		assert.False(t, hasFilter)
		io.WriteString(w, `{"result":[],"status":"ok"}`)
	}))
	defer srv.Close()

	results, err := NewQdrantStore(srv.URL, "", "legal").Search(context.Background(), SearchRequest{Vector: []float32{1}, Limit: 3})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestQdrantSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"status":{"error":"Wrong input: Vector dimension error"},"time":0}`)
	}))
	defer srv.Close()

	_, err := NewQdrantStore(srv.URL, "", "legal").Search(context.Background(), SearchRequest{Vector: []float32{1}, Limit: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Vector dimension error")
}

func TestQdrantEnsureCollection(t *testing.T) {
	var created map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/legal", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"status":{"error":"Not found"}}`)
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			io.WriteString(w, `{"result":true,"status":"ok"}`)
		}
	}))
	defer srv.Close()

	require.NoError(t, NewQdrantStore(srv.URL, "", "legal").EnsureCollection(context.Background(), 768))
	assert.Equal(t, map[string]any{"size": float64(768), "distance": "Cosine"}, created["vectors"])
}

func TestQdrantDeleteFileSendsIDRange(t *testing.T) {
	var body struct {
		Points []int64 `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/legal/points/delete", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{"result":{"status":"completed"},"status":"ok"}`)
	}))
	defer srv.Close()

	require.NoError(t, NewQdrantStore(srv.URL, "", "legal").DeleteFile(context.Background(), 42))
	require.Len(t, body.Points, MaxChunksPerFile)
	assert.Equal(t, int64(42000), body.Points[0])
	assert.Equal(t, int64(42999), body.Points[MaxChunksPerFile-1])
}

func TestQdrantUpsert(t *testing.T) {
	var body struct {
		Points []Point `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{"result":{"status":"completed"},"status":"ok"}`)
	}))
	defer srv.Close()

	pts := []Point{{ID: 42000, Vector: []float32{0.5}, Payload: Payload{Text: "t", FileID: 42, CaseType: "penal"}}}
	require.NoError(t, NewQdrantStore(srv.URL, "", "legal").Upsert(context.Background(), pts))
	assert.Equal(t, pts, body.Points)
}
