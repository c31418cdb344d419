package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// QdrantStore talks to the Qdrant REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

func NewQdrantStore(baseURL, apiKey, collection string) *QdrantStore {
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type qdrantResponse struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type qdrantSearchReq struct {
	Vector      []float32 `json:"vector"`
	Filter      *Filter   `json:"filter,omitempty"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	WithVector  bool      `json:"with_vector"`
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, dim int) error {
	status, _, err := s.do(ctx, http.MethodGet, s.collectionPath(""), nil)
	if err != nil {
		return fmt.Errorf("qdrant get collection: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{"size": dim, "distance": "Cosine"},
	}
	status, raw, err := s.do(ctx, http.MethodPut, s.collectionPath(""), body)
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant create collection failed (%d): %s", status, errorText(raw))
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	status, raw, err := s.do(ctx, http.MethodPut, s.collectionPath("/points?wait=true"),
		map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant upsert failed (%d): %s", status, errorText(raw))
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	status, raw, err := s.do(ctx, http.MethodPost, s.collectionPath("/points/search"), qdrantSearchReq{
		Vector:      req.Vector,
		Filter:      req.Filter,
		Limit:       req.Limit,
		WithPayload: req.WithPayload,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant search failed (%d): %s", status, errorText(raw))
	}

	var resp qdrantResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("qdrant search decode: %w", err)
	}
	results := []SearchResult{}
	if len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, &results); err != nil {
			return nil, fmt.Errorf("qdrant search decode result: %w", err)
		}
	}
	return results, nil
}

// DeleteFile deletes the file's id range by point id.
func (s *QdrantStore) DeleteFile(ctx context.Context, fileID int64) error {
	lo, hi := FileIDRange(fileID)
	ids := make([]int64, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		ids = append(ids, id)
	}

	status, raw, err := s.do(ctx, http.MethodPost, s.collectionPath("/points/delete?wait=true"),
		map[string]any{"points": ids})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant delete failed (%d): %s", status, errorText(raw))
	}
	return nil
}

func (s *QdrantStore) collectionPath(suffix string) string {
	return s.baseURL + "/collections/" + url.PathEscape(s.collection) + suffix
}

func (s *QdrantStore) do(ctx context.Context, method, target string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func errorText(raw []byte) string {
	var resp qdrantResponse
	if err := json.Unmarshal(raw, &resp); err == nil && len(resp.Status) > 0 {
		var st struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Status, &st) == nil && st.Error != "" {
			return st.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
