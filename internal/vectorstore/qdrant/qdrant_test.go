package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thai-legal-rag/internal/domain"
)

func TestInit_CreatesMissingCollection(t *testing.T) {
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/laws", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("api-key"))
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			var body map[string]map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(8), body["vectors"]["size"])
			created = true
			w.Write([]byte(`{"result":true}`))
		}
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL, APIKey: "k", Collection: "laws"})
	require.NoError(t, s.Init(8))
	assert.True(t, created)
}

func TestInit_ExistingCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"result":{}}`))
	}))
	defer srv.Close()

	require.NoError(t, NewStorage(Config{URL: srv.URL}).Init(4))
}

func TestUpsertAndSearch(t *testing.T) {
	var stored []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/thai_law/points":
			var body struct {
				Points []map[string]any `json:"points"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			stored = body.Points
			w.Write([]byte(`{"result":{}}`))
		case "/collections/thai_law/points/search":
			p := stored[0]
			json.NewEncoder(w).Encode(map[string]any{
				"result": []any{map[string]any{"id": p["id"], "score": 0.9, "payload": p["payload"]}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := NewStorage(Config{URL: srv.URL})
	c := domain.Chunk{
		ID:         "3f1a3b5e-8a55-5b8f-9d0e-1b7c7a0c2f11",
		DocumentID: "doc",
		Index:      2,
		Text:       "[พ.ร.บ.ฯ | มาตรา ๑]\n\nมาตรา ๑",
		Metadata:   domain.ChunkMetadata{LawName: "พระราชบัญญัติ", SectionNumbers: []string{"1"}, ChunkIndex: 2},
	}
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, []domain.Chunk{c}, [][]float64{{0.1, 0.2}}))
	require.Len(t, stored, 1)
	assert.Equal(t, c.ID, stored[0]["id"])

	res, err := s.Search(ctx, []float64{0.1, 0.2}, 3)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, c, res[0].Chunk)
	assert.InDelta(t, 0.9, res[0].Score, 1e-9)
}

func TestUpsert_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewStorage(Config{URL: srv.URL}).Upsert(context.Background(),
		[]domain.Chunk{{ID: "x"}}, [][]float64{{1}})
	assert.Error(t, err)
}

func TestClear_MissingCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	assert.NoError(t, NewStorage(Config{URL: srv.URL}).Clear())
}
