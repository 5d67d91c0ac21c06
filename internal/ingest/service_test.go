package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/embedding"
	"docqa/internal/segmenter"
	"docqa/internal/types"
	"docqa/internal/vectorstore"
)

type staticEmbedder struct{ dim int }

func (e *staticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dim)
	v[len(text)%e.dim] = 1
	return v, nil
}

func (e *staticEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (e *staticEmbedder) Dimension() int { return e.dim }

var _ embedding.Embedder = (*staticEmbedder)(nil)

func newTestService(store vectorstore.Store) *Service {
	seg := segmenter.NewSegmenter(zerolog.Nop()).
		WithMinChunkSize(5).
		WithMaxChunkSize(40).
		WithOverlapSize(0)
	proc := segmenter.NewProcessor(seg, &staticEmbedder{dim: 8}, zerolog.Nop())
	return NewService(proc, store, zerolog.Nop())
}

func TestIngestDocument(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := newTestService(store)

	res, err := svc.IngestDocument(context.Background(), types.RawDocument{
		Content:  "Der erste Absatz steht hier.\n\nDer zweite Absatz steht hier.",
		Metadata: types.DocumentMeta{Source: "article1.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, "article1.md", res.Source)
	assert.Equal(t, 2, res.ChunkCount)
	assert.NotEmpty(t, res.ParentID)

	stored, err := store.Get(context.Background(), map[string]interface{}{"source": "article1.md"})
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Len())
	for _, m := range stored.Metadatas {
		assert.Equal(t, res.ParentID, m["parent_id"])
	}
}

func TestIngestDocumentEmptyContentFails(t *testing.T) {
	svc := newTestService(vectorstore.NewMemoryStore())

	_, err := svc.IngestDocument(context.Background(), types.RawDocument{
		Content:  "  ",
		Metadata: types.DocumentMeta{Source: "empty.md"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, segmenter.ErrNoChunks)
}

func TestIngestAll(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := newTestService(store).WithWorkerCount(2)

	docs := make([]types.RawDocument, 0, 5)
	for i := 0; i < 5; i++ {
		docs = append(docs, types.RawDocument{
			Content:  "Ein kurzer Absatz mit Inhalt.",
			Metadata: types.DocumentMeta{Source: fmt.Sprintf("doc%d.md", i)},
		})
	}

	results, err := svc.IngestAll(context.Background(), docs)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	stored, err := store.Get(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Len())
}

func TestIngestAllSkipsFailedDocuments(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := newTestService(store)

	docs := []types.RawDocument{
		{Content: "Guter Inhalt hier.", Metadata: types.DocumentMeta{Source: "good.md"}},
		{Content: "   ", Metadata: types.DocumentMeta{Source: "bad.md"}},
	}

	results, err := svc.IngestAll(context.Background(), docs)
	require.NoError(t, err, "a failing document is skipped, not fatal")
	require.Len(t, results, 1)
	assert.Equal(t, "good.md", results[0].Source)
}

func TestIngestAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(vectorstore.NewMemoryStore())
	_, err := svc.IngestAll(ctx, []types.RawDocument{
		{Content: "Inhalt.", Metadata: types.DocumentMeta{Source: "a.md"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateSourceReplacesChunks(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.IngestDocument(ctx, types.RawDocument{
		Content:  "Alte Version des Texts.\n\nNoch ein alter Absatz.",
		Metadata: types.DocumentMeta{Source: "article1.md"},
	})
	require.NoError(t, err)

	second, err := svc.UpdateSource(ctx, types.RawDocument{
		Content:  "Neue Version des Texts.",
		Metadata: types.DocumentMeta{Source: "article1.md"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ParentID, second.ParentID)

	stored, err := store.Get(ctx, map[string]interface{}{"source": "article1.md"})
	require.NoError(t, err)
	require.Equal(t, 1, stored.Len(), "old chunks must be gone")
	assert.Equal(t, "Neue Version des Texts.", stored.Documents[0])
	assert.Equal(t, second.ParentID, stored.Metadatas[0]["parent_id"])
}

func TestDeleteSource(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.IngestDocument(ctx, types.RawDocument{
		Content:  "Inhalt von A.",
		Metadata: types.DocumentMeta{Source: "a.md"},
	})
	require.NoError(t, err)
	_, err = svc.IngestDocument(ctx, types.RawDocument{
		Content:  "Inhalt von B.",
		Metadata: types.DocumentMeta{Source: "b.md"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSource(ctx, "a.md"))

	stored, err := store.Get(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Len())
	assert.Equal(t, "b.md", stored.Metadatas[0]["source"])
}

type failingStore struct{ vectorstore.Store }

func (f *failingStore) Upsert(context.Context, []string, [][]float32, []string, []map[string]interface{}) error {
	return errors.New("store unavailable")
}

func TestIngestDocumentStoreErrorPropagates(t *testing.T) {
	svc := newTestService(&failingStore{Store: vectorstore.NewMemoryStore()})

	_, err := svc.IngestDocument(context.Background(), types.RawDocument{
		Content:  "Inhalt.",
		Metadata: types.DocumentMeta{Source: "a.md"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}
