package vectorstore

import (
	"context"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go"
	"github.com/amikos-tech/chroma-go/collection"
	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/rs/zerolog"
)

// ChromaStore implements Store on top of a ChromaDB collection.
type ChromaStore struct {
	client         *chromago.Client
	collectionName string
	logger         zerolog.Logger
}

// NewChromaStore connects to a ChromaDB server and ensures the named
// collection exists, configured for cosine distance.
func NewChromaStore(url, collectionName string, logger zerolog.Logger) (*ChromaStore, error) {
	client, err := chromago.NewClient(chromago.WithBasePath(url))
	if err != nil {
		return nil, fmt.Errorf("failed to create ChromaDB client: %w", err)
	}

	s := &ChromaStore{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}
	if _, err := s.collection(context.Background()); err != nil {
		return nil, err
	}
	logger.Info().Str("collection", collectionName).Str("url", url).Msg("connected to ChromaDB")
	return s, nil
}

func (s *ChromaStore) collection(ctx context.Context) (*chromago.Collection, error) {
	col, err := s.client.NewCollection(
		ctx,
		s.collectionName,
		collection.WithHNSWDistanceFunction(chromatypes.COSINE),
		collection.WithCreateIfNotExist(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create or get collection %s: %w", s.collectionName, err)
	}
	return col, nil
}

// Upsert implements Store.
func (s *ChromaStore) Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := s.collection(ctx)
	if err != nil {
		return err
	}

	vecs := make([]*chromatypes.Embedding, len(embeddings))
	for i, e := range embeddings {
		vecs[i] = chromatypes.NewEmbeddingFromFloat32(e)
	}

	if _, err := col.Add(ctx, vecs, metadatas, documents, ids); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	s.logger.Info().Int("count", len(ids)).Str("collection", s.collectionName).Msg("stored documents")
	return nil
}

// Query implements Store. Chroma returns candidates in ascending distance
// order already; the order is passed through untouched.
func (s *ChromaStore) Query(ctx context.Context, embedding []float32, k int) (*QueryResult, error) {
	col, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	res, err := col.QueryWithOptions(ctx,
		chromatypes.WithQueryEmbeddings([]*chromatypes.Embedding{chromatypes.NewEmbeddingFromFloat32(embedding)}),
		chromatypes.WithNResults(int32(k)),
		chromatypes.WithInclude(chromatypes.IDocuments, chromatypes.IMetadatas, chromatypes.IDistances),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	out := &QueryResult{}
	if len(res.Documents) == 0 {
		return out, nil
	}
	for i := range res.Documents[0] {
		out.Documents = append(out.Documents, res.Documents[0][i])
		if len(res.Ids) > 0 && i < len(res.Ids[0]) {
			out.IDs = append(out.IDs, res.Ids[0][i])
		}
		if len(res.Metadatas) > 0 && i < len(res.Metadatas[0]) {
			out.Metadatas = append(out.Metadatas, res.Metadatas[0][i])
		}
		if len(res.Distances) > 0 && i < len(res.Distances[0]) {
			out.Distances = append(out.Distances, float64(res.Distances[0][i]))
		}
	}
	return out, nil
}

// Get implements Store.
func (s *ChromaStore) Get(ctx context.Context, where map[string]interface{}) (*QueryResult, error) {
	col, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := []chromatypes.CollectionQueryOption{
		chromatypes.WithInclude(chromatypes.IDocuments, chromatypes.IMetadatas),
	}
	if where != nil {
		opts = append(opts, chromatypes.WithWhereMap(where))
	}
	res, err := col.GetWithOptions(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}

	return &QueryResult{
		IDs:       res.Ids,
		Documents: res.Documents,
		Metadatas: res.Metadatas,
	}, nil
}

// Delete implements Store.
func (s *ChromaStore) Delete(ctx context.Context, ids []string, where map[string]interface{}) error {
	col, err := s.collection(ctx)
	if err != nil {
		return err
	}
	deleted, err := col.Delete(ctx, ids, where, nil)
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	s.logger.Info().Int("count", len(deleted)).Str("collection", s.collectionName).Msg("deleted documents")
	return nil
}
