// Package ingest coordinates document ingestion: segmenting, embedding and
// persisting chunks in the vector store.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"docqa/internal/segmenter"
	"docqa/internal/types"
	"docqa/internal/vectorstore"
)

// Result summarizes a completed ingestion.
type Result struct {
	ParentID   string `json:"parent_id"`
	ChunkCount int    `json:"chunk_count"`
	Source     string `json:"source"`
}

// Service is the ingestion pipeline: raw document in, embedded chunks in
// the store out.
type Service struct {
	processor   *segmenter.Processor
	store       vectorstore.Store
	workerCount int
	logger      zerolog.Logger
}

// NewService creates an ingestion service.
func NewService(processor *segmenter.Processor, store vectorstore.Store, logger zerolog.Logger) *Service {
	return &Service{
		processor:   processor,
		store:       store,
		workerCount: 4,
		logger:      logger,
	}
}

// WithWorkerCount sets the number of workers used by IngestAll.
func (s *Service) WithWorkerCount(count int) *Service {
	if count > 0 {
		s.workerCount = count
	}
	return s
}

// IngestDocument processes a single document and persists its chunks.
func (s *Service) IngestDocument(ctx context.Context, doc types.RawDocument) (*Result, error) {
	chunks, err := s.processor.ProcessDocument(ctx, doc.Content, doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("processing document %q: %w", doc.Metadata.Source, err)
	}

	if err := s.saveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks for %q: %w", doc.Metadata.Source, err)
	}

	result := &Result{
		ParentID:   chunks[0].ParentID,
		ChunkCount: len(chunks),
		Source:     doc.Metadata.Source,
	}
	s.logger.Info().
		Str("parent_id", result.ParentID).
		Int("chunks", result.ChunkCount).
		Str("source", result.Source).
		Msg("ingested document")
	return result, nil
}

// IngestAll processes documents concurrently. A document that fails is
// logged and skipped; the first context cancellation aborts the batch.
func (s *Service) IngestAll(ctx context.Context, docs []types.RawDocument) ([]Result, error) {
	docCh := make(chan types.RawDocument)
	resultCh := make(chan Result, len(docs))
	var wg sync.WaitGroup

	workers := s.workerCount
	if workers > len(docs) {
		workers = len(docs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for doc := range docCh {
				if ctx.Err() != nil {
					return
				}
				res, err := s.IngestDocument(ctx, doc)
				if err != nil {
					s.logger.Error().
						Err(err).
						Int("worker_id", workerID).
						Str("source", doc.Metadata.Source).
						Msg("failed to ingest document")
					continue
				}
				resultCh <- *res
			}
		}(w)
	}

	go func() {
		defer close(docCh)
		for _, doc := range docs {
			select {
			case docCh <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, len(docs))
	for res := range resultCh {
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// UpdateSource replaces all stored chunks of a source with a freshly
// processed version of the document.
//
// The delete and the re-insert are two separate store calls and are not
// atomic: a concurrent query between them observes a transient empty state
// for this source.
func (s *Service) UpdateSource(ctx context.Context, doc types.RawDocument) (*Result, error) {
	if err := s.DeleteSource(ctx, doc.Metadata.Source); err != nil {
		return nil, err
	}
	return s.IngestDocument(ctx, doc)
}

// DeleteSource removes every chunk whose metadata source matches.
func (s *Service) DeleteSource(ctx context.Context, source string) error {
	if err := s.store.Delete(ctx, nil, map[string]interface{}{"source": source}); err != nil {
		return fmt.Errorf("deleting source %q: %w", source, err)
	}
	s.logger.Info().Str("source", source).Msg("deleted stored chunks for source")
	return nil
}

func (s *Service) saveChunks(ctx context.Context, chunks []types.Chunk) error {
	ids := make([]string, 0, len(chunks))
	embeddings := make([][]float32, 0, len(chunks))
	documents := make([]string, 0, len(chunks))
	metadatas := make([]map[string]interface{}, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
		embeddings = append(embeddings, c.Embedding)
		documents = append(documents, c.Content)
		metadatas = append(metadatas, c.Metadata)
	}
	return s.store.Upsert(ctx, ids, embeddings, documents, metadatas)
}
