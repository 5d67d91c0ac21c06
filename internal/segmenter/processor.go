package segmenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"docqa/internal/embedding"
	"docqa/internal/types"
)

// ErrNoChunks is returned when a document yields no usable chunks, either
// because segmentation produced nothing or because every chunk failed to
// embed.
var ErrNoChunks = errors.New("document produced no usable chunks")

// Processor turns a raw document into embedded chunks. The embedder is the
// only long-lived dependency; the processor itself is a cheap value and may
// be used concurrently.
type Processor struct {
	segmenter *Segmenter
	embedder  embedding.Embedder
	logger    zerolog.Logger
}

// NewProcessor creates a Processor around the given segmenter and embedder.
func NewProcessor(seg *Segmenter, embedder embedding.Embedder, logger zerolog.Logger) *Processor {
	return &Processor{segmenter: seg, embedder: embedder, logger: logger}
}

// ProcessDocument segments content, embeds every chunk and attaches
// per-chunk metadata. A chunk whose embedding fails is logged and dropped;
// the document fails only when no chunk survives.
func (p *Processor) ProcessDocument(ctx context.Context, content string, meta types.DocumentMeta) ([]types.Chunk, error) {
	parentID := newParentID(meta.Source)
	p.logger.Info().
		Str("parent_id", parentID).
		Int("content_length", len(content)).
		Msg("processing document")

	pieces := p.segmenter.Segment(content)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("segmenting %q: %w", meta.Source, ErrNoChunks)
	}
	p.logger.Info().Int("chunks", len(pieces)).Msg("split document")

	vectors, err := p.embedChunks(ctx, pieces)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chunks := make([]types.Chunk, 0, len(pieces))
	for idx, piece := range pieces {
		if vectors[idx] == nil {
			continue // embedding failed, chunk dropped
		}
		chunks = append(chunks, types.Chunk{
			ID:          fmt.Sprintf("%s_%d", parentID, idx),
			ParentID:    parentID,
			Content:     piece,
			Index:       idx,
			TotalChunks: len(pieces),
			Length:      len(piece),
			Metadata:    chunkMetadata(meta, parentID, idx, len(pieces), len(piece), now),
			Embedding:   vectors[idx],
			CreatedAt:   now,
		})
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("embedding all chunks of %q failed: %w", meta.Source, ErrNoChunks)
	}
	p.logger.Info().Int("chunks", len(chunks)).Str("parent_id", parentID).Msg("processed document")
	return chunks, nil
}

// embedChunks embeds all pieces, preferring one batched call. On batch
// failure it falls back to per-chunk embedding so that a single bad chunk
// does not sink the document. The result is index-aligned with pieces; a
// nil vector marks a dropped chunk.
func (p *Processor) embedChunks(ctx context.Context, pieces []string) ([][]float32, error) {
	vectors, err := p.embedder.EmbedMany(ctx, pieces)
	if err == nil {
		return vectors, nil
	}
	p.logger.Warn().Err(err).Msg("batch embedding failed, retrying per chunk")

	vectors = make([][]float32, len(pieces))
	for idx, piece := range pieces {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		v, err := p.embedder.Embed(ctx, piece)
		if err != nil {
			p.logger.Error().Err(err).Int("chunk", idx).Msg("embedding chunk failed, dropping")
			continue
		}
		vectors[idx] = v
	}
	return vectors, nil
}

func chunkMetadata(meta types.DocumentMeta, parentID string, idx, total, length int, ts time.Time) map[string]interface{} {
	m := map[string]interface{}{
		"source":       meta.Source,
		"timestamp":    ts.Format(time.RFC3339),
		"parent_id":    parentID,
		"chunk_index":  idx,
		"total_chunks": total,
		"chunk_length": length,
	}
	if meta.Title != "" {
		m["title"] = meta.Title
	}
	if len(meta.Tags) > 0 {
		// Vector store metadata only takes scalars.
		m["tags"] = strings.Join(meta.Tags, ",")
	}
	return m
}

// lastParentTS guarantees parent IDs stay unique across concurrent ingests
// of the same source.
var lastParentTS atomic.Int64

func newParentID(source string) string {
	now := time.Now().UnixNano()
	for {
		last := lastParentTS.Load()
		if now <= last {
			now = last + 1
		}
		if lastParentTS.CompareAndSwap(last, now) {
			break
		}
	}
	source = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '-'
		}
		return r
	}, source)
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("doc_%d_%s", now, source)
}
