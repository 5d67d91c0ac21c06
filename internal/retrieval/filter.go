// Package retrieval turns raw vector-store candidates into a
// precision-filtered, bounded result set using a query-aware similarity
// threshold.
package retrieval

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"docqa/internal/vectorstore"
)

// Tuned constants. The relative floor keeps near-best results when the
// absolute threshold is too strict for a given query; changing it changes
// retrieval behavior materially.
const (
	DefaultRelativeFloor = 0.8
	overFetchFactor      = 5
	maxOverFetch         = 30

	DefaultHighSimilarity     = 0.75
	DefaultModerateSimilarity = 0.60
)

// Relevance is a coarse label derived from the similarity score.
type Relevance string

const (
	RelevanceHigh     Relevance = "high"
	RelevanceModerate Relevance = "moderate"
	RelevanceLow      Relevance = "low"
)

// ScoredDocument is a retrieved document with its similarity scoring.
type ScoredDocument struct {
	ID         string
	Content    string
	Metadata   map[string]interface{}
	Distance   float64
	Similarity float64
	Relevance  Relevance
}

// Similarity converts a cosine distance in [0, 2] to a similarity score in
// [0, 1]. The mapping is a system-wide contract shared with the evaluator;
// it must not diverge between components.
func Similarity(distance float64) float64 {
	return (2 - distance) / 2
}

// Filter runs threshold-filtered nearest-neighbor retrieval against a
// vector store. It is a cheap, stateless value; only the store handle is
// shared.
type Filter struct {
	store              vectorstore.Store
	relativeFloor      float64
	highSimilarity     float64
	moderateSimilarity float64
	logger             zerolog.Logger
}

// NewFilter creates a Filter over the given store with default cutoffs.
func NewFilter(store vectorstore.Store, logger zerolog.Logger) *Filter {
	return &Filter{
		store:              store,
		relativeFloor:      DefaultRelativeFloor,
		highSimilarity:     DefaultHighSimilarity,
		moderateSimilarity: DefaultModerateSimilarity,
		logger:             logger,
	}
}

// WithRelevanceCutoffs sets the high/moderate similarity cutoffs used for
// relevance labeling.
func (f *Filter) WithRelevanceCutoffs(high, moderate float64) *Filter {
	if high > 0 {
		f.highSimilarity = high
	}
	if moderate > 0 {
		f.moderateSimilarity = moderate
	}
	return f
}

// WithRelativeFloor overrides the fraction of the best candidate's
// similarity used as the relative threshold.
func (f *Filter) WithRelativeFloor(floor float64) *Filter {
	if floor > 0 {
		f.relativeFloor = floor
	}
	return f
}

// Retrieve fetches an over-sized candidate set, filters it by the
// effective threshold and returns at most nResults scored documents.
//
// The effective threshold is max(threshold, best*relativeFloor): an
// absolute floor combined with a floor pinned to the best hit, so a query
// with only mediocre matches still returns its near-best candidates. An
// empty result is a normal outcome, not an error.
func (f *Filter) Retrieve(ctx context.Context, queryEmbedding []float32, nResults int, threshold float64) ([]ScoredDocument, error) {
	// Over-fetch to survive aggressive filtering.
	expanded := nResults * overFetchFactor
	if expanded > maxOverFetch {
		expanded = maxOverFetch
	}

	res, err := f.store.Query(ctx, queryEmbedding, expanded)
	if err != nil {
		return nil, fmt.Errorf("vector store query failed: %w", err)
	}
	if res.Len() == 0 {
		return nil, nil
	}

	best := Similarity(res.Distances[0])
	effective := threshold
	if rel := best * f.relativeFloor; rel > effective {
		effective = rel
	}
	f.logger.Debug().
		Float64("threshold", threshold).
		Float64("best_similarity", best).
		Float64("effective_threshold", effective).
		Int("candidates", res.Len()).
		Msg("filtering retrieval candidates")

	var kept []ScoredDocument
	for i := 0; i < res.Len(); i++ {
		similarity := Similarity(res.Distances[i])
		if similarity < effective {
			continue
		}
		doc := ScoredDocument{
			Content:    res.Documents[i],
			Distance:   res.Distances[i],
			Similarity: similarity,
			Relevance:  f.relevance(similarity),
		}
		if i < len(res.IDs) {
			doc.ID = res.IDs[i]
		}
		if i < len(res.Metadatas) {
			doc.Metadata = res.Metadatas[i]
		}
		kept = append(kept, doc)
		if len(kept) >= nResults {
			break
		}
	}
	return kept, nil
}

func (f *Filter) relevance(similarity float64) Relevance {
	switch {
	case similarity >= f.highSimilarity:
		return RelevanceHigh
	case similarity >= f.moderateSimilarity:
		return RelevanceModerate
	default:
		return RelevanceLow
	}
}
