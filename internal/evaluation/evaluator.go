package evaluation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"docqa/internal/classifier"
	"docqa/internal/embedding"
	"docqa/internal/retrieval"
)

// ExpectedDoc is the content a test case expects among the retrieved
// results.
type ExpectedDoc struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// TestCase is an immutable evaluation fixture: a query with the documents
// a correct retrieval should surface.
type TestCase struct {
	Query        string        `json:"query"`
	ExpectedDocs []ExpectedDoc `json:"expected_docs"`
	QueryType    string        `json:"query_type"`
	Description  string        `json:"description"`
}

// Evaluator replays test cases through the classifier and the retrieval
// filter and scores the results against expectations.
type Evaluator struct {
	classifier *classifier.Classifier
	filter     *retrieval.Filter
	embedder   embedding.Embedder
	topK       int
	logger     zerolog.Logger
}

// NewEvaluator wires an Evaluator. topK bounds how many documents each
// query retrieves.
func NewEvaluator(cls *classifier.Classifier, filter *retrieval.Filter, embedder embedding.Embedder, topK int, logger zerolog.Logger) *Evaluator {
	if topK <= 0 {
		topK = 3
	}
	return &Evaluator{
		classifier: cls,
		filter:     filter,
		embedder:   embedder,
		topK:       topK,
		logger:     logger,
	}
}

// Evaluate runs every test case and aggregates the metrics. A case that
// retrieves nothing scores zero but does not abort the run; a failing
// store or embedder does.
func (e *Evaluator) Evaluate(ctx context.Context, cases []TestCase) (EvaluationResults, error) {
	results := EvaluationResults{MetricsByQuery: make(map[string]RetrievalMetrics, len(cases))}
	if len(cases) == 0 {
		return results, nil
	}

	for _, tc := range cases {
		e.logger.Info().Str("query", tc.Query).Str("description", tc.Description).Msg("evaluating test case")

		cls := e.classifier.Classify(tc.Query)
		threshold := e.classifier.RecommendedThreshold(cls.Type)

		queryEmbedding, err := e.embedder.Embed(ctx, tc.Query)
		if err != nil {
			return results, fmt.Errorf("embedding query %q: %w", tc.Query, err)
		}

		retrieved, err := e.filter.Retrieve(ctx, queryEmbedding, e.topK, threshold)
		if err != nil {
			return results, fmt.Errorf("retrieving for query %q: %w", tc.Query, err)
		}
		e.logger.Debug().
			Int("retrieved", len(retrieved)).
			Str("classified_type", cls.Type.String()).
			Float64("threshold", threshold).
			Msg("retrieved documents")

		metrics := scoreQuery(retrieved, tc.ExpectedDocs)
		metrics.QueryType = tc.QueryType
		results.MetricsByQuery[tc.Query] = metrics
	}

	n := float64(len(results.MetricsByQuery))
	for _, m := range results.MetricsByQuery {
		results.AvgPrecision += m.Precision / n
		results.AvgRecall += m.Recall / n
		results.AvgF1 += m.F1 / n
		results.AvgMRR += m.MRR / n
	}
	return results, nil
}

// scoreQuery compares retrieved documents with the expectations of a
// single test case.
func scoreQuery(retrieved []retrieval.ScoredDocument, expected []ExpectedDoc) RetrievalMetrics {
	matches := 0
	for _, r := range retrieved {
		for _, exp := range expected {
			if TextsMatch(r.Content, exp.Content) {
				matches++
			}
		}
	}

	var precision, recall, f1 float64
	if len(retrieved) > 0 {
		precision = float64(matches) / float64(len(retrieved))
	}
	if len(expected) > 0 {
		recall = float64(matches) / float64(len(expected))
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	scores := make([]float64, 0, len(retrieved))
	for _, r := range retrieved {
		scores = append(scores, r.Similarity)
	}

	return RetrievalMetrics{
		Precision:       precision,
		Recall:          recall,
		F1:              f1,
		MRR:             reciprocalRank(retrieved, expected),
		RelevanceScores: scores,
	}
}

// reciprocalRank returns 1/rank of the first retrieved document matching
// any expected document, 0 when none matches.
func reciprocalRank(retrieved []retrieval.ScoredDocument, expected []ExpectedDoc) float64 {
	for i, r := range retrieved {
		for _, exp := range expected {
			if TextsMatch(r.Content, exp.Content) {
				return 1.0 / float64(i+1)
			}
		}
	}
	return 0
}
