// Package evaluation measures retrieval quality offline: it replays fixed
// test cases through the classifier and retrieval filter and reports
// precision, recall, F1 and MRR per query and in aggregate.
package evaluation

import (
	"fmt"
	"sort"
	"strings"
)

// RetrievalMetrics holds the quality metrics of a single evaluated query.
type RetrievalMetrics struct {
	Precision       float64   `json:"precision"`
	Recall          float64   `json:"recall"`
	F1              float64   `json:"f1_score"`
	MRR             float64   `json:"mrr"`
	RelevanceScores []float64 `json:"relevance_scores"`
	QueryType       string    `json:"query_type"`
}

// AvgRelevance is the mean of the raw similarity scores, 0 when nothing
// was retrieved.
func (m RetrievalMetrics) AvgRelevance() float64 {
	if len(m.RelevanceScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range m.RelevanceScores {
		sum += s
	}
	return sum / float64(len(m.RelevanceScores))
}

func (m RetrievalMetrics) String() string {
	return fmt.Sprintf(
		"Query Type: %s\nPrecision: %.3f\nRecall: %.3f\nF1 Score: %.3f\nMRR: %.3f\nAvg Relevance: %.3f",
		m.QueryType, m.Precision, m.Recall, m.F1, m.MRR, m.AvgRelevance(),
	)
}

// TypeAverages aggregates metrics for one query type.
type TypeAverages struct {
	Precision float64
	Recall    float64
	F1        float64
	MRR       float64
	Count     int
}

// EvaluationResults aggregates metrics across all test cases.
type EvaluationResults struct {
	MetricsByQuery map[string]RetrievalMetrics
	AvgPrecision   float64
	AvgRecall      float64
	AvgF1          float64
	AvgMRR         float64
}

// MetricsByType groups per-query metrics by query type and averages them.
func (r EvaluationResults) MetricsByType() map[string]TypeAverages {
	byType := make(map[string]TypeAverages)
	for _, m := range r.MetricsByQuery {
		agg := byType[m.QueryType]
		agg.Precision += m.Precision
		agg.Recall += m.Recall
		agg.F1 += m.F1
		agg.MRR += m.MRR
		agg.Count++
		byType[m.QueryType] = agg
	}
	for t, agg := range byType {
		n := float64(agg.Count)
		agg.Precision /= n
		agg.Recall /= n
		agg.F1 /= n
		agg.MRR /= n
		byType[t] = agg
	}
	return byType
}

func (r EvaluationResults) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall Metrics:\n")
	fmt.Fprintf(&b, "Average Precision: %.3f\n", r.AvgPrecision)
	fmt.Fprintf(&b, "Average Recall: %.3f\n", r.AvgRecall)
	fmt.Fprintf(&b, "Average F1: %.3f\n", r.AvgF1)
	fmt.Fprintf(&b, "Average MRR: %.3f\n", r.AvgMRR)
	fmt.Fprintf(&b, "\nMetrics by Query Type:\n")

	byType := r.MetricsByType()
	names := make([]string, 0, len(byType))
	for t := range byType {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, t := range names {
		m := byType[t]
		fmt.Fprintf(&b, "\n%s:\n", t)
		fmt.Fprintf(&b, "  Precision: %.3f\n", m.Precision)
		fmt.Fprintf(&b, "  Recall: %.3f\n", m.Recall)
		fmt.Fprintf(&b, "  F1 Score: %.3f\n", m.F1)
		fmt.Fprintf(&b, "  MRR: %.3f\n", m.MRR)
	}
	return b.String()
}
