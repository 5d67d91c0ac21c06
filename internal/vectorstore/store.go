// Package vectorstore persists chunk embeddings and serves nearest-neighbor
// queries. The storage engine itself is an external collaborator; this
// package exposes the narrow contract the retrieval core relies on.
package vectorstore

import (
	"context"
)

// QueryResult mirrors the shape vector stores return: parallel slices,
// sorted ascending by distance for Query, unsorted for Get.
type QueryResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]interface{}
	Distances []float64
}

// Len returns the number of returned documents.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Documents)
}

// Store is the vector store contract consumed by ingestion, retrieval and
// evaluation. Implementations must return Query results in ascending
// distance order.
//
// The store is the only shared mutable resource in the system. Callers
// performing delete-then-insert updates must expect a transient window in
// which a concurrent reader observes neither the old nor the new documents;
// the two calls are not atomic.
type Store interface {
	// Upsert writes documents with their precomputed embeddings.
	Upsert(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]interface{}) error

	// Query returns the k nearest documents to the embedding.
	Query(ctx context.Context, embedding []float32, k int) (*QueryResult, error)

	// Get returns documents matching the metadata filter, all documents if
	// the filter is nil. Distances are not populated.
	Get(ctx context.Context, where map[string]interface{}) (*QueryResult, error)

	// Delete removes documents by id and/or metadata filter.
	Delete(ctx context.Context, ids []string, where map[string]interface{}) error
}
