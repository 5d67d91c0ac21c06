package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

type memoryDoc struct {
	id        string
	document  string
	metadata  map[string]interface{}
	embedding []float32
}

// MemoryStore is a brute-force in-memory Store. It backs tests and local
// runs without a ChromaDB server; distances are cosine distances, matching
// the server configuration.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []memoryDoc
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Upsert implements Store.
func (s *MemoryStore) Upsert(_ context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		doc := memoryDoc{id: id}
		if i < len(documents) {
			doc.document = documents[i]
		}
		if i < len(metadatas) {
			doc.metadata = metadatas[i]
		}
		if i < len(embeddings) {
			doc.embedding = embeddings[i]
		}
		if j := s.indexOf(id); j >= 0 {
			s.docs[j] = doc
		} else {
			s.docs = append(s.docs, doc)
		}
	}
	return nil
}

// Query implements Store, returning results sorted ascending by cosine
// distance.
func (s *MemoryStore) Query(_ context.Context, embedding []float32, k int) (*QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		doc      memoryDoc
		distance float64
	}
	ranked := make([]scored, 0, len(s.docs))
	for _, d := range s.docs {
		ranked = append(ranked, scored{doc: d, distance: 1 - cosine(embedding, d.embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}

	out := &QueryResult{}
	for _, r := range ranked {
		out.IDs = append(out.IDs, r.doc.id)
		out.Documents = append(out.Documents, r.doc.document)
		out.Metadatas = append(out.Metadatas, r.doc.metadata)
		out.Distances = append(out.Distances, r.distance)
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, where map[string]interface{}) (*QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &QueryResult{}
	for _, d := range s.docs {
		if !matchesWhere(d.metadata, where) {
			continue
		}
		out.IDs = append(out.IDs, d.id)
		out.Documents = append(out.Documents, d.document)
		out.Metadatas = append(out.Metadatas, d.metadata)
	}
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, ids []string, where map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	kept := s.docs[:0]
	for _, d := range s.docs {
		if idSet[d.id] || (len(where) > 0 && matchesWhere(d.metadata, where)) {
			continue
		}
		kept = append(kept, d)
	}
	s.docs = kept
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i, d := range s.docs {
		if d.id == id {
			return i
		}
	}
	return -1
}

func matchesWhere(metadata, where map[string]interface{}) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
