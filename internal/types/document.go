package types

import (
	"time"
)

// DocumentMeta describes the provenance of an ingested document.
type DocumentMeta struct {
	Source string   `json:"source"`
	Title  string   `json:"title,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// RawDocument is an immutable input document owned by the caller.
type RawDocument struct {
	Content  string       `json:"content"`
	Metadata DocumentMeta `json:"metadata"`
}

// Chunk is a bounded, possibly-overlapping segment of a source document,
// the unit of embedding and retrieval.
//
// Invariants: 0 <= Index < TotalChunks; all chunks sharing ParentID carry
// the same TotalChunks; Length == len(Content). Content length stays within
// the configured [min, max] bounds except for the final chunk of a document
// and atomic units (single sentences or code blocks) that cannot be split.
type Chunk struct {
	ID          string                 `json:"id"`
	ParentID    string                 `json:"parent_id"`
	Content     string                 `json:"content"`
	Index       int                    `json:"chunk_index"`
	TotalChunks int                    `json:"total_chunks"`
	Length      int                    `json:"chunk_length"`
	Metadata    map[string]interface{} `json:"metadata"`
	Embedding   []float32              `json:"embedding,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}
