// Package embedding provides text embedding for chunks and queries. The
// embedding model itself is an external collaborator reached over an
// OpenAI-compatible API.
package embedding

import (
	"context"
	"fmt"
)

// Embedder converts text into a fixed-length float vector. Implementations
// must be deterministic for a fixed model and input, and EmbedMany must
// preserve input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Error wraps a failed embedding call. Per-chunk embedding failures are
// recoverable; the document fails only when no chunk embeds at all.
type Error struct {
	Text string
	Err  error
}

func (e *Error) Error() string {
	preview := e.Text
	if len(preview) > 40 {
		preview = preview[:40] + "..."
	}
	return fmt.Sprintf("embedding failed for %q: %v", preview, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
