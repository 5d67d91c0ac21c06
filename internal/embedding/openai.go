package embedding

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder generates embeddings through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
	logger zerolog.Logger
}

// NewOpenAIEmbedder creates an embedder for the given model. An empty
// baseURL targets the public OpenAI endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string, logger zerolog.Logger) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embedding api key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	dim := 1536
	if model == string(openai.LargeEmbedding3) {
		dim = 3072
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dim:    dim,
		logger: logger,
	}, nil
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedMany implements Embedder. The response is ordered by request index,
// so output order matches input order.
func (e *OpenAIEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, &Error{Text: texts[0], Err: err}
	}
	if len(resp.Data) != len(texts) {
		return nil, &Error{Text: texts[0], Err: errors.New("embedding count does not match input count")}
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}

	e.logger.Debug().Int("count", len(texts)).Str("model", e.model).Msg("generated embeddings")
	return vectors, nil
}

// Dimension implements Embedder.
func (e *OpenAIEmbedder) Dimension() int { return e.dim }
