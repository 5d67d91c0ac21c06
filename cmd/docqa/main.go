package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"docqa/internal/classifier"
	"docqa/internal/config"
	"docqa/internal/embedding"
	"docqa/internal/evaluation"
	"docqa/internal/ingest"
	"docqa/internal/retrieval"
	"docqa/internal/segmenter"
	"docqa/internal/types"
	"docqa/internal/vectorstore"
)

func main() {
	// Optional .env for OPENAI_API_KEY, matching the deployment layout.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	help := flag.Bool("help", false, "Show help message")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *help {
		showHelp()
		os.Exit(0)
	}
	if *version {
		showVersion()
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		showHelp()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)

	args := flag.Args()
	subcommand := args[0]
	subcommandArgs := args[1:]
	switch subcommand {
	case "config":
		handleConfigCommand(cfg)
	case "ingest":
		handleIngestCommand(cfg, logger, subcommandArgs)
	case "query":
		handleQueryCommand(cfg, logger, subcommandArgs)
	case "eval":
		handleEvalCommand(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", subcommand)
		showHelp()
		os.Exit(1)
	}
}

func showHelp() {
	helpText := `docqa - document retrieval core

Usage:
  docqa [flags] <command> [arguments]

Flags:
  --config string   Path to config file
  --help            Show this help message
  --version         Show version information

Commands:
  config                 Show current configuration
  ingest <file> [...]    Segment, embed and store documents
  query <text>           Run a classified, threshold-filtered query
  eval                   Evaluate retrieval quality on the fixture set
`
	fmt.Print(helpText)
}

func showVersion() {
	fmt.Println("docqa v0.1.0")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func handleConfigCommand(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Printf("Chroma: %s (collection %s)\n", cfg.Chroma.URL, cfg.Chroma.Collection)
	fmt.Printf("Embedding model: %s\n", cfg.Embedding.Model)
	if cfg.Embedding.APIKey != "" {
		fmt.Println("Embedding API key: [set]")
	} else {
		fmt.Println("Embedding API key: [not set]")
	}
	fmt.Printf("Chunking: min=%d max=%d overlap=%d structure_aware=%v\n",
		cfg.Chunking.MinChunkSize, cfg.Chunking.MaxChunkSize, cfg.Chunking.OverlapSize, cfg.Chunking.StructureAware)
	fmt.Printf("Retrieval: top_k=%d threshold=%.2f\n",
		cfg.Retrieval.TopKResults, cfg.Retrieval.SimilarityThreshold)
}

// components bundles the wired pipeline shared by the subcommands.
type components struct {
	embedder *embedding.OpenAIEmbedder
	store    *vectorstore.ChromaStore
	filter   *retrieval.Filter
	service  *ingest.Service
}

func buildComponents(cfg *config.Config, logger zerolog.Logger) (*components, error) {
	embedder, err := embedding.NewOpenAIEmbedder(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectorstore.NewChromaStore(cfg.Chroma.URL, cfg.Chroma.Collection, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to vector store: %w", err)
	}

	seg := segmenter.NewSegmenter(logger).
		WithMinChunkSize(cfg.Chunking.MinChunkSize).
		WithMaxChunkSize(cfg.Chunking.MaxChunkSize).
		WithOverlapSize(cfg.Chunking.OverlapSize).
		WithStructureAware(cfg.Chunking.StructureAware)

	processor := segmenter.NewProcessor(seg, embedder, logger)

	filter := retrieval.NewFilter(store, logger).
		WithRelevanceCutoffs(cfg.Retrieval.HighSimilarityThreshold, cfg.Retrieval.ModerateSimilarityThreshold)

	return &components{
		embedder: embedder,
		store:    store,
		filter:   filter,
		service:  ingest.NewService(processor, store, logger),
	}, nil
}

func handleIngestCommand(cfg *config.Config, logger zerolog.Logger, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Please provide at least one file to ingest")
		os.Exit(1)
	}

	comps, err := buildComponents(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	docs := make([]types.RawDocument, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Fatal().Err(err).Str("file", path).Msg("failed to read file")
		}
		docs = append(docs, types.RawDocument{
			Content: string(content),
			Metadata: types.DocumentMeta{
				Source: filepath.Base(path),
			},
		})
	}

	results, err := comps.service.IngestAll(context.Background(), docs)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingestion failed")
	}
	for _, res := range results {
		fmt.Printf("Ingested %s: %d chunks (parent %s)\n", res.Source, res.ChunkCount, res.ParentID)
	}
}

func handleQueryCommand(cfg *config.Config, logger zerolog.Logger, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Please provide a query")
		os.Exit(1)
	}
	query := strings.Join(args, " ")

	comps, err := buildComponents(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	ctx := context.Background()
	cls := classifier.NewClassifier()
	classification := cls.Classify(query)
	threshold := cls.RecommendedThreshold(classification.Type)
	fmt.Printf("Query type: %s (confidence %.2f), threshold %.2f\n\n",
		classification.Type, classification.Confidence, threshold)

	queryEmbedding, err := comps.embedder.Embed(ctx, query)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to embed query")
	}

	docs, err := comps.filter.Retrieve(ctx, queryEmbedding, cfg.Retrieval.TopKResults, threshold)
	if err != nil {
		logger.Fatal().Err(err).Msg("retrieval failed")
	}
	if len(docs) == 0 {
		fmt.Println("No documents cleared the similarity threshold")
		return
	}

	for i, doc := range docs {
		fmt.Printf("Result %d (similarity %.3f, %s):\n", i+1, doc.Similarity, doc.Relevance)
		fmt.Println(doc.Content)
		if source, ok := doc.Metadata["source"].(string); ok {
			fmt.Printf("  Source: %s\n", source)
		}
		fmt.Println(strings.Repeat("-", 80))
	}
}

func handleEvalCommand(cfg *config.Config, logger zerolog.Logger) {
	comps, err := buildComponents(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	evaluator := evaluation.NewEvaluator(
		classifier.NewClassifier(),
		comps.filter,
		comps.embedder,
		cfg.Retrieval.TopKResults,
		logger,
	)

	results, err := evaluator.Evaluate(context.Background(), evaluation.DefaultTestCases())
	if err != nil {
		logger.Fatal().Err(err).Msg("evaluation failed")
	}

	fmt.Println("\nEvaluation Results:")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println(results)
}
