// Copyright 2025 The fusedex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/weecici/fusedex"
	"github.com/weecici/fusedex/ai"
	"github.com/weecici/fusedex/core"
	"github.com/weecici/fusedex/reindex"
	"github.com/weecici/fusedex/search"
)

func main() {
	app := &cli.App{
		Name:  "fusedex",
		Usage: "Hybrid lexical and vector retrieval with rank fusion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Index documents into a collection, one document per input line",
				ArgsUsage: "[file ...]",
				Action:    ingestCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to ingest in each batch",
						Value: 100,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Query a collection",
				ArgsUsage: "query...",
				Action:    searchCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (dense, sparse, hybrid)",
						Value: string(core.ModeHybrid),
					},
					&cli.StringFlag{
						Name:  "scoring",
						Usage: "Lexical scoring method (tfidf, okapi-bm25)",
						Value: string(core.ScoringBM25),
					},
					&cli.StringFlag{
						Name:  "fusion",
						Usage: "Rank fusion method (rrf, dbsf)",
						Value: string(core.FusionDBSF),
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of results to return",
						Value:   search.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "overfetch",
						Usage: "Candidate overfetch multiplier for hybrid retrieval",
						Value: search.DefaultOverfetchMultiplier,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild a collection's index from stored documents",
				Action: reindexCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "lexical-only",
						Usage: "Rebuild the lexical index without regenerating vectors",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// commonFlags are shared by every subcommand: database location, target
// collection, and embedding service settings.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Collection name",
			Value:   "default",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "API token for the embedding service",
			EnvVars: []string{"FUSEDEX_API_TOKEN"},
			Value:   "none",
		},
	}
}

func openEngine(c *cli.Context) (*fusedex.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	engine, err := fusedex.Open(c.String("db"), fusedex.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return engine, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	source, err := lineSource(c.Args().Slice())
	if err != nil {
		return err
	}

	collection := c.String("collection")
	total := 0
	batch := make([]core.Document, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := pipeline.Ingest(ctx, collection, batch); err != nil {
			return fmt.Errorf("ingestion failed after %d documents: %w", total, err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for line := range source {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		batch = append(batch, core.Document{Text: line})
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Ingested %d documents into %q\n", total, collection)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("query text is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	mode, err := core.ParseSearchMode(c.String("mode"))
	if err != nil {
		return err
	}
	scoring, err := core.ParseScoringMethod(c.String("scoring"))
	if err != nil {
		return err
	}
	fusion, err := core.ParseFusionMethod(c.String("fusion"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	searcher, err := engine.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Retrieve(ctx, search.Request{
		Collection:          c.String("collection"),
		Queries:             []string{query},
		TopK:                c.Int("top-k"),
		Mode:                mode,
		Scoring:             scoring,
		Fusion:              fusion,
		OverfetchMultiplier: c.Float64("overfetch"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	hits := results[0]
	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: %q (%d)[%0.3f]\n", i, hit.Payload.Text, hit.Id, hit.Score)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var reindexer *reindex.Reindexer
	if c.Bool("lexical-only") {
		reindexer, err = reindex.NewReindexer(
			engine.PayloadStore(),
			engine.CheckpointRepository(),
			engine.IndexRepository(),
			engine.Registry(),
			engine.Builder(),
			reindex.WithConfig(config),
			reindex.WithProgressWriter(os.Stderr),
		)
	} else {
		reindexer, err = engine.NewReindexer(
			reindex.WithConfig(config),
			reindex.WithProgressWriter(os.Stderr),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to create reindexer: %w", err)
	}

	if err := reindexer.Run(ctx, c.String("collection")); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
