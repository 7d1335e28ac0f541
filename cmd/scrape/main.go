package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/cfp-radar/internal/ai"
	"github.com/david/cfp-radar/internal/db"
	"github.com/david/cfp-radar/internal/ingest"
)

func main() {
	var (
		snapshotPath = flag.String("out", "data.json", "path of the JSON snapshot to read and rewrite")
		sourceID     = flag.String("source", "", "scrape a single source by registry ID (default: all)")
		useDB        = flag.Bool("db", false, "also upsert results into Postgres")
		useAI        = flag.Bool("ai", false, "enable Ollama enrichment and embeddings")
		timeout      = flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	registry, err := ingest.LoadRegistry(os.Getenv("SOURCES_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load source registry: %v", err)
	}

	var pool *pgxpool.Pool
	if *useDB {
		pool, err = db.Connect(ctx)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	var enricher ingest.TextEnricher
	var embedder ingest.Embedder
	if *useAI {
		client := ai.NewOllamaClient(os.Getenv("OLLAMA_HOST"), "", "")
		enricher = client
		embedder = client
	}

	pipeline := ingest.NewPipeline(pool, nil, registry, enricher, embedder)
	pipeline.SnapshotPath = *snapshotPath

	if *sourceID != "" {
		src, err := registry.FindSource(*sourceID)
		if err != nil {
			log.Fatal(err)
		}
		registry.Sources = []ingest.SourceConfig{*src}
	}

	results, err := pipeline.Run(ctx)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	printSummary(results)
}

func printSummary(results map[string]ingest.IngestionStats) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Candidates", "Extracted", "Errors"})
	for _, id := range ids {
		stats := results[id]
		t.AppendRow(table.Row{id, stats.CandidatesFound, stats.CallsExtracted, stats.Errors})
	}
	t.Render()
}
