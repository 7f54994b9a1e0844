package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Adityaiitm563/tds-virtual-ta/internal/config"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/embedding"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/ingest"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/store"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/textindex"
)

// handleBuild implements the build subcommand
func handleBuild(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	noProgress := fs.Bool("no-progress", false, "Disable the progress bar")
	noTextIndex := fs.Bool("no-text-index", false, "Skip the full-text chunk index")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    kb build [options]

DESCRIPTION:
    Build the knowledge base from the local corpora.
    This will:
      1. Load forum posts from discourse_posts.json
      2. Load downloaded markdown pages listed in metadata.json
      3. Split every document into overlapping chunks
      4. Embed each chunk via the configured embedding endpoint
      5. Write all chunks and vectors to a fresh SQLite database

    The previous database is deleted at the start of every build.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Build from the current directory
    kb build

    # Plain log output without the progress bar
    kb build -no-progress
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	client, err := embedding.NewOpenAIClient(
		cfg.Embedding.Endpoint,
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		embedding.DefaultRetryPolicy(cfg.Embedding.MaxRetries),
	)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	db, err := store.Create(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	var index *textindex.Index
	if !cfg.TextIndex.Disabled && !*noTextIndex {
		index, err = textindex.Create(cfg.TextIndex.Dir)
		if err != nil {
			log.Fatalf("Failed to create text index: %v", err)
		}
		defer index.Close()
	}

	progress := ingest.NewBuildProgress(ingest.DefaultProgressEnabled() && !*noProgress)

	fmt.Printf("🏗️  Building knowledge base: %s\n\n", cfg.Database.Path)

	startTime := time.Now()
	ctx := context.Background()

	ing := ingest.NewIngestor(cfg, client, db, index, progress)
	discourse, markdown, err := ing.Run(ctx)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	duration := time.Since(startTime)

	stats, err := db.Stats()
	if err != nil {
		log.Fatalf("Failed to read database statistics: %v", err)
	}

	fmt.Println()
	fmt.Println("✅ Knowledge base built successfully!")
	fmt.Printf("\n⏱️  Duration: %v\n", duration)
	fmt.Println("\n📊 Statistics:")
	fmt.Printf("   Forum chunks:    %6d\n", discourse)
	fmt.Printf("   Markdown chunks: %6d\n", markdown)
	fmt.Printf("   Database size:   %6d KB\n", stats.SizeBytes/1024)
}
