package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Adityaiitm563/tds-virtual-ta/internal/config"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/store"
)

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var jsonOutput bool
	fs.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    kb stats [options]

DESCRIPTION:
    Show statistics about the current knowledge base.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Show human-readable statistics
    kb stats

    # JSON output
    kb stats -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		log.Fatalf("Failed to read statistics: %v", err)
	}

	if jsonOutput {
		out := map[string]interface{}{
			"discourse_chunks": stats.DiscourseChunks,
			"markdown_chunks":  stats.MarkdownChunks,
			"size_bytes":       stats.SizeBytes,
		}
		jsonData, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		fmt.Println("📊 Knowledge Base Statistics")
		fmt.Println()
		fmt.Printf("Forum chunks:    %6d\n", stats.DiscourseChunks)
		fmt.Printf("Markdown chunks: %6d\n", stats.MarkdownChunks)
		fmt.Printf("Database size:   %6d KB\n", stats.SizeBytes/1024)
	}
}
