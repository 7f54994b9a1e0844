package internal

import (
	"fmt"
	"os"
)

const Version = "1.0.0"

// PrintUsage writes the top-level usage text to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `kb - Knowledge Base Builder for TDS Virtual TA

Version: %s

USAGE:
    kb [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ./kb.yaml if present)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    build
        Chunk the forum and markdown corpora, embed every chunk and
        write a fresh knowledge base database

    stats
        Show knowledge base statistics

EXAMPLES:
    # Build the knowledge base in the current directory
    kb build

    # Build with an explicit config file
    kb -config deploy/kb.yaml build

    # Build without the progress bar (for CI logs)
    kb build -no-progress

    # Show statistics
    kb stats

    # JSON statistics
    kb stats -json

For detailed help on each command, use:
    kb <command> -help
`, Version)
}
