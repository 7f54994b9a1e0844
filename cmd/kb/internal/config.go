package internal

import (
	"fmt"
	"os"

	"github.com/Adityaiitm563/tds-virtual-ta/internal/config"
)

// LoadConfig reads the YAML config at configPath, or the default
// lookup when the flag was not given.
func LoadConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}

// PrintConfigExample prints a complete annotated config to stderr so a
// user can bootstrap kb.yaml after a configuration error.
func PrintConfigExample() {
	fmt.Fprint(os.Stderr, `Set the embedding credential and (optionally) create kb.yaml:

  export API_KEY=your-api-key     # or put API_KEY=... in a .env file

# kb.yaml — every key is optional; the values below are the defaults.
chunking:
  size: 500                       # characters per chunk
  overlap: 100                    # characters shared with the previous chunk

embedding:
  endpoint: https://aipipe.org/openai/v1/embeddings
  model: text-embedding-3-small
  max_retries: 3                  # attempts per chunk
  concurrency: 4                  # chunks embedded per wave

database:
  path: knowledge_base.db         # recreated on every build

corpus:
  discourse_json: discourse_posts.json
  pages_dir: tds_pages_md
  pages_metadata: metadata.json
  # exclude:                      # glob patterns matched against filenames
  #   - "drafts/**"

text_index:
  dir: kb_text_index
  # disabled: true                # skip the full-text chunk index

Usage:
  1. Export API_KEY (or write a .env file)
  2. Place discourse_posts.json and tds_pages_md/ in the working directory
  3. Run: kb build
  4. Inspect: kb stats
`)
}
