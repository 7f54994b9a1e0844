package corpus

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// frontMatterRE matches a leading delimited front-matter block plus any
// whitespace that follows it.
var frontMatterRE = regexp.MustCompile(`(?s)^---.*?---\s*`)

// LoadPages reads the page corpus: the metadata listing at metaPath and,
// for each entry, the named text file under dir. Entries whose file is
// missing, or whose filename matches an exclude pattern, are skipped with
// a log line; only an absent metadata listing is a not-found error.
func LoadPages(dir, metaPath string, exclude []string) ([]Page, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read page metadata: %w", err)
	}

	var metas []PageMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		return nil, fmt.Errorf("parse page metadata %s: %w", metaPath, err)
	}

	pages := make([]Page, 0, len(metas))
	for _, meta := range metas {
		if excluded(meta.Filename, exclude) {
			log.Printf("Skipping excluded page %s", meta.Filename)
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, meta.Filename))
		if err != nil {
			if os.IsNotExist(err) {
				log.Printf("Skipping page %s: file not found", meta.Filename)
				continue
			}
			return nil, fmt.Errorf("read page %s: %w", meta.Filename, err)
		}

		pages = append(pages, Page{
			Meta: meta,
			Body: StripFrontMatter(string(body)),
		})
	}
	return pages, nil
}

// StripFrontMatter removes a leading `---` delimited block, as produced
// by the page downloader, so only the document body is chunked.
func StripFrontMatter(body string) string {
	return frontMatterRE.ReplaceAllString(body, "")
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matched, _ := doublestar.Match(pattern, name)
		if matched {
			return true
		}
	}
	return false
}
