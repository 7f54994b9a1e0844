// Package textindex maintains a full-text index over ingested chunks,
// built alongside the SQLite store and recreated on every run.
package textindex

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ChunkDoc is the indexed representation of one chunk.
type ChunkDoc struct {
	Corpus     string `json:"corpus"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
}

// Index wraps a bleve index of chunk documents.
type Index struct {
	index bleve.Index
}

// Create wipes dir and builds a fresh index there.
func Create(dir string) (*Index, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("reset text index dir: %w", err)
	}
	index, err := bleve.New(dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexChunk adds one chunk document under the given id.
func (ix *Index) IndexChunk(id string, doc ChunkDoc) error {
	return ix.index.Index(id, doc)
}

// DocCount returns the number of indexed chunks.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// Close closes the underlying index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	docMapping.AddFieldMappingsAt("title", titleField)

	urlField := bleve.NewTextFieldMapping()
	urlField.Store = true
	urlField.Index = false
	docMapping.AddFieldMappingsAt("url", urlField)

	corpusField := bleve.NewTextFieldMapping()
	corpusField.Store = true
	corpusField.Index = true
	corpusField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("corpus", corpusField)

	indexField := bleve.NewNumericFieldMapping()
	indexField.Store = true
	indexField.Index = false
	docMapping.AddFieldMappingsAt("chunk_index", indexField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
