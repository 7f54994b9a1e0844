// Package ingest drives the knowledge-base build: chunking each corpus,
// acquiring embeddings in bounded-concurrency waves, and persisting
// chunk rows wave by wave.
package ingest

import (
	"context"
	"fmt"
	"log"

	"github.com/Adityaiitm563/tds-virtual-ta/internal/chunker"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/config"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/corpus"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/embedding"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/store"
	"github.com/Adityaiitm563/tds-virtual-ta/internal/textindex"
)

// Ingestor runs the ingestion pipeline for both corpora against a
// freshly created store.
type Ingestor struct {
	cfg      *config.Config
	client   embedding.Client
	db       *store.DB
	index    *textindex.Index
	progress ProgressReporter
}

// NewIngestor creates an ingestor. index and progress may be nil.
func NewIngestor(cfg *config.Config, client embedding.Client, db *store.DB, index *textindex.Index, progress ProgressReporter) *Ingestor {
	return &Ingestor{
		cfg:      cfg,
		client:   client,
		db:       db,
		index:    index,
		progress: progress,
	}
}

// Run processes the two corpora sequentially and independently: a
// missing input file skips that corpus without blocking the other. It
// returns the chunk counts written per corpus.
func (ing *Ingestor) Run(ctx context.Context) (discourse, markdown int, err error) {
	posts, err := corpus.LoadPosts(ing.cfg.Corpus.DiscourseJSON)
	switch {
	case corpus.IsNotFound(err):
		log.Printf("%s not found. Skipping discourse.", ing.cfg.Corpus.DiscourseJSON)
	case err != nil:
		return 0, 0, err
	default:
		discourse, err = ing.IngestPosts(ctx, posts)
		if err != nil {
			return discourse, 0, fmt.Errorf("discourse corpus: %w", err)
		}
	}

	pages, err := corpus.LoadPages(ing.cfg.Corpus.PagesDir, ing.cfg.Corpus.PagesMetadata, ing.cfg.Corpus.Exclude)
	switch {
	case corpus.IsNotFound(err):
		log.Printf("%s not found. Skipping markdown.", ing.cfg.Corpus.PagesMetadata)
	case err != nil:
		return discourse, 0, err
	default:
		markdown, err = ing.IngestPages(ctx, pages)
		if err != nil {
			return discourse, markdown, fmt.Errorf("markdown corpus: %w", err)
		}
	}

	return discourse, markdown, nil
}

// IngestPosts chunks every forum post, embeds all chunks in waves and
// writes the resulting rows. It returns the number of chunks written.
func (ing *Ingestor) IngestPosts(ctx context.Context, posts []corpus.Post) (int, error) {
	type pending struct {
		post    corpus.Post
		ordinal int
		index   int
		text    string
	}

	var toEmbed []pending
	for ordinal, post := range posts {
		chunks, err := chunker.Split(post.Content, ing.cfg.Chunking.Size, ing.cfg.Chunking.Overlap)
		if err != nil {
			return 0, fmt.Errorf("chunk post %d: %w", post.PostID, err)
		}
		for idx, text := range chunks {
			toEmbed = append(toEmbed, pending{post: post, ordinal: ordinal, index: idx, text: text})
		}
	}
	log.Printf("Processing %d discourse posts (%d chunks)...", len(posts), len(toEmbed))

	texts := make([]string, len(toEmbed))
	for i, p := range toEmbed {
		texts[i] = p.text
	}

	ing.startProgress(len(toEmbed))
	defer ing.finishProgress()

	written := 0
	err := runWaves(ctx, ing.client, texts, ing.cfg.Embedding.Concurrency, func(start int, vectors [][]float32) error {
		rows := make([]store.DiscourseChunk, len(vectors))
		for i, vector := range vectors {
			p := toEmbed[start+i]
			rows[i] = store.DiscourseChunk{
				PostID:     p.post.PostID,
				TopicID:    p.post.TopicID,
				TopicTitle: p.post.TopicTitle,
				PostNumber: p.post.PostNumber,
				Author:     p.post.Author,
				CreatedAt:  p.post.CreatedAt,
				Likes:      p.post.LikeCount,
				ChunkIndex: p.index,
				Content:    p.text,
				URL:        p.post.URL,
				Embedding:  vector,
			}
		}
		if err := ing.db.InsertDiscourseChunks(rows); err != nil {
			return err
		}
		for i := range rows {
			p := toEmbed[start+i]
			if err := ing.indexChunk(fmt.Sprintf("discourse:%d:%d", p.post.PostID, p.index), textindex.ChunkDoc{
				Corpus:     "discourse",
				Title:      p.post.TopicTitle,
				URL:        p.post.URL,
				Content:    p.text,
				ChunkIndex: p.index,
			}); err != nil {
				return err
			}
		}

		written += len(rows)
		ing.addProgress(len(rows))
		log.Printf("Inserted %d/%d discourse chunks (%d/%d posts).",
			written, len(toEmbed), toEmbed[start+len(rows)-1].ordinal+1, len(posts))
		return nil
	})
	return written, err
}

// IngestPages chunks every page document, embeds all chunks in waves
// and writes the resulting rows. It returns the number of chunks
// written.
func (ing *Ingestor) IngestPages(ctx context.Context, pages []corpus.Page) (int, error) {
	type pending struct {
		page    corpus.Page
		ordinal int
		index   int
		text    string
	}

	var toEmbed []pending
	for ordinal, page := range pages {
		chunks, err := chunker.Split(page.Body, ing.cfg.Chunking.Size, ing.cfg.Chunking.Overlap)
		if err != nil {
			return 0, fmt.Errorf("chunk page %s: %w", page.Meta.Filename, err)
		}
		for idx, text := range chunks {
			toEmbed = append(toEmbed, pending{page: page, ordinal: ordinal, index: idx, text: text})
		}
	}
	log.Printf("Processing %d markdown files (%d chunks)...", len(pages), len(toEmbed))

	texts := make([]string, len(toEmbed))
	for i, p := range toEmbed {
		texts[i] = p.text
	}

	ing.startProgress(len(toEmbed))
	defer ing.finishProgress()

	written := 0
	err := runWaves(ctx, ing.client, texts, ing.cfg.Embedding.Concurrency, func(start int, vectors [][]float32) error {
		rows := make([]store.MarkdownChunk, len(vectors))
		for i, vector := range vectors {
			p := toEmbed[start+i]
			rows[i] = store.MarkdownChunk{
				DocTitle:     p.page.Meta.Title,
				OriginalURL:  p.page.Meta.OriginalURL,
				DownloadedAt: p.page.Meta.DownloadedAt,
				ChunkIndex:   p.index,
				Content:      p.text,
				Embedding:    vector,
			}
		}
		if err := ing.db.InsertMarkdownChunks(rows); err != nil {
			return err
		}
		for i := range rows {
			p := toEmbed[start+i]
			if err := ing.indexChunk(fmt.Sprintf("markdown:%s:%d", p.page.Meta.Filename, p.index), textindex.ChunkDoc{
				Corpus:     "markdown",
				Title:      p.page.Meta.Title,
				URL:        p.page.Meta.OriginalURL,
				Content:    p.text,
				ChunkIndex: p.index,
			}); err != nil {
				return err
			}
		}

		written += len(rows)
		ing.addProgress(len(rows))
		log.Printf("Inserted %d/%d markdown chunks (%d/%d files).",
			written, len(toEmbed), toEmbed[start+len(rows)-1].ordinal+1, len(pages))
		return nil
	})
	return written, err
}

func (ing *Ingestor) indexChunk(id string, doc textindex.ChunkDoc) error {
	if ing.index == nil {
		return nil
	}
	if err := ing.index.IndexChunk(id, doc); err != nil {
		return fmt.Errorf("text index: %w", err)
	}
	return nil
}

func (ing *Ingestor) startProgress(total int) {
	if ing.progress != nil {
		ing.progress.Start(total)
	}
}

func (ing *Ingestor) addProgress(n int) {
	if ing.progress != nil {
		ing.progress.Add(n)
	}
}

func (ing *Ingestor) finishProgress() {
	if ing.progress != nil {
		ing.progress.Finish()
	}
}
