package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DiscourseChunk is one forum-post chunk row: the owning post's metadata
// copied alongside the chunk index, text and embedding.
type DiscourseChunk struct {
	PostID     int64
	TopicID    int64
	TopicTitle string
	PostNumber int
	Author     string
	CreatedAt  string
	Likes      int
	ChunkIndex int
	Content    string
	URL        string
	Embedding  []float32
}

// MarkdownChunk is one page-document chunk row.
type MarkdownChunk struct {
	DocTitle     string
	OriginalURL  string
	DownloadedAt string
	ChunkIndex   int
	Content      string
	Embedding    []float32
}

// InsertDiscourseChunks appends rows inside a single transaction and
// commits before returning, so a crash afterwards retains them.
func (db *DB) InsertDiscourseChunks(rows []DiscourseChunk) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO discourse_chunks (post_id, topic_id, topic_title, post_number, author, created_at, likes, chunk_index, content, url, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row.Embedding) == 0 {
			return fmt.Errorf("discourse chunk %d has no embedding", i)
		}
		if _, err := stmt.Exec(
			row.PostID, row.TopicID, row.TopicTitle, row.PostNumber, row.Author,
			row.CreatedAt, row.Likes, row.ChunkIndex, row.Content, row.URL,
			vectorToBlob(row.Embedding),
		); err != nil {
			return fmt.Errorf("failed to insert discourse chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// InsertMarkdownChunks appends page-document rows, committing before it
// returns.
func (db *DB) InsertMarkdownChunks(rows []MarkdownChunk) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO markdown_chunks (doc_title, original_url, downloaded_at, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row.Embedding) == 0 {
			return fmt.Errorf("markdown chunk %d has no embedding", i)
		}
		if _, err := stmt.Exec(
			row.DocTitle, row.OriginalURL, row.DownloadedAt,
			row.ChunkIndex, row.Content, vectorToBlob(row.Embedding),
		); err != nil {
			return fmt.Errorf("failed to insert markdown chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DiscourseChunks returns all forum chunk rows ordered by insertion.
func (db *DB) DiscourseChunks() ([]DiscourseChunk, error) {
	rows, err := db.sqlDB.Query(`
		SELECT post_id, topic_id, topic_title, post_number, author, created_at, likes, chunk_index, content, url, embedding
		FROM discourse_chunks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query discourse chunks: %w", err)
	}
	defer rows.Close()

	var out []DiscourseChunk
	for rows.Next() {
		var row DiscourseChunk
		var blob []byte
		if err := rows.Scan(
			&row.PostID, &row.TopicID, &row.TopicTitle, &row.PostNumber, &row.Author,
			&row.CreatedAt, &row.Likes, &row.ChunkIndex, &row.Content, &row.URL, &blob,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vector, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		row.Embedding = vector
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkdownChunks returns all page chunk rows ordered by insertion.
func (db *DB) MarkdownChunks() ([]MarkdownChunk, error) {
	rows, err := db.sqlDB.Query(`
		SELECT doc_title, original_url, downloaded_at, chunk_index, content, embedding
		FROM markdown_chunks ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query markdown chunks: %w", err)
	}
	defer rows.Close()

	var out []MarkdownChunk
	for rows.Next() {
		var row MarkdownChunk
		var blob []byte
		if err := rows.Scan(
			&row.DocTitle, &row.OriginalURL, &row.DownloadedAt,
			&row.ChunkIndex, &row.Content, &blob,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vector, err := blobToVector(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		row.Embedding = vector
		out = append(out, row)
	}
	return out, rows.Err()
}

// vectorToBlob converts a float32 slice to a little-endian binary blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:i*4+4], math.Float32bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a float32 slice
func blobToVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("blob size %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := 0; i < len(vector); i++ {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4 : i*4+4]))
	}
	return vector, nil
}
