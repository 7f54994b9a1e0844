// Package corpus loads the two raw document corpora: discussion-forum
// posts exported as JSON, and downloaded page documents described by a
// metadata listing plus per-entry text files on disk.
package corpus

import (
	"errors"
	"io/fs"
)

// Post is one discussion-forum post.
type Post struct {
	PostID     int64  `json:"post_id"`
	TopicID    int64  `json:"topic_id"`
	TopicTitle string `json:"topic_title"`
	PostNumber int    `json:"post_number"`
	Author     string `json:"author"`
	CreatedAt  string `json:"created_at"`
	LikeCount  int    `json:"like_count"`
	Content    string `json:"content"`
	URL        string `json:"url"`
}

// PageMeta is one entry of the page corpus metadata listing.
type PageMeta struct {
	Filename     string `json:"filename"`
	Title        string `json:"title"`
	OriginalURL  string `json:"original_url"`
	DownloadedAt string `json:"downloaded_at"`
}

// Page is a page document with its body loaded and front matter stripped.
type Page struct {
	Meta PageMeta
	Body string
}

// IsNotFound reports whether err means a corpus input file is absent,
// which callers treat as a non-fatal skip.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
