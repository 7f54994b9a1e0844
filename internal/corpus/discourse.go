package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadPosts reads the forum corpus from a JSON array file. An absent
// file surfaces as a not-found error (see IsNotFound).
func LoadPosts(path string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read discourse corpus: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parse discourse corpus %s: %w", path, err)
	}
	return posts, nil
}
