// Package embedding provides clients for remote text embedding services.
package embedding

import (
	"context"
)

// Client is the interface for embedding API clients
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
