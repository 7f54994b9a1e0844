package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adityaiitm563/tds-virtual-ta/internal/embedding"
)

// runWaves embeds texts in consecutive waves of at most n concurrent
// calls. A wave fully completes before the next starts, and flush is
// invoked with the wave's vectors (matched to texts by position) after
// every wave, so persisted work trails in-flight work by at most one
// wave. The first failed segment aborts the run once its wave has
// drained.
func runWaves(ctx context.Context, client embedding.Client, texts []string, n int, flush func(start int, vectors [][]float32) error) error {
	if n <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", n)
	}

	for start := 0; start < len(texts); start += n {
		end := start + n
		if end > len(texts) {
			end = len(texts)
		}
		wave := texts[start:end]

		vectors := make([][]float32, len(wave))
		errs := make([]error, len(wave))

		var wg sync.WaitGroup
		for i, text := range wave {
			wg.Add(1)
			go func(i int, text string) {
				defer wg.Done()
				vectors[i], errs[i] = client.Embed(ctx, text)
			}(i, text)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				return fmt.Errorf("segment %d: %w", start+i, err)
			}
		}

		if err := flush(start, vectors); err != nil {
			return err
		}
	}
	return nil
}
