package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClient simulates the embedding service with per-call jitter so
// completion order inside a wave differs from submission order.
type fakeClient struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	calls       []string
	jitter      bool
	failOn      string
}

func (f *fakeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}

	f.mu.Lock()
	f.inFlight--
	f.calls = append(f.calls, "embed:"+text)
	f.mu.Unlock()

	if f.failOn != "" && text == f.failOn {
		return nil, fmt.Errorf("simulated failure for %q", text)
	}
	// Encode the input in the vector so tests can verify the mapping.
	return []float32{float32(len(text))}, nil
}

func waveTexts(m int) []string {
	texts := make([]string, m)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}
	return texts
}

func TestRunWavesResultMapping(t *testing.T) {
	client := &fakeClient{jitter: true}
	texts := waveTexts(10)

	var starts []int
	var sizes []int
	got := make([][]float32, 0, len(texts))

	err := runWaves(context.Background(), client, texts, 4, func(start int, vectors [][]float32) error {
		starts = append(starts, start)
		sizes = append(sizes, len(vectors))
		got = append(got, vectors...)
		return nil
	})
	if err != nil {
		t.Fatalf("runWaves() error = %v", err)
	}

	// ceil(10/4) waves of at most 4.
	wantStarts := []int{0, 4, 8}
	wantSizes := []int{4, 4, 2}
	if len(starts) != len(wantStarts) {
		t.Fatalf("got %d waves, want %d", len(starts), len(wantStarts))
	}
	for i := range wantStarts {
		if starts[i] != wantStarts[i] || sizes[i] != wantSizes[i] {
			t.Errorf("wave %d = (start %d, size %d), want (%d, %d)",
				i, starts[i], sizes[i], wantStarts[i], wantSizes[i])
		}
	}

	if len(got) != len(texts) {
		t.Fatalf("got %d results, want %d", len(got), len(texts))
	}
	for i, vector := range got {
		if len(vector) != 1 || vector[0] != float32(i+1) {
			t.Errorf("result %d = %v, does not correspond to input %q", i, vector, texts[i])
		}
	}

	if client.maxInFlight > 4 {
		t.Errorf("in-flight calls peaked at %d, limit is 4", client.maxInFlight)
	}
}

func TestRunWavesFlushesBeforeNextWave(t *testing.T) {
	client := &fakeClient{jitter: true}
	texts := waveTexts(6)

	err := runWaves(context.Background(), client, texts, 3, func(start int, vectors [][]float32) error {
		client.mu.Lock()
		client.calls = append(client.calls, fmt.Sprintf("flush:%d", start))
		client.mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("runWaves() error = %v", err)
	}

	// Every first-wave embed precedes the first flush, which precedes
	// every second-wave embed.
	pos := make(map[string]int, len(client.calls))
	for i, call := range client.calls {
		pos[call] = i
	}
	flushPos := pos["flush:0"]
	for _, text := range texts[:3] {
		if pos["embed:"+text] > flushPos {
			t.Errorf("wave 0 embed of %q completed after flush", text)
		}
	}
	for _, text := range texts[3:] {
		if pos["embed:"+text] < flushPos {
			t.Errorf("wave 1 embed of %q started before wave 0 was flushed", text)
		}
	}
}

func TestRunWavesTerminalFailure(t *testing.T) {
	texts := waveTexts(6)
	client := &fakeClient{failOn: texts[3]} // second wave, first slot

	var flushed []int
	err := runWaves(context.Background(), client, texts, 3, func(start int, vectors [][]float32) error {
		flushed = append(flushed, start)
		return nil
	})
	if err == nil {
		t.Fatal("expected terminal failure to propagate")
	}
	if !strings.Contains(err.Error(), "segment 3") {
		t.Errorf("error %q does not identify the failing segment", err)
	}

	// The first wave committed; the failing wave did not flush and no
	// later wave started.
	if len(flushed) != 1 || flushed[0] != 0 {
		t.Errorf("flushed waves = %v, want [0]", flushed)
	}
	if len(client.calls) != 6 {
		t.Errorf("got %d embed calls, want 6 (failing wave drains, no further waves)", len(client.calls))
	}
}

func TestRunWavesInvalidConcurrency(t *testing.T) {
	client := &fakeClient{}
	err := runWaves(context.Background(), client, waveTexts(2), 0, func(int, [][]float32) error { return nil })
	if err == nil {
		t.Error("expected error for non-positive concurrency")
	}
}
