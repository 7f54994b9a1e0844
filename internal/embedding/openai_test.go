package embedding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, endpoint string, maxAttempts int) (*OpenAIClient, *[]time.Duration) {
	t.Helper()

	client, err := NewOpenAIClient(endpoint, "test-key", "test-model", DefaultRetryPolicy(maxAttempts))
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}

	var sleeps []time.Duration
	client.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return client, &sleeps
}

func TestEmbedSuccess(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"object":"list","data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`)
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, 3)

	vector, err := client.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("got %d dimensions, want 3", len(vector))
	}
	if vector[1] != 0.2 {
		t.Errorf("vector[1] = %v, want 0.2", vector[1])
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want bearer credential", gotAuth)
	}
	if !strings.Contains(gotBody, `"input":"hello"`) || !strings.Contains(gotBody, `"model":"test-model"`) {
		t.Errorf("unexpected request body: %s", gotBody)
	}
	if len(*sleeps) != 0 {
		t.Errorf("success should not sleep, slept %d times", len(*sleeps))
	}
}

func TestEmbedRateLimitedThenSuccess(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"embedding":[1,2],"index":0}]}`)
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, 3)

	vector, err := client.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vector) != 2 {
		t.Errorf("got %d dimensions, want 2", len(vector))
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("got %d backoff sleeps, want 2", len(*sleeps))
	}
	// 429 backoff doubles per attempt: 2^0 then 2^1 seconds.
	if (*sleeps)[0] != 1*time.Second || (*sleeps)[1] != 2*time.Second {
		t.Errorf("backoff sleeps = %v, want [1s 2s]", *sleeps)
	}
}

func TestEmbedServerErrorExhaustsRetries(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, sleeps := newTestClient(t, server.URL, 3)

	if _, err := client.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected terminal failure after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("server saw %d calls, want 3", calls)
	}
	for i, d := range *sleeps {
		if d != 2*time.Second {
			t.Errorf("sleep %d = %v, want fixed 2s backoff", i, d)
		}
	}
	if len(*sleeps) != 2 {
		t.Errorf("got %d sleeps, want 2 (no sleep after final attempt)", len(*sleeps))
	}
}

func TestEmbedEmptyText(t *testing.T) {
	client, _ := newTestClient(t, "http://localhost:0", 3)
	if _, err := client.Embed(context.Background(), ""); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("http://localhost", "", "m", DefaultRetryPolicy(3)); err == nil {
		t.Error("expected error for missing api key")
	}
}
