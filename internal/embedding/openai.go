package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// OpenAIClient implements Client against an OpenAI-compatible embeddings
// endpoint. Transient failures are retried according to the configured
// RetryPolicy; a successful response short-circuits remaining attempts.
type OpenAIClient struct {
	endpoint string
	apiKey   string
	model    string
	policy   RetryPolicy
	client   *http.Client
	sleep    func(time.Duration)
}

// OpenAIEmbeddingRequest is the request format for the embeddings API
type OpenAIEmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

// OpenAIEmbeddingResponse is the response from the embeddings API
type OpenAIEmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
		Object    string    `json:"object"`
	} `json:"data"`
	Model string `json:"model"`
}

// NewOpenAIClient creates a new embedding client
func NewOpenAIClient(endpoint, apiKey, model string, policy RetryPolicy) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding api key is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy(3)
	}

	return &OpenAIClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		policy:   policy,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		sleep: time.Sleep,
	}, nil
}

// Embed generates an embedding for a single text segment. It retries up
// to the policy's attempt budget and returns the last failure once the
// budget is exhausted.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		vector, kind, err := c.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if kind == FailureRateLimited {
			log.Printf("Embedding rate limited, retrying in %v", c.policy.Backoff(kind, attempt))
		} else {
			log.Printf("Embedding request failed: %v", err)
		}

		if attempt < c.policy.MaxAttempts-1 {
			c.sleep(c.policy.Backoff(kind, attempt))
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", c.policy.MaxAttempts, lastErr)
}

// embedOnce performs a single request against the embeddings endpoint.
func (c *OpenAIClient) embedOnce(ctx context.Context, text string) ([]float32, FailureKind, error) {
	req := OpenAIEmbeddingRequest{
		Input: text,
		Model: c.model,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, FailureTransient, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, FailureTransient, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, FailureTransient, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FailureTransient, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, FailureRateLimited, fmt.Errorf("API rate limited (429): %s", string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, FailureTransient, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp OpenAIEmbeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, FailureTransient, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(apiResp.Data) == 0 {
		return nil, FailureTransient, fmt.Errorf("no embedding returned")
	}

	return apiResp.Data[0].Embedding, 0, nil
}
