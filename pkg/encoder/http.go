package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// InferenceClient talks to a remote inference server that exposes a
// classification head at /classify and per-token hidden states at /encode.
// It implements both Classifier and TokenEncoder.
type InferenceClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// Option configures an InferenceClient.
type Option func(*InferenceClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(ic *InferenceClient) {
		ic.httpClient = c
	}
}

// WithBreaker wraps every request in a circuit breaker so a flapping
// inference server fails fast instead of stalling each rerank call.
func WithBreaker(name string, maxRequests uint32, interval, timeout time.Duration) Option {
	return func(ic *InferenceClient) {
		ic.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		})
	}
}

// NewInferenceClient creates a client for the server at baseURL serving
// the named model.
func NewInferenceClient(baseURL, model string, opts ...Option) *InferenceClient {
	c := &InferenceClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type inferenceRequest struct {
	Model string `json:"model"`
	Batch
}

type classifyResponse struct {
	Logits []float32 `json:"logits"`
}

type encodeResponse struct {
	Embeddings [][][]float32 `json:"embeddings"`
}

// Logits implements Classifier.
func (c *InferenceClient) Logits(ctx context.Context, batch Batch) ([]float32, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", batch, &resp); err != nil {
		return nil, err
	}
	if len(resp.Logits) != batch.Size() {
		return nil, fmt.Errorf("server returned %d logits for %d sequences", len(resp.Logits), batch.Size())
	}
	return resp.Logits, nil
}

// TokenEmbeddings implements TokenEncoder.
func (c *InferenceClient) TokenEmbeddings(ctx context.Context, batch Batch) ([][][]float32, error) {
	var resp encodeResponse
	if err := c.post(ctx, "/encode", batch, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != batch.Size() {
		return nil, fmt.Errorf("server returned %d embedding matrices for %d sequences", len(resp.Embeddings), batch.Size())
	}
	return resp.Embeddings, nil
}

// Close implements Classifier and TokenEncoder.
func (c *InferenceClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *InferenceClient) post(ctx context.Context, path string, batch Batch, out any) error {
	do := func() (any, error) {
		body, err := json.Marshal(inferenceRequest{Model: c.model, Batch: batch})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("inference request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("inference server returned %d: %s", resp.StatusCode, payload)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	}

	if c.breaker != nil {
		_, err := c.breaker.Execute(do)
		return err
	}
	_, err := do()
	return err
}
