package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/pricelens/backend/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-large"
	defaultTimeout = 180 * time.Second
)

// modelDimensions maps known embedding models to their native
// dimensionality.
var modelDimensions = map[string]int{
	"text-embedding-3-large": 3072,
	"text-embedding-3-small": 1536,
	"text-embedding-ada-002": 1536,
}

// Client is an embedding oracle backed by the OpenAI embeddings API.
// Safe for concurrent use; one client is shared by all workers.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	dimensions  int
	rateLimiter *rate.Limiter
}

// Config holds embedding client configuration
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimensions        int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a new embedding client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required for embeddings")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		dims, ok := modelDimensions[cfg.Model]
		if !ok {
			return nil, fmt.Errorf("unknown embedding model %q, dimensions must be set explicitly", cfg.Model)
		}
		cfg.Dimensions = dims
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 3
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		dimensions:  cfg.Dimensions,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// embeddingRequest is the request body for the embeddings endpoint.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingData is one vector in an API response.
type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse is the response body of the embeddings endpoint.
type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Model string          `json:"model"`
	Error *apiError       `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Embed maps a batch of texts to vectors, preserving input order.
// Network errors, timeouts, 429 and 5xx responses surface as
// TransientError; other API errors are PermanentError.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, &domain.TransientError{Err: fmt.Errorf("rate limiter: %w", err)}
	}

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, &domain.PermanentError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.PermanentError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransientError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("embeddings API status %d: %s", resp.StatusCode, truncate(respBody, 256))
		if isRetryableStatus(resp.StatusCode) {
			return nil, &domain.TransientError{Err: apiErr}
		}
		return nil, &domain.PermanentError{Err: apiErr}
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &domain.PermanentError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != nil {
		return nil, &domain.PermanentError{Err: fmt.Errorf("embeddings API error: %s", parsed.Error.Message)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &domain.PermanentError{Err: fmt.Errorf("embeddings API returned %d vectors for %d texts", len(parsed.Data), len(texts))}
	}

	// The API is free to reorder; the index field restores input order.
	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })
	vectors := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		if len(d.Embedding) != c.dimensions {
			return nil, &domain.PermanentError{Err: fmt.Errorf("embeddings API returned %d-dim vector, want %d", len(d.Embedding), c.dimensions)}
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Dimensions returns the vector dimensionality of the configured model.
func (c *Client) Dimensions() int { return c.dimensions }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= http.StatusInternalServerError
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
