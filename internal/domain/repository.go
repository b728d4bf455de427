package domain

import (
	"context"
	"time"
)

// EmbeddingClient is the embedding oracle. Implementations must return
// one vector per input text, in input order, all of dimension
// Dimensions(). Failures are classified as TransientError or
// PermanentError. Implementations must be safe for concurrent use.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}

// EmbeddingCache is a content-addressed cache of embedding vectors,
// keyed by a hash of (model, text).
type EmbeddingCache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Set(ctx context.Context, key string, vector []float32, ttl time.Duration) error
}

// ClientItemSource yields the client line items for a workspace.
type ClientItemSource interface {
	ReadClientItems(ctx context.Context) ([]ClientItem, error)
}

// ScrapedItemSource yields the scraped competitor products for a run.
type ScrapedItemSource interface {
	ReadScrapedItems(ctx context.Context) ([]ScrapedItem, error)
}

// RecordSink persists the benchmark records for a workspace. An empty
// records slice is a valid write and replaces nothing.
type RecordSink interface {
	WriteRecords(ctx context.Context, workspaceID string, records []BenchmarkRecord) error
}
