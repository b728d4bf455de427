package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/pricelens/backend/internal/domain"
)

// BatchEmbedderConfig holds configuration for the batch embedder
type BatchEmbedderConfig struct {
	BatchSize   int
	MaxAttempts int
	BackoffMin  time.Duration
	BackoffMax  time.Duration
	CacheTTL    time.Duration
}

// BatchEmbedder turns arbitrary-sized text lists into vector lists
// without exceeding oracle batch limits and without propagating
// transient failures. A batch whose retries are exhausted is filled with
// zero vectors so the run degrades instead of aborting.
type BatchEmbedder struct {
	oracle      domain.EmbeddingClient
	cache       domain.EmbeddingCache
	batchSize   int
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	cacheTTL    time.Duration
}

// NewBatchEmbedder creates a batch embedder. cache may be nil to disable
// embedding caching.
func NewBatchEmbedder(oracle domain.EmbeddingClient, cache domain.EmbeddingCache, config BatchEmbedderConfig) *BatchEmbedder {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	backoffMin := config.BackoffMin
	if backoffMin <= 0 {
		backoffMin = 1 * time.Second
	}
	backoffMax := config.BackoffMax
	if backoffMax <= 0 {
		backoffMax = 60 * time.Second
	}
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 168 * time.Hour
	}

	return &BatchEmbedder{
		oracle:      oracle,
		cache:       cache,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		backoffMin:  backoffMin,
		backoffMax:  backoffMax,
		cacheTTL:    cacheTTL,
	}
}

// EmbedTexts returns one vector per input text, index-aligned with the
// input. Empty texts get a zero vector without contacting the oracle.
// The second return value counts batches that fell back to zero vectors
// after a permanent failure or exhausted retries.
func (e *BatchEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, int) {
	dim := e.oracle.Dimensions()
	out := make([][]float32, len(texts))

	var pending []int
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		if e.cache != nil {
			if vec, err := e.cache.Get(ctx, e.cacheKey(t)); err == nil && len(vec) == dim {
				out[i] = vec
				continue
			}
		}
		pending = append(pending, i)
	}

	failures := 0
	for start := 0; start < len(pending); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		chunkIdx := pending[start:end]
		chunk := make([]string, len(chunkIdx))
		for j, i := range chunkIdx {
			chunk[j] = texts[i]
		}

		vectors, err := e.embedChunk(ctx, chunk)
		if err != nil || len(vectors) != len(chunk) {
			log.Error().Err(err).
				Int("batch_size", len(chunk)).
				Msg("embedding batch failed, substituting zero vectors")
			failures++
			for _, i := range chunkIdx {
				out[i] = make([]float32, dim)
			}
			continue
		}

		for j, i := range chunkIdx {
			out[i] = vectors[j]
			if e.cache != nil {
				if err := e.cache.Set(ctx, e.cacheKey(texts[i]), vectors[j], e.cacheTTL); err != nil {
					log.Warn().Err(err).Msg("embedding cache write failed")
				}
			}
		}
	}

	return out, failures
}

// embedChunk calls the oracle for one chunk, retrying transient failures
// with exponential backoff.
func (e *BatchEmbedder) embedChunk(ctx context.Context, chunk []string) ([][]float32, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.backoffMin
	b.Multiplier = 2
	b.MaxInterval = e.backoffMax
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0

	var vectors [][]float32
	operation := func() error {
		v, err := e.oracle.Embed(ctx, chunk)
		if err != nil {
			if domain.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		vectors = v
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(e.maxAttempts-1)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return vectors, nil
}

// cacheKey content-addresses a text for the configured model.
func (e *BatchEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(e.oracle.Model() + "\x00" + text))
	return hex.EncodeToString(h[:])
}
