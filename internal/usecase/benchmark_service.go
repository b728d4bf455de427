package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pricelens/backend/internal/domain"
)

// BenchmarkServiceConfig holds configuration for the benchmark service
type BenchmarkServiceConfig struct {
	SimilarityThreshold  float64
	ScrapedCapPerCluster int
	MaxWorkers           int
	BatchSize            int
	RetryMaxAttempts     int
	RetryBackoffMin      time.Duration
	RetryBackoffMax      time.Duration
	AmazonURLMarkers     []string
	CacheTTL             time.Duration
}

// BenchmarkService runs the benchmarking pipeline: partition both inputs
// by cluster, embed, match, assemble, and write the merged records. Work
// is parallel at cluster granularity; within a cluster it is sequential.
type BenchmarkService struct {
	oracle      domain.EmbeddingClient
	cache       domain.EmbeddingCache
	sink        domain.RecordSink
	partitioner *Partitioner
	matcher     *Matcher
	config      BenchmarkServiceConfig
}

// NewBenchmarkService creates a benchmark service with dependencies.
// cache may be nil to disable embedding caching.
func NewBenchmarkService(
	oracle domain.EmbeddingClient,
	cache domain.EmbeddingCache,
	sink domain.RecordSink,
	config BenchmarkServiceConfig,
) *BenchmarkService {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}
	return &BenchmarkService{
		oracle:      oracle,
		cache:       cache,
		sink:        sink,
		partitioner: NewPartitioner(config.ScrapedCapPerCluster),
		matcher:     NewMatcher(config.SimilarityThreshold),
		config:      config,
	}
}

// clusterResult is the outcome of one cluster task.
type clusterResult struct {
	records        []domain.BenchmarkRecord
	matched        int
	unmatched      int
	oracleFailures int
}

// Run executes one benchmark run for a workspace and writes the merged
// records to the sink. Data-quality issues never fail the run; only an
// unreadable input source or an unwritable sink do.
func (s *BenchmarkService) Run(
	ctx context.Context,
	workspaceID string,
	clientSource domain.ClientItemSource,
	scrapedSource domain.ScrapedItemSource,
	sourceURL string,
) (*domain.RunSummary, error) {
	if workspaceID == "" || clientSource == nil || scrapedSource == nil {
		return nil, domain.ErrInvalidRequest
	}

	summary := &domain.RunSummary{
		RunID:       uuid.NewString(),
		WorkspaceID: workspaceID,
	}
	runLog := log.With().
		Str("run_id", summary.RunID).
		Str("workspace_id", workspaceID).
		Logger()

	clientItems, err := clientSource.ReadClientItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client items: %v", domain.ErrSourceUnavailable, err)
	}
	scrapedItems, err := scrapedSource.ReadScrapedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: scraped items: %v", domain.ErrSourceUnavailable, err)
	}
	runLog.Info().
		Int("client_items", len(clientItems)).
		Int("scraped_items", len(scrapedItems)).
		Msg("benchmark run started")

	clusters, dropped := s.partitioner.Partition(clientItems, scrapedItems)
	summary.RowsDropped = dropped

	embedder := NewBatchEmbedder(s.oracle, s.cache, BatchEmbedderConfig{
		BatchSize:   s.config.BatchSize,
		MaxAttempts: s.config.RetryMaxAttempts,
		BackoffMin:  s.config.RetryBackoffMin,
		BackoffMax:  s.config.RetryBackoffMax,
		CacheTTL:    s.config.CacheTTL,
	})
	selector := NewAssemblerSelector(s.config.AmazonURLMarkers, sourceURL)

	var mu sync.Mutex
	var records []domain.BenchmarkRecord

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxWorkers)

	for _, cluster := range clusters {
		cluster := cluster
		g.Go(func() error {
			result, err := s.processCluster(gctx, cluster, embedder, selector)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				runLog.Error().Err(err).Int("cluster_id", cluster.id).Msg("cluster skipped")
				summary.ClustersSkipped++
				return nil
			}
			records = append(records, result.records...)
			summary.ClustersProcessed++
			summary.RowsMatched += result.matched
			summary.RowsUnmatched += result.unmatched
			summary.PermanentOracleFailures += result.oracleFailures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records = dedupeRecords(records)
	summary.RecordsWritten = len(records)

	if err := s.sink.WriteRecords(ctx, workspaceID, records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSinkUnavailable, err)
	}

	runLog.Info().
		Int("clusters_processed", summary.ClustersProcessed).
		Int("clusters_skipped", summary.ClustersSkipped).
		Int("rows_matched", summary.RowsMatched).
		Int("rows_unmatched", summary.RowsUnmatched).
		Int("records_written", summary.RecordsWritten).
		Msg("benchmark run finished")
	return summary, nil
}

// processCluster runs the sequential pipeline for one cluster. A panic
// inside the cluster is converted to an error so one bad cluster never
// takes down the run.
func (s *BenchmarkService) processCluster(
	ctx context.Context,
	cluster clusterSlice,
	embedder *BatchEmbedder,
	selector *AssemblerSelector,
) (result clusterResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cluster %d: %v", cluster.id, r)
		}
	}()

	clientTexts := make([]string, len(cluster.clientRows))
	for i, row := range cluster.clientRows {
		clientTexts[i] = row.text
	}
	scrapedTexts := make([]string, len(cluster.scrapedRows))
	for i, row := range cluster.scrapedRows {
		scrapedTexts[i] = row.text
	}

	clientVectors, clientFailures := embedder.EmbedTexts(ctx, clientTexts)
	scrapedVectors, scrapedFailures := embedder.EmbedTexts(ctx, scrapedTexts)
	result.oracleFailures = clientFailures + scrapedFailures

	matches := s.matcher.Match(clientVectors, scrapedVectors)
	for _, m := range matches {
		client := cluster.clientRows[m.ClientIndex].item
		scraped := cluster.scrapedRows[m.ScrapedIndex].item
		record := selector.For(scraped).Assemble(client, scraped, m.Score)
		result.records = append(result.records, record)
	}
	result.matched = len(matches)
	result.unmatched = len(cluster.clientRows) - len(matches)
	return result, nil
}

// dedupeRecords drops exact duplicates on full row equality, keeping the
// first occurrence.
func dedupeRecords(records []domain.BenchmarkRecord) []domain.BenchmarkRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, r := range records {
		key, err := json.Marshal(r)
		if err != nil {
			out = append(out, r)
			continue
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		out = append(out, r)
	}
	return out
}
