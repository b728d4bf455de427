package domain

// BenchmarkRecord is one normalised comparison row: a client line item
// enriched with the market fields of its best-matching scraped product.
// Source prices are strings because scraped listings frequently embed
// currency glyphs ("₹540"); purely numeric strings are canonicalised by
// the assembler.
type BenchmarkRecord struct {
	ClusterID             int      `json:"cluster_id" db:"cluster_id"`
	Category              string   `json:"category" db:"category"`
	SKUDescription        string   `json:"sku_description" db:"sku_description"`
	UOM                   string   `json:"uom" db:"uom"`
	Quantity              *float64 `json:"quantity" db:"quantity"`
	Currency              string   `json:"currency" db:"currency"`
	Spend                 *float64 `json:"spend" db:"spend"`
	UnitPrice             *float64 `json:"unit_price" db:"unit_price"`
	NormalisedDescription string   `json:"normalised_description" db:"normalised_description"`
	SourceDescription     string   `json:"source_description" db:"source_description"`
	SourceCurrency        string   `json:"source_currency" db:"source_currency"`
	SourceUnitPrice       string   `json:"source_unit_price" db:"source_unit_price"`
	SourceURL             string   `json:"source_url" db:"source_url"`
	SimilarityScore       float64  `json:"similarity_score" db:"similarity_score"`
	ExtractedQuantity     float64  `json:"extracted_quantity" db:"extracted_quantity"`
	SourceQuantity        *float64 `json:"source_quantity" db:"source_quantity"`
	SourceTotalPrice      string   `json:"source_total_price" db:"source_total_price"`
}

// Match pairs a client row with its best scraped row inside one cluster.
// Indexes are positions within the cluster after partitioning.
type Match struct {
	ClientIndex  int
	ScrapedIndex int
	Score        float64
}

// RunSummary reports the outcome of one benchmark run. It is the only
// feedback channel for data-quality issues, which never fail the run.
type RunSummary struct {
	RunID                   string `json:"run_id"`
	WorkspaceID             string `json:"workspace_id"`
	ClustersProcessed       int    `json:"clusters_processed"`
	ClustersSkipped         int    `json:"clusters_skipped"`
	RowsMatched             int    `json:"rows_matched"`
	RowsUnmatched           int    `json:"rows_unmatched"`
	RowsDropped             int    `json:"rows_dropped"`
	PermanentOracleFailures int    `json:"permanent_oracle_failures"`
	RecordsWritten          int    `json:"records_written"`
}
