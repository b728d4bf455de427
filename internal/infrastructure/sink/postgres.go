package sink

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/pricelens/backend/internal/domain"
)

const createTableStmt = `
CREATE TABLE IF NOT EXISTS benchmark_records (
	workspace_id           TEXT             NOT NULL,
	cluster_id             INTEGER          NOT NULL,
	category               TEXT,
	sku_description        TEXT,
	uom                    TEXT,
	quantity               DOUBLE PRECISION,
	currency               TEXT,
	spend                  DOUBLE PRECISION,
	unit_price             DOUBLE PRECISION,
	normalised_description TEXT,
	source_description     TEXT,
	source_currency        TEXT,
	source_unit_price      TEXT,
	source_url             TEXT,
	similarity_score       DOUBLE PRECISION NOT NULL,
	extracted_quantity     DOUBLE PRECISION,
	source_quantity        DOUBLE PRECISION,
	source_total_price     TEXT,
	created_at             TIMESTAMPTZ      NOT NULL DEFAULT now()
)`

const insertStmt = `
INSERT INTO benchmark_records (
	workspace_id, cluster_id, category, sku_description, uom, quantity,
	currency, spend, unit_price, normalised_description, source_description,
	source_currency, source_unit_price, source_url, similarity_score,
	extracted_quantity, source_quantity, source_total_price
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// PostgresSink writes benchmark records to a Postgres table. Writing a
// workspace replaces its previous records inside one transaction.
type PostgresSink struct {
	db *sqlx.DB
}

// NewPostgresSink creates a Postgres sink and ensures the output table
// exists.
func NewPostgresSink(db *sqlx.DB) (*PostgresSink, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if _, err := db.Exec(createTableStmt); err != nil {
		return nil, fmt.Errorf("create benchmark_records table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

// WriteRecords replaces the workspace's records with the given set.
func (s *PostgresSink) WriteRecords(ctx context.Context, workspaceID string, records []domain.BenchmarkRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM benchmark_records WHERE workspace_id = $1`, workspaceID); err != nil {
		return fmt.Errorf("clear previous records: %w", err)
	}

	for _, r := range records {
		_, err := tx.ExecContext(ctx, insertStmt,
			workspaceID, r.ClusterID, r.Category, r.SKUDescription, r.UOM, r.Quantity,
			r.Currency, r.Spend, r.UnitPrice, r.NormalisedDescription, r.SourceDescription,
			r.SourceCurrency, r.SourceUnitPrice, r.SourceURL, r.SimilarityScore,
			r.ExtractedQuantity, r.SourceQuantity, r.SourceTotalPrice,
		)
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}
