// Package source provides tabular readers for the benchmark inputs:
// client line items as CSV (warehouse export shape) and scraped products
// as JSONL (nested variant records).
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pricelens/backend/internal/domain"
)

// ClientCSVSource reads client line items from a header-mapped CSV file.
type ClientCSVSource struct {
	path string
}

// NewClientCSVSource creates a CSV source for client items
func NewClientCSVSource(path string) *ClientCSVSource {
	return &ClientCSVSource{path: path}
}

// ReadClientItems parses the CSV file. Rows whose cluster_id does not
// parse as a non-negative integer are dropped and counted in the log;
// numeric business fields coerce once here, at the boundary.
func (s *ClientCSVSource) ReadClientItems(ctx context.Context) ([]domain.ClientItem, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open client items: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read client items header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["cluster_id"]; !ok {
		return nil, fmt.Errorf("client items CSV missing cluster_id column")
	}

	var items []domain.ClientItem
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read client items row: %w", err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		cluster := domain.ParseNumber(field("cluster_id"))
		if cluster == nil || *cluster < 0 || *cluster != float64(int(*cluster)) {
			dropped++
			continue
		}

		extracted := 1.0
		if v := domain.ParseNumber(field("extracted_quantity")); v != nil {
			extracted = *v
		}

		items = append(items, domain.ClientItem{
			ClusterID:             int(*cluster),
			Category:              strings.TrimSpace(field("category")),
			ItemDescription:       strings.TrimSpace(field("item_description")),
			NormalisedDescription: field("normalised_description"),
			UOM:                   strings.TrimSpace(field("uom")),
			Quantity:              domain.ParseNumber(field("quantity")),
			Currency:              strings.TrimSpace(field("currency")),
			Spend:                 domain.ParseNumber(field("spend")),
			UnitPrice:             domain.ParseNumber(field("unit_price")),
			ExtractedQuantity:     extracted,
		})
	}

	if dropped > 0 {
		log.Warn().Int("rows", dropped).Str("path", s.path).Msg("client rows dropped for invalid cluster_id")
	}
	return items, nil
}
