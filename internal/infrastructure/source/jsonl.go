package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/pricelens/backend/internal/domain"
)

// ScrapedJSONLSource reads scraped products from a JSONL file, one JSON
// object per line. JSONL carries the nested unit_variants records that a
// flat CSV cannot.
type ScrapedJSONLSource struct {
	path string
}

// NewScrapedJSONLSource creates a JSONL source for scraped items
func NewScrapedJSONLSource(path string) *ScrapedJSONLSource {
	return &ScrapedJSONLSource{path: path}
}

// scrapedLine mirrors domain.ScrapedItem but keeps cluster_id as a raw
// float so missing, null and fractional values can be rejected here.
type scrapedLine struct {
	ClusterID           *float64             `json:"cluster_id"`
	Title               string               `json:"title"`
	URL                 string               `json:"url"`
	Price               string               `json:"price"`
	Quantity            string               `json:"quantity"`
	TotalPrice          string               `json:"total_price"`
	Currency            string               `json:"currency"`
	CurrencyInfo        *domain.CurrencyInfo `json:"currency_info"`
	CurrencySymbol      string               `json:"currency_symbol"`
	UnitVariants        []domain.UnitVariant `json:"unit_variants"`
	NetQuantity         string               `json:"net_quantity"`
	VariantTotalPrice   string               `json:"variant_total_price"`
	PerUnitPriceDisplay string               `json:"per_unit_price_display"`
}

// ReadScrapedItems parses the JSONL file. Lines that are not valid JSON
// are skipped with a warning; cluster ids that are missing or not a
// non-negative integer leave ClusterID nil so the partitioner drops the
// row.
func (s *ScrapedJSONLSource) ReadScrapedItems(ctx context.Context) ([]domain.ScrapedItem, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open scraped items: %w", err)
	}
	defer f.Close()

	var items []domain.ScrapedItem
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw scrapedLine
		if err := json.Unmarshal(line, &raw); err != nil {
			skipped++
			continue
		}

		item := domain.ScrapedItem{
			Title:               raw.Title,
			URL:                 raw.URL,
			Price:               raw.Price,
			Quantity:            raw.Quantity,
			TotalPrice:          raw.TotalPrice,
			Currency:            raw.Currency,
			CurrencyInfo:        raw.CurrencyInfo,
			CurrencySymbol:      raw.CurrencySymbol,
			UnitVariants:        raw.UnitVariants,
			NetQuantity:         raw.NetQuantity,
			VariantTotalPrice:   raw.VariantTotalPrice,
			PerUnitPriceDisplay: raw.PerUnitPriceDisplay,
		}
		if id, ok := finiteClusterID(raw.ClusterID); ok {
			item.ClusterID = &id
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scraped items: %w", err)
	}

	if skipped > 0 {
		log.Warn().Int("lines", skipped).Str("path", s.path).Msg("scraped lines skipped for invalid JSON")
	}
	return items, nil
}

func finiteClusterID(v *float64) (int, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	if *v < 0 || *v != math.Trunc(*v) {
		return 0, false
	}
	return int(*v), true
}
