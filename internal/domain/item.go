package domain

// ClientItem is one client line item, produced by the upstream
// normalisation pipeline and immutable inside the benchmarking core.
type ClientItem struct {
	ClusterID             int      `json:"cluster_id"`
	Category              string   `json:"category"`
	ItemDescription       string   `json:"item_description"`
	NormalisedDescription string   `json:"normalised_description"`
	UOM                   string   `json:"uom"`
	Quantity              *float64 `json:"quantity"`
	Currency              string   `json:"currency"`
	Spend                 *float64 `json:"spend"`
	UnitPrice             *float64 `json:"unit_price"`
	ExtractedQuantity     float64  `json:"extracted_quantity"`
}

// UnitVariant is one purchasing option on a scraped listing, typically an
// Amazon pack-size variant. Prices are carried verbatim as scraped since
// they may embed currency glyphs.
type UnitVariant struct {
	Quantity     float64 `json:"quantity"`
	PerUnitPrice string  `json:"per_unit_price"`
	TotalPrice   string  `json:"total_price"`
}

// CurrencyInfo is the explicit currency block some marketplaces attach to
// a scraped row.
type CurrencyInfo struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// ScrapedItem is one competitor product scraped from a marketplace.
// ClusterID is nil when the scraped row carried a missing or non-finite
// cluster id; such rows never participate in matching.
type ScrapedItem struct {
	ClusterID           *int          `json:"cluster_id"`
	Title               string        `json:"title"`
	URL                 string        `json:"url"`
	Price               string        `json:"price"`
	Quantity            string        `json:"quantity"`
	TotalPrice          string        `json:"total_price"`
	Currency            string        `json:"currency"`
	CurrencyInfo        *CurrencyInfo `json:"currency_info,omitempty"`
	CurrencySymbol      string        `json:"currency_symbol,omitempty"`
	UnitVariants        []UnitVariant `json:"unit_variants,omitempty"`
	NetQuantity         string        `json:"net_quantity,omitempty"`
	VariantTotalPrice   string        `json:"variant_total_price,omitempty"`
	PerUnitPriceDisplay string        `json:"per_unit_price_display,omitempty"`
}
