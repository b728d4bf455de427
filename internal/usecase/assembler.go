package usecase

import (
	"math"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// RecordAssembler builds one benchmark record for an accepted pair. One
// implementation exists per marketplace family; selection happens by URL
// inspection in the selector, never inside the matcher.
type RecordAssembler interface {
	Assemble(client domain.ClientItem, scraped domain.ScrapedItem, score float64) domain.BenchmarkRecord
}

// currencySymbols maps scraped currency glyphs to ISO codes when a row
// carries no explicit currency code.
var currencySymbols = map[string]string{
	"$":    "USD",
	"€":    "EUR",
	"£":    "GBP",
	"₹":    "INR",
	"¥":    "JPY",
	"ريال": "SAR",
	"د.إ":  "AED",
	"R$":   "BRL",
}

// AssemblerSelector picks the assembler for a scraped row. Rows whose URL
// contains an Amazon marker get the variant-aware assembler; the run
// level source URL is the fallback when a row has no URL of its own.
type AssemblerSelector struct {
	markers   []string
	sourceURL string
	amazon    RecordAssembler
	generic   RecordAssembler
}

// NewAssemblerSelector creates a selector. markers are matched
// case-insensitively; empty markers fall back to ["amazon"].
func NewAssemblerSelector(markers []string, sourceURL string) *AssemblerSelector {
	if len(markers) == 0 {
		markers = []string{"amazon"}
	}
	lowered := make([]string, len(markers))
	for i, m := range markers {
		lowered[i] = strings.ToLower(m)
	}
	return &AssemblerSelector{
		markers:   lowered,
		sourceURL: strings.ToLower(sourceURL),
		amazon:    &amazonAssembler{},
		generic:   &genericAssembler{},
	}
}

// For returns the assembler for one scraped row.
func (s *AssemblerSelector) For(scraped domain.ScrapedItem) RecordAssembler {
	url := strings.ToLower(strings.TrimSpace(scraped.URL))
	if url == "" {
		url = s.sourceURL
	}
	for _, m := range s.markers {
		if strings.Contains(url, m) {
			return s.amazon
		}
	}
	return s.generic
}

// baseRecord copies the business fields every assembler shares.
func baseRecord(client domain.ClientItem, scraped domain.ScrapedItem, score float64) domain.BenchmarkRecord {
	currency := strings.TrimSpace(client.Currency)
	if currency == "" {
		currency = "USD"
	}
	extracted := client.ExtractedQuantity
	if extracted == 0 {
		extracted = 1
	}
	return domain.BenchmarkRecord{
		ClusterID:             client.ClusterID,
		Category:              strings.TrimSpace(client.Category),
		SKUDescription:        strings.TrimSpace(client.ItemDescription),
		UOM:                   strings.TrimSpace(client.UOM),
		Quantity:              client.Quantity,
		Currency:              currency,
		Spend:                 client.Spend,
		UnitPrice:             client.UnitPrice,
		NormalisedDescription: strings.TrimSpace(client.NormalisedDescription),
		SourceDescription:     strings.TrimSpace(scraped.Title),
		SourceURL:             strings.TrimSpace(scraped.URL),
		SimilarityScore:       roundScore(score),
		ExtractedQuantity:     extracted,
	}
}

// roundScore rounds a similarity score to four decimal places.
func roundScore(score float64) float64 {
	return math.Round(score*10000) / 10000
}

// genericAssembler handles scraped rows from marketplaces without
// variant listings: market fields come straight from the flat row and
// the client currency is inherited when the row has none.
type genericAssembler struct{}

func (a *genericAssembler) Assemble(client domain.ClientItem, scraped domain.ScrapedItem, score float64) domain.BenchmarkRecord {
	rec := baseRecord(client, scraped, score)

	rec.SourceUnitPrice = domain.CanonicalNumeric(scraped.Price)
	rec.SourceQuantity = domain.ParseNumber(scraped.Quantity)
	rec.SourceTotalPrice = domain.CanonicalNumeric(scraped.TotalPrice)

	currency := strings.TrimSpace(scraped.Currency)
	if currency == "" {
		currency = rec.Currency
	}
	rec.SourceCurrency = currency
	return rec
}

// amazonAssembler handles Amazon-family rows: when the row carries unit
// variants, the largest-quantity variant wins and overrides the market
// fields, which normalises unit price comparisons across pack sizes.
type amazonAssembler struct{}

func (a *amazonAssembler) Assemble(client domain.ClientItem, scraped domain.ScrapedItem, score float64) domain.BenchmarkRecord {
	rec := baseRecord(client, scraped, score)

	if v, ok := largestVariant(scraped.UnitVariants); ok {
		qty := v.Quantity
		rec.SourceQuantity = &qty
		rec.SourceTotalPrice = domain.CanonicalNumeric(v.TotalPrice)
		rec.SourceUnitPrice = domain.CanonicalNumeric(v.PerUnitPrice)
	} else {
		rec.SourceQuantity = domain.ParseNumber(firstNonEmpty(scraped.NetQuantity, scraped.Quantity))
		rec.SourceTotalPrice = domain.CanonicalNumeric(firstNonEmpty(scraped.VariantTotalPrice, scraped.TotalPrice))
		rec.SourceUnitPrice = domain.CanonicalNumeric(firstNonEmpty(scraped.PerUnitPriceDisplay, scraped.Price))
	}

	rec.SourceCurrency = resolveAmazonCurrency(scraped)
	return rec
}

// largestVariant picks the variant with the largest quantity; ties break
// by first occurrence.
func largestVariant(variants []domain.UnitVariant) (domain.UnitVariant, bool) {
	if len(variants) == 0 {
		return domain.UnitVariant{}, false
	}
	best := variants[0]
	for _, v := range variants[1:] {
		if v.Quantity > best.Quantity {
			best = v
		}
	}
	return best, true
}

// resolveAmazonCurrency resolves currency from the explicit code, then a
// mapped symbol, then USD.
func resolveAmazonCurrency(scraped domain.ScrapedItem) string {
	if scraped.CurrencyInfo != nil {
		if code := strings.TrimSpace(scraped.CurrencyInfo.Code); code != "" {
			return code
		}
	}
	symbol := strings.TrimSpace(scraped.CurrencySymbol)
	if symbol == "" && scraped.CurrencyInfo != nil {
		symbol = strings.TrimSpace(scraped.CurrencyInfo.Symbol)
	}
	if code, ok := currencySymbols[symbol]; ok {
		return code
	}
	return "USD"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
