package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"realestate-bi/models"
	"realestate-bi/services"
	"realestate-bi/utils"
)

// The derived columns are recomputed on load and may be omitted.
var requiredCanonicalColumns = []string{
	"listing_url", "location_main", "property_type",
	"price_egp", "area_sqm", "down_payment_egp", "bedrooms", "bathrooms",
}

// CanonicalCSVReader loads files written by CSVWriter.
type CanonicalCSVReader struct {
	logger *utils.Logger
}

func NewCanonicalCSVReader(logger *utils.Logger) *CanonicalCSVReader {
	return &CanonicalCSVReader{logger: logger}
}

// ReadFile opens path and reads it with Read.
func (r *CanonicalCSVReader) ReadFile(path string) ([]*models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()
	return r.Read(f, path)
}

// Read parses canonical listings. Integer cells go through the normalizer's
// extraction rules, so a canonical file reads back unchanged and a cell such
// as "22,000,000" still parses. Cells without digits load as absent;
// price_per_sqm and price_bucket are derived again.
func (r *CanonicalCSVReader) Read(src io.Reader, name string) ([]*models.Listing, error) {
	cr := newCSVReader(src)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: %s: empty file, no header row", name)
		}
		return nil, fmt.Errorf("csv: %s: read header: %w", name, err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = normalizeHeader(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	if missing := missingColumns(idx, requiredCanonicalColumns); len(missing) > 0 {
		return nil, &MissingColumnsError{Source: name, Columns: missing}
	}

	var (
		out       []*models.Listing
		skipped   int
		malformed int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if isBlank(rec) {
			continue
		}

		cell := cellGetter(idx, rec)
		optInt := func(col string) *int64 {
			v, ok := parseOptInt(cell(col))
			if !ok {
				malformed++
			}
			return v
		}
		count := func(col string) int {
			return services.CoerceCount(cell(col))
		}

		l := &models.Listing{
			ListingURL:     cell("listing_url"),
			Title:          cell("title"),
			Location:       cell("location"),
			LocationMain:   category(cell("location_main")),
			PropertyType:   category(cell("property_type")),
			PriceEGP:       optInt("price_egp"),
			AreaSqm:        optInt("area_sqm"),
			DownPaymentEGP: optInt("down_payment_egp"),
			Bedrooms:       count("bedrooms"),
			Bathrooms:      count("bathrooms"),
		}
		l.Derive()
		out = append(out, l)
	}

	if skipped > 0 || malformed > 0 {
		r.logger.Warn("[csv] %s: skipped %d unreadable rows, %d malformed cells loaded as absent",
			name, skipped, malformed)
	}
	r.logger.Info("[csv] Loaded %d canonical listings from %s", len(out), name)
	return out, nil
}

// parseOptInt extracts an integer from a cell. Empty cells are absent and
// well-formed; a non-empty cell without a usable number is malformed.
func parseOptInt(s string) (*int64, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	n := services.ExtractNumber(s)
	return n, n != nil
}

func category(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.UnknownCategory
	}
	return s
}
