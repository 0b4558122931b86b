package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"realestate-bi/models"
	"realestate-bi/utils"
)

// Semantic raw columns.
const (
	colListingURL   = "listing_url"
	colTitle        = "title"
	colPropertyType = "property_type"
	colPrice        = "price"
	colLocation     = "location"
	colBedrooms     = "bedrooms"
	colBathrooms    = "bathrooms"
	colArea         = "area"
	colDownPayment  = "down_payment"
)

var requiredRawColumns = []string{
	colListingURL, colPropertyType, colPrice, colLocation,
	colBedrooms, colBathrooms, colArea, colDownPayment,
}

// rawHeaderAliases maps lower-cased header text to a semantic column. It
// covers plain names, the renamed dashboard export, and the CSS-class
// headers of the propertyfinder.eg web-scraper export.
var rawHeaderAliases = map[string]string{
	"listing_url": colListingURL,
	"url":         colListingURL,
	"property-card-module_property-card__link__l6akb href": colListingURL,

	"title":                               colTitle,
	"styles-module_content__title__eoekd": colTitle,

	"property_type": colPropertyType,
	"styles-module_content__property-type__quvl4": colPropertyType,

	"price":                               colPrice,
	"price_egp":                           colPrice,
	"styles-module_content__price__sgq5p": colPrice,

	"location": colLocation,
	"styles-module_content__location__bngnm": colLocation,

	"bedrooms": colBedrooms,
	"styles-module_content__details-item__mlu9b": colBedrooms,

	"bathrooms": colBathrooms,
	"styles-module_content__details-item__mlu9b (2)": colBathrooms,

	"area":     colArea,
	"area_sqm": colArea,
	"styles-module_content__details-item__mlu9b (3)": colArea,

	"down_payment":          colDownPayment,
	"down_payment_egp":      colDownPayment,
	"tag-module_tag__jfu3w": colDownPayment,
}

// RawCSVReader loads scraped listing exports.
type RawCSVReader struct {
	logger *utils.Logger
}

func NewRawCSVReader(logger *utils.Logger) *RawCSVReader {
	return &RawCSVReader{logger: logger}
}

// ReadFile opens path and reads it with Read.
func (r *RawCSVReader) ReadFile(path string) ([]*models.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()
	return r.Read(f, path)
}

// Read parses a raw export. A missing header or required column is fatal;
// rows that fail to parse are skipped and counted.
func (r *RawCSVReader) Read(src io.Reader, name string) ([]*models.RawListing, error) {
	cr := newCSVReader(src)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: %s: empty file, no header row", name)
		}
		return nil, fmt.Errorf("csv: %s: read header: %w", name, err)
	}

	idx := make(map[string]int)
	for i, h := range header {
		col, ok := rawHeaderAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := idx[col]; !dup {
			idx[col] = i
		}
	}
	if missing := missingColumns(idx, requiredRawColumns); len(missing) > 0 {
		return nil, &MissingColumnsError{Source: name, Columns: missing}
	}

	var (
		out     []*models.RawListing
		skipped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			r.logger.Debug("[csv] %s: row skipped: %v", name, err)
			continue
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		cell := cellGetter(idx, rec)
		out = append(out, &models.RawListing{
			Line:            line,
			ListingURL:      cell(colListingURL),
			Title:           cell(colTitle),
			PropertyType:    cell(colPropertyType),
			PriceText:       cell(colPrice),
			AreaText:        cell(colArea),
			DownPaymentText: cell(colDownPayment),
			BedroomsText:    cell(colBedrooms),
			BathroomsText:   cell(colBathrooms),
			LocationText:    cell(colLocation),
		})
	}

	if skipped > 0 {
		r.logger.Warn("[csv] %s: skipped %d unreadable rows", name, skipped)
	}
	r.logger.Info("[csv] Read %d raw listings from %s", len(out), name)
	return out, nil
}

// newCSVReader decodes UTF-8 (with or without BOM) and BOM-marked UTF-16
// input and tolerates ragged rows and stray quotes.
func newCSVReader(src io.Reader) *csv.Reader {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(src, dec))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
}

func missingColumns(idx map[string]int, required []string) []string {
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// cellGetter returns trimmed cell text for a semantic column, "" when the
// column is unmapped or the row is short.
func cellGetter(idx map[string]int, rec []string) func(string) string {
	return func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
