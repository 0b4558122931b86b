package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"realestate-bi/models"
	"realestate-bi/utils"
)

var (
	// digitRunRegexp captures every maximal run of ASCII digits.
	digitRunRegexp = regexp.MustCompile(`\d+`)

	// separatorStripper removes thousands separators and folds Arabic-Indic
	// digits onto ASCII so listings scraped from the Arabic site parse too.
	separatorStripper = strings.NewReplacer(
		",", "", "٬", "",
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
		"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
		"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	)
)

const defaultChunkSize = 256

// NormalizeStats counts the per-row degradations of one batch.
type NormalizeStats struct {
	Rows               int
	MissingPrice       int
	MissingArea        int
	MissingDownPayment int
	Unbucketed         int
	UnknownLocation    int
	DuplicateURLs      int
}

// Normalizer turns RawListings into canonical Listings.
type Normalizer struct {
	logger    *utils.Logger
	workers   int
	chunkSize int
}

// NewNormalizer creates a Normalizer that spreads work across workers goroutines.
func NewNormalizer(logger *utils.Logger, workers int) *Normalizer {
	return &Normalizer{logger: logger, workers: workers, chunkSize: defaultChunkSize}
}

// Normalize maps every raw record to a canonical listing, preserving length and order.
func (n *Normalizer) Normalize(raw []*models.RawListing) []*models.Listing {
	out, stats := n.NormalizeWithStats(raw)
	n.logger.Info("[normalizer] Normalized %d listings (no price: %d, no area: %d, no down payment: %d, unbucketed: %d, unknown location: %d, duplicate URLs: %d)",
		stats.Rows, stats.MissingPrice, stats.MissingArea, stats.MissingDownPayment,
		stats.Unbucketed, stats.UnknownLocation, stats.DuplicateURLs)
	return out
}

// NormalizeWithStats is Normalize without logging, returning the batch counters.
func (n *Normalizer) NormalizeWithStats(raw []*models.RawListing) ([]*models.Listing, NormalizeStats) {
	out := make([]*models.Listing, len(raw))

	pool := utils.NewWorkerPool(n.workers)
	pool.Chunks(len(raw), n.chunkSize, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = NormalizeOne(raw[i])
		}
	})

	stats := NormalizeStats{Rows: len(out)}
	seen := utils.NewURLSet()
	for _, l := range out {
		if l.PriceEGP == nil {
			stats.MissingPrice++
		}
		if l.AreaSqm == nil {
			stats.MissingArea++
		}
		if l.DownPaymentEGP == nil {
			stats.MissingDownPayment++
		}
		if l.PriceBucket == "" {
			stats.Unbucketed++
		}
		if l.LocationMain == models.UnknownCategory {
			stats.UnknownLocation++
		}
		if l.ListingURL != "" && !seen.Add(l.ListingURL) {
			stats.DuplicateURLs++
		}
	}
	return out, stats
}

// NormalizeOne converts a single raw record. It never fails: malformed
// fields become absent values or zero counts.
func NormalizeOne(r *models.RawListing) *models.Listing {
	l := &models.Listing{
		ListingURL:     strings.TrimSpace(r.ListingURL),
		Title:          strings.TrimSpace(r.Title),
		Location:       strings.TrimSpace(r.LocationText),
		LocationMain:   LocationMain(r.LocationText),
		PropertyType:   Category(r.PropertyType),
		PriceEGP:       ExtractNumber(r.PriceText),
		AreaSqm:        ExtractNumber(r.AreaText),
		DownPaymentEGP: ExtractNumber(r.DownPaymentText),
		Bedrooms:       CoerceCount(r.BedroomsText),
		Bathrooms:      CoerceCount(r.BathroomsText),
	}
	l.Derive()
	return l
}

// ExtractNumber pulls a non-negative integer out of free text such as
// "22,000,000 EGP" or "202 sqm". Every digit run is concatenated in order,
// so text holding several numbers ("5,000,000 - 6,000,000") yields one
// oversized value. Returns nil when the text has no digits or the digits
// overflow int64.
func ExtractNumber(text string) *int64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runs := digitRunRegexp.FindAllString(separatorStripper.Replace(text), -1)
	if len(runs) == 0 {
		return nil
	}
	n, err := strconv.ParseInt(strings.Join(runs, ""), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// CoerceCount parses a bedroom/bathroom count. Decimal input is truncated;
// anything unparsable, negative or absurdly large becomes 0.
func CoerceCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if n, err := strconv.Atoi(text); err == nil {
		if n < 0 || n > math.MaxInt32 {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// LocationMain returns the most specific segment of a comma-separated
// location ("June, Ras Al Hekma, North Coast" -> "June").
func LocationMain(text string) string {
	first, _, _ := strings.Cut(text, ",")
	return Category(first)
}

// Category trims a categorical value and maps absence to UnknownCategory.
func Category(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.UnknownCategory
	}
	return text
}
