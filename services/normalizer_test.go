package services

import (
	"fmt"
	"testing"

	"realestate-bi/models"
	"realestate-bi/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func i64(v int64) *int64 { return &v }

func fmtOpt(p *int64) string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprint(*p)
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"22,000,000 EGP", i64(22_000_000)},
		{"202 sqm", i64(202)},
		{"", nil},
		{"   ", nil},
		{"no digits here", nil},
		{"22000000", i64(22_000_000)},
		{"0", i64(0)},
		{"EGP 1,250,000", i64(1_250_000)},
		{"٢٠٢ م²", i64(202)},
		// Several numbers are concatenated, not split.
		{"5,000,000 - 6,000,000", i64(50_000_006_000_000)},
		{"1,200.50", i64(120050)},
		{"99999999999999999999 EGP", nil},
	}

	for _, tt := range tests {
		got := ExtractNumber(tt.raw)
		if fmtOpt(got) != fmtOpt(tt.want) {
			t.Errorf("ExtractNumber(%q) = %s; want %s", tt.raw, fmtOpt(got), fmtOpt(tt.want))
		}
	}
}

func TestExtractNumberIdempotent(t *testing.T) {
	for _, v := range []int64{0, 7, 202, 22_000_000, 4_999_999} {
		got := ExtractNumber(fmt.Sprint(v))
		if got == nil || *got != v {
			t.Errorf("ExtractNumber(%d) = %s; want %d", v, fmtOpt(got), v)
		}
	}
}

func TestCoerceCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{" 4 ", 4},
		{"", 0},
		{"Studio", 0},
		{"7+", 0},
		{"-2", 0},
		{"2.0", 2},
		{"2.7", 2},
		{"NaN", 0},
		{"99999999999", 0},
	}

	for _, tt := range tests {
		got := CoerceCount(tt.raw)
		if got != tt.want {
			t.Errorf("CoerceCount(%q) = %d; want %d", tt.raw, got, tt.want)
		}
		if got < 0 {
			t.Errorf("CoerceCount(%q) returned negative %d", tt.raw, got)
		}
	}
}

func TestLocationMain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"June, Ras Al Hekma, North Coast", "June"},
		{"  North Coast  ", "North Coast"},
		{"New Cairo,", "New Cairo"},
		{"", models.UnknownCategory},
		{" , Cairo", models.UnknownCategory},
	}

	for _, tt := range tests {
		if got := LocationMain(tt.raw); got != tt.want {
			t.Errorf("LocationMain(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPricePerSqm(t *testing.T) {
	if got := models.PricePerSqm(i64(22_000_000), i64(200)); got == nil || *got != 110_000 {
		t.Errorf("PricePerSqm(22M, 200) = %v; want 110000", got)
	}
	if got := models.PricePerSqm(i64(1_000), i64(3)); got == nil || *got != 1000.0/3.0 {
		t.Errorf("PricePerSqm should use real division, got %v", got)
	}
	if models.PricePerSqm(nil, i64(200)) != nil {
		t.Error("PricePerSqm with absent price should be absent")
	}
	if models.PricePerSqm(i64(1_000), nil) != nil {
		t.Error("PricePerSqm with absent area should be absent")
	}
	if models.PricePerSqm(i64(1_000), i64(0)) != nil {
		t.Error("PricePerSqm with zero area should be absent")
	}
	if models.PricePerSqm(i64(0), i64(200)) != nil {
		t.Error("PricePerSqm with zero price should be absent")
	}
}

func TestNormalizeOneZeroPriceHasNoPricePerSqm(t *testing.T) {
	l := NormalizeOne(&models.RawListing{PriceText: "0 EGP", AreaText: "200 sqm"})
	if l.PriceEGP == nil || *l.PriceEGP != 0 {
		t.Fatalf("PriceEGP = %s; want 0", fmtOpt(l.PriceEGP))
	}
	if l.PricePerSqm != nil {
		t.Errorf("PricePerSqm = %v; want absent", *l.PricePerSqm)
	}
	if l.PriceBucket != "<5M" {
		t.Errorf("PriceBucket = %q; want <5M", l.PriceBucket)
	}
}

func TestPriceBucketPartition(t *testing.T) {
	tests := []struct {
		price *int64
		want  string
	}{
		{i64(0), "<5M"},
		{i64(4_999_999), "<5M"},
		{i64(5_000_000), "5–10M"},
		{i64(10_000_000), "10–20M"},
		{i64(22_000_000), "20–30M"},
		{i64(30_000_000), "30M+"},
		{i64(49_999_999), "30M+"},
		{i64(50_000_000), ""},
		{i64(60_000_000), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		l := &models.Listing{PriceEGP: tt.price}
		l.Derive()
		if l.PriceBucket != tt.want {
			t.Errorf("bucket for %s = %q; want %q", fmtOpt(tt.price), l.PriceBucket, tt.want)
		}
	}
}

func TestNormalizeOne(t *testing.T) {
	raw := &models.RawListing{
		ListingURL:      "https://www.propertyfinder.eg/en/plp/buy/townhouse-for-sale-north-coast-ras-al-hekma-june-7537139.html",
		PropertyType:    "Townhouse",
		PriceText:       "22,000,000 EGP",
		LocationText:    "June, Ras Al Hekma, North Coast",
		BedroomsText:    "3",
		BathroomsText:   "3",
		AreaText:        "202 sqm",
		DownPaymentText: "",
	}

	l := NormalizeOne(raw)
	if fmtOpt(l.PriceEGP) != "22000000" {
		t.Errorf("PriceEGP = %s", fmtOpt(l.PriceEGP))
	}
	if fmtOpt(l.AreaSqm) != "202" {
		t.Errorf("AreaSqm = %s", fmtOpt(l.AreaSqm))
	}
	if l.DownPaymentEGP != nil {
		t.Errorf("DownPaymentEGP should be absent, got %s", fmtOpt(l.DownPaymentEGP))
	}
	if l.Bedrooms != 3 || l.Bathrooms != 3 {
		t.Errorf("rooms = %d/%d; want 3/3", l.Bedrooms, l.Bathrooms)
	}
	if l.LocationMain != "June" {
		t.Errorf("LocationMain = %q", l.LocationMain)
	}
	if l.PricePerSqm == nil || *l.PricePerSqm != 22_000_000.0/202.0 {
		t.Errorf("PricePerSqm = %v", l.PricePerSqm)
	}
	if l.PriceBucket != "20–30M" {
		t.Errorf("PriceBucket = %q", l.PriceBucket)
	}
}

func TestNormalizeKeepsLengthAndOrder(t *testing.T) {
	n := NewNormalizer(newTestLogger(), 4)
	n.chunkSize = 3

	raw := make([]*models.RawListing, 50)
	for i := range raw {
		raw[i] = &models.RawListing{
			ListingURL: fmt.Sprintf("https://example.com/%d", i),
			PriceText:  fmt.Sprintf("%d EGP", i*1000),
		}
	}
	raw[7].PriceText = "Ask for price"

	out, stats := n.NormalizeWithStats(raw)
	if len(out) != len(raw) {
		t.Fatalf("len(out) = %d; want %d", len(out), len(raw))
	}
	for i, l := range out {
		if l.ListingURL != raw[i].ListingURL {
			t.Fatalf("row %d out of order: %s", i, l.ListingURL)
		}
	}
	if out[7].PriceEGP != nil {
		t.Errorf("row 7 price should be absent")
	}
	if stats.MissingPrice != 1 {
		t.Errorf("MissingPrice = %d; want 1", stats.MissingPrice)
	}
	if stats.MissingArea != 50 {
		t.Errorf("MissingArea = %d; want 50", stats.MissingArea)
	}
}

func TestNormalizeKeepsDuplicateURLs(t *testing.T) {
	n := NewNormalizer(newTestLogger(), 1)
	raw := []*models.RawListing{
		{ListingURL: "https://example.com/1", PriceText: "1"},
		{ListingURL: "https://example.com/1", PriceText: "2"},
	}

	out, stats := n.NormalizeWithStats(raw)
	if len(out) != 2 {
		t.Errorf("expected both rows kept, got %d", len(out))
	}
	if stats.DuplicateURLs != 1 {
		t.Errorf("DuplicateURLs = %d; want 1", stats.DuplicateURLs)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	out := NewNormalizer(newTestLogger(), 2).Normalize(nil)
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d", len(out))
	}
}
