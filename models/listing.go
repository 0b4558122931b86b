package models

// UnknownCategory stands in for a missing location or property type so that
// absent values group together under one explicit key.
const UnknownCategory = "(unknown)"

// RawListing holds one scraped row exactly as exported. Every field is text;
// an empty string means the cell was absent.
type RawListing struct {
	Line            int
	ListingURL      string
	Title           string
	PropertyType    string
	PriceText       string
	AreaText        string
	DownPaymentText string
	BedroomsText    string
	BathroomsText   string
	LocationText    string
}

// Listing is the canonical, typed record produced by the normalizer.
// Nil numeric pointers mean the value was absent in the source.
type Listing struct {
	ListingURL     string   `json:"listing_url"`
	Title          string   `json:"title,omitempty"`
	Location       string   `json:"location,omitempty"`
	LocationMain   string   `json:"location_main"`
	PropertyType   string   `json:"property_type"`
	PriceEGP       *int64   `json:"price_egp"`
	AreaSqm        *int64   `json:"area_sqm"`
	DownPaymentEGP *int64   `json:"down_payment_egp"`
	Bedrooms       int      `json:"bedrooms"`
	Bathrooms      int      `json:"bathrooms"`
	PricePerSqm    *float64 `json:"price_per_sqm"`
	PriceBucket    string   `json:"price_bucket,omitempty"`
}

// Derive recomputes the fields that depend on the numeric columns.
func (l *Listing) Derive() {
	l.PricePerSqm = PricePerSqm(l.PriceEGP, l.AreaSqm)
	l.PriceBucket = ""
	if b, ok := BucketFor(l.PriceEGP); ok {
		l.PriceBucket = b.Label
	}
}

// PricePerSqm divides price by area when both are present and positive.
func PricePerSqm(price, area *int64) *float64 {
	if price == nil || area == nil || *price <= 0 || *area <= 0 {
		return nil
	}
	v := float64(*price) / float64(*area)
	return &v
}
