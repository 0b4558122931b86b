package models

// GroupKey names the categorical dimension used to partition listings.
type GroupKey string

const (
	GroupByLocation     GroupKey = "location_main"
	GroupByPropertyType GroupKey = "property_type"
)

// GroupSummary holds the statistics of one group. Nil means no valid samples.
type GroupSummary struct {
	Key            string   `json:"key"`
	AvgPrice       *float64 `json:"avg_price"`
	AvgArea        *float64 `json:"avg_area"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm"`
	Count          int      `json:"count"`
}

// Overview is the headline summary of a filtered subset.
type Overview struct {
	AvgPrice       *float64 `json:"avg_price"`
	AvgArea        *float64 `json:"avg_area"`
	AvgPricePerSqm *float64 `json:"avg_price_per_sqm"`
	TotalListings  int      `json:"total_listings"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type BedroomCount struct {
	Bedrooms int `json:"bedrooms"`
	Count    int `json:"count"`
}

type BucketCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Options is the value domain a caller can filter over.
type Options struct {
	Locations     []string `json:"locations"`
	PropertyTypes []string `json:"property_types"`
	MaxPrice      int64    `json:"max_price"`
	MaxBedrooms   int      `json:"max_bedrooms"`
}

// Report bundles every summary computed over one filtered subset.
type Report struct {
	Overview       Overview       `json:"overview"`
	ByLocation     []GroupSummary `json:"by_location"`
	LocationCounts []KeyCount     `json:"location_counts"`
	ByPropertyType []GroupSummary `json:"by_property_type"`
	Bedrooms       []BedroomCount `json:"bedrooms"`
	PriceBuckets   []BucketCount  `json:"price_buckets"`
	Preview        []*Listing     `json:"preview"`
}
