package models

// PriceBucket is a closed-open price range [Lower, Upper) in EGP.
type PriceBucket struct {
	Label string
	Lower int64
	Upper int64
}

// PriceBuckets lists the histogram bins in ascending order of lower edge.
var PriceBuckets = []PriceBucket{
	{Label: "<5M", Lower: 0, Upper: 5_000_000},
	{Label: "5–10M", Lower: 5_000_000, Upper: 10_000_000},
	{Label: "10–20M", Lower: 10_000_000, Upper: 20_000_000},
	{Label: "20–30M", Lower: 20_000_000, Upper: 30_000_000},
	{Label: "30M+", Lower: 30_000_000, Upper: 50_000_000},
}

// BucketFor returns the bucket holding price. Prices outside [0, 50M) and
// absent prices have no bucket.
func BucketFor(price *int64) (PriceBucket, bool) {
	if price == nil {
		return PriceBucket{}, false
	}
	for _, b := range PriceBuckets {
		if *price >= b.Lower && *price < b.Upper {
			return b, true
		}
	}
	return PriceBucket{}, false
}

// BucketIndex returns the position of label in PriceBuckets, or -1.
func BucketIndex(label string) int {
	for i, b := range PriceBuckets {
		if b.Label == label {
			return i
		}
	}
	return -1
}
