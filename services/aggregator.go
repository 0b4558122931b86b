package services

import (
	"sort"

	"realestate-bi/models"
	"realestate-bi/utils"
)

// Aggregator filters canonical listings and computes grouped summaries.
// It never mutates the listings it is given.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Build runs the filter and every summary over the resulting subset.
func (a *Aggregator) Build(listings []*models.Listing, f Filter, previewRows int) *models.Report {
	subset := a.Filter(listings, f)
	a.logger.Debug("[aggregator] Filter kept %d of %d listings", len(subset), len(listings))

	return &models.Report{
		Overview:       a.Overview(subset),
		ByLocation:     a.GroupByLocation(subset),
		LocationCounts: a.LocationCounts(subset),
		ByPropertyType: a.GroupByPropertyType(subset),
		Bedrooms:       a.BedroomDistribution(subset),
		PriceBuckets:   a.PriceHistogram(subset),
		Preview:        Preview(subset, previewRows),
	}
}

// Filter returns the listings matching every predicate of f, in input order.
func (a *Aggregator) Filter(listings []*models.Listing, f Filter) []*models.Listing {
	locations := toSet(f.Locations)
	types := toSet(f.PropertyTypes)

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := locations[l.LocationMain]; !ok {
			continue
		}
		if _, ok := types[l.PropertyType]; !ok {
			continue
		}
		if l.Bedrooms < f.BedroomMin {
			continue
		}
		if l.PriceEGP == nil || *l.PriceEGP < f.PriceMin || *l.PriceEGP > f.PriceMax {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Aggregate groups listings by key. Groups come back sorted by key; callers
// wanting a ranking use GroupByLocation or GroupByPropertyType.
func (a *Aggregator) Aggregate(listings []*models.Listing, key models.GroupKey) []models.GroupSummary {
	type acc struct {
		price, area, ppsqm mean
		count              int
	}
	groups := make(map[string]*acc)
	var order []string

	for _, l := range listings {
		k := groupValue(l, key)
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
			order = append(order, k)
		}
		g.count++
		g.price.addInt(l.PriceEGP)
		g.area.addInt(l.AreaSqm)
		g.ppsqm.addFloat(l.PricePerSqm)
	}

	sort.Strings(order)
	out := make([]models.GroupSummary, 0, len(order))
	for _, k := range order {
		g := groups[k]
		out = append(out, models.GroupSummary{
			Key:            k,
			AvgPrice:       g.price.value(),
			AvgArea:        g.area.value(),
			AvgPricePerSqm: g.ppsqm.value(),
			Count:          g.count,
		})
	}
	return out
}

// GroupByLocation summarises per main location, highest average price first.
func (a *Aggregator) GroupByLocation(listings []*models.Listing) []models.GroupSummary {
	out := a.Aggregate(listings, models.GroupByLocation)
	sortDescending(out, func(g models.GroupSummary) *float64 { return g.AvgPrice })
	return out
}

// GroupByPropertyType summarises per property type, highest average price/sqm first.
func (a *Aggregator) GroupByPropertyType(listings []*models.Listing) []models.GroupSummary {
	out := a.Aggregate(listings, models.GroupByPropertyType)
	sortDescending(out, func(g models.GroupSummary) *float64 { return g.AvgPricePerSqm })
	return out
}

// Overview computes the headline means and the total count of listings.
func (a *Aggregator) Overview(listings []*models.Listing) models.Overview {
	var price, area, ppsqm mean
	for _, l := range listings {
		price.addInt(l.PriceEGP)
		area.addInt(l.AreaSqm)
		ppsqm.addFloat(l.PricePerSqm)
	}
	return models.Overview{
		AvgPrice:       price.value(),
		AvgArea:        area.value(),
		AvgPricePerSqm: ppsqm.value(),
		TotalListings:  len(listings),
	}
}

// LocationCounts counts listings per main location, most listings first.
func (a *Aggregator) LocationCounts(listings []*models.Listing) []models.KeyCount {
	counts := make(map[string]int)
	for _, l := range listings {
		counts[l.LocationMain]++
	}

	out := make([]models.KeyCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, models.KeyCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// BedroomDistribution counts listings per bedroom value, ascending.
func (a *Aggregator) BedroomDistribution(listings []*models.Listing) []models.BedroomCount {
	counts := make(map[int]int)
	for _, l := range listings {
		counts[l.Bedrooms]++
	}

	out := make([]models.BedroomCount, 0, len(counts))
	for b, c := range counts {
		out = append(out, models.BedroomCount{Bedrooms: b, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bedrooms < out[j].Bedrooms })
	return out
}

// PriceHistogram counts listings per price bucket. Every bucket is present,
// ordered by lower edge; unbucketed listings are not counted.
func (a *Aggregator) PriceHistogram(listings []*models.Listing) []models.BucketCount {
	out := make([]models.BucketCount, len(models.PriceBuckets))
	for i, b := range models.PriceBuckets {
		out[i].Label = b.Label
	}
	for _, l := range listings {
		if i := models.BucketIndex(l.PriceBucket); i >= 0 {
			out[i].Count++
		}
	}
	return out
}

// Options collects the filterable domain of listings: sorted distinct
// locations and property types, the highest price and bedroom count.
func Options(listings []*models.Listing) models.Options {
	locs := make(map[string]struct{})
	types := make(map[string]struct{})
	opts := models.Options{}

	for _, l := range listings {
		locs[l.LocationMain] = struct{}{}
		types[l.PropertyType] = struct{}{}
		if l.PriceEGP != nil && *l.PriceEGP > opts.MaxPrice {
			opts.MaxPrice = *l.PriceEGP
		}
		if l.Bedrooms > opts.MaxBedrooms {
			opts.MaxBedrooms = l.Bedrooms
		}
	}
	opts.Locations = sortedKeys(locs)
	opts.PropertyTypes = sortedKeys(types)
	return opts
}

// Preview returns at most n listings from the head of the subset.
func Preview(listings []*models.Listing, n int) []*models.Listing {
	if n < 0 {
		n = 0
	}
	if len(listings) > n {
		return listings[:n]
	}
	return listings
}

func groupValue(l *models.Listing, key models.GroupKey) string {
	if key == models.GroupByPropertyType {
		return l.PropertyType
	}
	return l.LocationMain
}

// sortDescending orders groups by metric, largest first. Groups without a
// value sink to the end; ties keep key order.
func sortDescending(groups []models.GroupSummary, metric func(models.GroupSummary) *float64) {
	sort.SliceStable(groups, func(i, j int) bool {
		vi, vj := metric(groups[i]), metric(groups[j])
		switch {
		case vi == nil:
			return false
		case vj == nil:
			return true
		default:
			return *vi > *vj
		}
	})
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) addInt(v *int64) {
	if v != nil {
		m.sum += float64(*v)
		m.n++
	}
}

func (m *mean) addFloat(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

// value is nil when no samples were added.
func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
