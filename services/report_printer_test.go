package services

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-bi/models"
)

func TestFormatMillions(t *testing.T) {
	v := 22_000_000.0
	assert.Equal(t, "22.0M", FormatMillions(&v))
	assert.Equal(t, "-", FormatMillions(nil))
}

func TestPrintReport(t *testing.T) {
	a := NewAggregator(newTestLogger())
	listings := sampleListings()
	r := a.Build(listings, DefaultFilter(listings), 3)

	var buf bytes.Buffer
	NewReportPrinter(&buf).Print(r)
	out := buf.String()

	assert.Contains(t, out, "Market Overview")
	assert.Contains(t, out, "13.5M")
	assert.Contains(t, out, "North Coast")
	// Thousands separators on price per sqm.
	assert.Contains(t, out, "200,000")
	assert.Contains(t, out, "20–30M")
}

func TestPrintEmptyReport(t *testing.T) {
	a := NewAggregator(newTestLogger())
	r := a.Build(nil, Filter{}, 5)

	var buf bytes.Buffer
	NewReportPrinter(&buf).Print(r)
	assert.Contains(t, buf.String(), "No listings match the current filters")
	assert.Contains(t, buf.String(), "Avg. price       : \033[1;32m-")
}

func TestReportJSONKeepsAbsentMeans(t *testing.T) {
	a := NewAggregator(newTestLogger())
	r := a.Build(nil, Filter{}, 5)

	var buf bytes.Buffer
	require.NoError(t, NewReportPrinter(&buf).JSON(r))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	overview := decoded["overview"].(map[string]any)
	assert.Nil(t, overview["avg_price"])
	assert.Equal(t, float64(0), overview["total_listings"])
	assert.Len(t, decoded["price_buckets"], len(models.PriceBuckets))
}
