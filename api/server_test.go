package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-bi/models"
	"realestate-bi/utils"
)

func i64(v int64) *int64 { return &v }

func testListings() []*models.Listing {
	out := []*models.Listing{
		{ListingURL: "u1", LocationMain: "North Coast", PropertyType: "Townhouse", PriceEGP: i64(22_000_000), AreaSqm: i64(200), Bedrooms: 3},
		{ListingURL: "u2", LocationMain: "New Cairo", PropertyType: "Apartment", PriceEGP: i64(10_000_000), AreaSqm: i64(100), Bedrooms: 2},
		{ListingURL: "u3", LocationMain: "North Coast", PropertyType: "Chalet", PriceEGP: i64(18_000_000), Bedrooms: 2},
		{ListingURL: "u4", LocationMain: "New Cairo", PropertyType: "Apartment", Bedrooms: 1},
	}
	for _, l := range out {
		l.Derive()
	}
	return out
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"listings":4`)
}

func TestOptions(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())
	rec := get(t, s, "/api/options")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts models.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"New Cairo", "North Coast"}, opts.Locations)
	assert.Equal(t, int64(22_000_000), opts.MaxPrice)
	assert.Equal(t, 3, opts.MaxBedrooms)
}

func TestReportDefaultsAndLocationFilter(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())

	rec := get(t, s, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	var all models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	// u4 has no price and never passes the price range.
	assert.Equal(t, 3, all.Overview.TotalListings)

	rec = get(t, s, "/api/report?location=North+Coast")
	require.Equal(t, http.StatusOK, rec.Code)
	var nc models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nc))
	require.Len(t, nc.ByLocation, 1)
	assert.Equal(t, "North Coast", nc.ByLocation[0].Key)
	assert.Equal(t, 2, nc.ByLocation[0].Count)
	require.NotNil(t, nc.ByLocation[0].AvgPrice)
	assert.Equal(t, 20_000_000.0, *nc.ByLocation[0].AvgPrice)
}

func TestReportEmptySelection(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())
	rec := get(t, s, "/api/report?type=")
	require.Equal(t, http.StatusOK, rec.Code)

	var r models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 0, r.Overview.TotalListings)
	assert.Nil(t, r.Overview.AvgPrice)
	assert.Empty(t, r.ByPropertyType)
	assert.Len(t, r.PriceBuckets, 5)
}

func TestListingsFilteredByBedroomsAndPrice(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())
	rec := get(t, s, "/api/listings?bedroom_min=2&price_min=10000000&price_max=18000000")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].ListingURL)
	assert.Equal(t, "u3", got[1].ListingURL)
}

func TestBadQueryParams(t *testing.T) {
	s := NewServer(testListings(), 10, utils.NewNopLogger())
	for _, target := range []string{
		"/api/report?bedroom_min=many",
		"/api/report?price_min=5&price_max=1",
		"/api/listings?price_max=lots",
		"/api/report?preview=x",
	} {
		rec := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestReportPreviewLength(t *testing.T) {
	s := NewServer(testListings(), 1, utils.NewNopLogger())

	var r models.Report
	rec := get(t, s, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	require.Len(t, r.Preview, 1)
	assert.Equal(t, "u1", r.Preview[0].ListingURL)

	rec = get(t, s, "/api/report?preview=2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Len(t, r.Preview, 2)
}
