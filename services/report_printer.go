package services

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realestate-bi/models"
)

// ReportPrinter renders a Report as an ANSI text summary or JSON.
type ReportPrinter struct {
	w io.Writer
	p *message.Printer
}

func NewReportPrinter(w io.Writer) *ReportPrinter {
	return &ReportPrinter{w: w, p: message.NewPrinter(language.English)}
}

// JSON writes the report as indented JSON.
func (rp *ReportPrinter) JSON(r *models.Report) error {
	enc := json.NewEncoder(rp.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// Print writes the text report.
func (rp *ReportPrinter) Print(r *models.Report) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)
	w := rp.w

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏡 REAL ESTATE LISTINGS REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Market Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Avg. price       : \033[1;32m%s\033[0m\n", FormatMillions(r.Overview.AvgPrice))
	fmt.Fprintf(w, "  Avg. area        : \033[1m%s\033[0m\n", rp.withUnit(r.Overview.AvgArea, "sqm"))
	fmt.Fprintf(w, "  Avg. price / sqm : \033[1m%s\033[0m\n", rp.withUnit(r.Overview.AvgPricePerSqm, "EGP/sqm"))
	fmt.Fprintf(w, "  Total listings   : \033[1m%d\033[0m\n\n", r.Overview.TotalListings)

	rp.groupTable("Average Price by Location", "Location", r.ByLocation)

	fmt.Fprintf(w, "\033[1;33m  Listings Count per Location\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.LocationCounts) == 0 {
		fmt.Fprintf(w, "  No location data\n")
	}
	for _, lc := range r.LocationCounts {
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(lc.Key, 28), bar(lc.Count), lc.Count)
	}
	fmt.Fprintln(w)

	rp.groupTable("Avg. Price per sqm by Property Type", "Property Type", r.ByPropertyType)

	fmt.Fprintf(w, "\033[1;33m  Listings by Bedroom Count\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Bedrooms) == 0 {
		fmt.Fprintf(w, "  No listings\n")
	}
	for _, b := range r.Bedrooms {
		fmt.Fprintf(w, "  %-6d %s (%d)\n", b.Bedrooms, bar(b.Count), b.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Listings by Price Range\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, b := range r.PriceBuckets {
		fmt.Fprintf(w, "  %-8s %s (%d)\n", b.Label, bar(b.Count), b.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Preview Listings\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Preview) == 0 {
		fmt.Fprintf(w, "  No listings match the current filters\n")
	}
	for i, l := range r.Preview {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-24s %-14s %8s %10s %d bd / %d ba\n",
			i+1, truncate(l.LocationMain, 24), truncate(l.PropertyType, 14),
			FormatMillions(intPtrToFloat(l.PriceEGP)), rp.withUnit(intPtrToFloat(l.AreaSqm), "sqm"),
			l.Bedrooms, l.Bathrooms)
		if l.ListingURL != "" {
			fmt.Fprintf(w, "     %s\n", l.ListingURL)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func (rp *ReportPrinter) groupTable(title, keyHeader string, groups []models.GroupSummary) {
	w := rp.w
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 72))
	if len(groups) == 0 {
		fmt.Fprintf(w, "  No data\n\n")
		return
	}
	fmt.Fprintf(w, "  %-28s %12s %18s %8s\n", keyHeader, "Avg Price", "Price/sqm (EGP)", "Listings")
	for _, g := range groups {
		fmt.Fprintf(w, "  %-28s %12s %18s %8d\n",
			truncate(g.Key, 28), FormatMillions(g.AvgPrice), rp.whole(g.AvgPricePerSqm), g.Count)
	}
	fmt.Fprintln(w)
}

// whole formats v as a thousands-separated integer, "-" when absent.
func (rp *ReportPrinter) whole(v *float64) string {
	if v == nil {
		return "-"
	}
	return rp.p.Sprintf("%d", int64(*v))
}

func (rp *ReportPrinter) withUnit(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return rp.whole(v) + " " + unit
}

// FormatMillions renders an EGP amount as "22.0M", or "-" when absent.
func FormatMillions(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fM", *v/1_000_000)
}

func intPtrToFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func bar(n int) string {
	const maxWidth = 40
	return strings.Repeat("█", min(n, maxWidth))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
