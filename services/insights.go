package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"re-crawler/models"
	"re-crawler/scraper/olx"
	"re-crawler/utils"
)

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger.Named("insights"), out: os.Stdout}
}

// Generate summarizes the records a run produced. Ads are ranked by price
// per square metre since listing prices are not comparable across sizes.
func (s *InsightService) Generate(records []models.ListingRecord) *models.InsightReport {
	report := &models.InsightReport{
		ListingsBySource: make(map[models.AdSource]int),
		ListingsByCity:   make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalListings = len(records)
	report.MinSqmPrice = records[0].SqmPrice
	report.MaxSqmPrice = records[0].SqmPrice

	var totalPrice, totalSqm float64
	citySqm := make(map[string]float64)

	for i := range records {
		r := &records[i]
		report.ListingsBySource[r.AdSource]++
		report.ListingsByCity[r.City]++
		citySqm[r.City] += float64(r.SqmPrice)

		switch r.Private {
		case models.SellerPrivate:
			report.PrivateSellers++
		case models.SellerCompany:
			report.CompanySellers++
		default:
			report.UnknownSellers++
		}

		totalPrice += r.Price
		totalSqm += float64(r.SqmPrice)

		if report.MostExpensive == nil || r.SqmPrice > report.MostExpensive.SqmPrice {
			report.MostExpensive = r
		}
		if report.CheapestSqm == nil || r.SqmPrice < report.CheapestSqm.SqmPrice {
			report.CheapestSqm = r
		}
		if r.SqmPrice < report.MinSqmPrice {
			report.MinSqmPrice = r.SqmPrice
		}
		if r.SqmPrice > report.MaxSqmPrice {
			report.MaxSqmPrice = r.SqmPrice
		}
	}

	n := float64(len(records))
	report.AveragePrice = round2(totalPrice / n)
	report.AverageSqmPrice = round2(totalSqm / n)

	for city, count := range report.ListingsByCity {
		report.CityAverages = append(report.CityAverages, models.CityAverage{
			City:        city,
			Listings:    count,
			AvgSqmPrice: round2(citySqm[city] / float64(count)),
		})
	}
	sort.Slice(report.CityAverages, func(i, j int) bool {
		a, b := report.CityAverages[i], report.CityAverages[j]
		if a.AvgSqmPrice != b.AvgSqmPrice {
			return a.AvgSqmPrice > b.AvgSqmPrice
		}
		return a.City < b.City
	})

	s.logger.Debug("report over %d records in %d cities", report.TotalListings, len(report.ListingsByCity))
	return report
}

func (s *InsightService) Print(r *models.InsightReport, stats olx.Snapshot) {
	w := s.out
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 REAL ESTATE CRAWL INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Crawl
	fmt.Fprintf(w, "\033[1;33m  Crawl\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Results pages walked   : \033[1m%d\033[0m\n", stats.Pages)
	fmt.Fprintf(w, "  Entries seen           : %d (%d fresh, %d promoted)\n", stats.Entries, stats.Fresh, stats.Promoted)
	fmt.Fprintf(w, "  Ads dispatched         : %d\n", stats.Dispatched)
	fmt.Fprintf(w, "  Ads extracted          : \033[1m%d\033[0m\n", stats.Extracted)
	fmt.Fprintf(w, "  Faults                 : entry %d, extraction %d, pagination %d, fetch %d, sink %d\n",
		stats.EntryFaults, stats.ExtractionFaults, stats.PaginationFaults, stats.FetchFaults, stats.SinkFaults)
	fmt.Fprintln(w)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings         : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  olx.ro / storia.ro     : %d / %d\n", r.ListingsBySource[models.SourceOLX], r.ListingsBySource[models.SourceStoria])
	fmt.Fprintf(w, "  Private / company / NA : %d / %d / %d\n", r.PrivateSellers, r.CompanySellers, r.UnknownSellers)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings > 0 {
		fmt.Fprintf(w, "  Average price    : \033[1;32m€%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Average per m²   : \033[1;32m€%.2f\033[0m\n", r.AverageSqmPrice)
		fmt.Fprintf(w, "  Min / max per m² : \033[1;32m€%d / €%d\033[0m\n", r.MinSqmPrice, r.MaxSqmPrice)
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive per m²\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.URL, 50))
		fmt.Fprintf(w, "  City  : %s, %s m², %s rooms\n", r.MostExpensive.City, r.MostExpensive.Surface, r.MostExpensive.Rooms)
		fmt.Fprintf(w, "  Price : \033[1;31m€%.0f (€%d/m²)\033[0m\n", r.MostExpensive.Price, r.MostExpensive.SqmPrice)
		fmt.Fprintln(w)
	}

	// ── PRICE PER M² BY CITY ─────────────────────────────────────────────
	fmt.Fprintf(w, "\033[1;33m  Average Price per m² by City\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.CityAverages) == 0 {
		fmt.Fprintf(w, "  No city data\n")
	} else {
		for i, c := range r.CityAverages {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-24s \033[1;32m€%8.2f\033[0m (%d ads)\n",
				i+1, truncate(c.City, 22), c.AvgSqmPrice, c.Listings)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
