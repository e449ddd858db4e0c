package services

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"re-crawler/models"
	"re-crawler/scraper/olx"
	"re-crawler/utils"
)

func quietService() *InsightService {
	svc := NewInsightService(utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelInfo))
	svc.out = io.Discard
	return svc
}

func sampleRecords() []models.ListingRecord {
	return []models.ListingRecord{
		{URL: "https://www.olx.ro/d/oferta/a", Price: 100000, Surface: "50", SqmPrice: 2000, City: "cluj-napoca", AdSource: models.SourceOLX, Private: models.SellerPrivate},
		{URL: "https://www.storia.ro/ro/oferta/b", Price: 150000, Surface: "50", SqmPrice: 3000, City: "cluj-napoca", AdSource: models.SourceStoria},
		{URL: "https://www.olx.ro/d/oferta/c", Price: 60000, Surface: "60", SqmPrice: 1000, City: "iasi_39939", AdSource: models.SourceOLX, Private: models.SellerCompany},
		{URL: "https://www.olx.ro/d/oferta/d", Price: 90000, Surface: "60", SqmPrice: 1500, City: "brasov", AdSource: models.SourceOLX, Private: models.SellerPrivate},
	}
}

func TestInsightCounts(t *testing.T) {
	r := quietService().Generate(sampleRecords())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.ListingsBySource[models.SourceOLX] != 3 || r.ListingsBySource[models.SourceStoria] != 1 {
		t.Errorf("ListingsBySource: got %v", r.ListingsBySource)
	}
	if r.ListingsByCity["cluj-napoca"] != 2 {
		t.Errorf("cluj-napoca: got %d, want 2", r.ListingsByCity["cluj-napoca"])
	}
	if r.PrivateSellers != 2 || r.CompanySellers != 1 || r.UnknownSellers != 1 {
		t.Errorf("sellers: got %d/%d/%d", r.PrivateSellers, r.CompanySellers, r.UnknownSellers)
	}
}

func TestInsightPrices(t *testing.T) {
	r := quietService().Generate(sampleRecords())
	if r.AveragePrice != 100000 {
		t.Errorf("AveragePrice: got %.2f, want 100000", r.AveragePrice)
	}
	if r.AverageSqmPrice != 1875 {
		t.Errorf("AverageSqmPrice: got %.2f, want 1875", r.AverageSqmPrice)
	}
	if r.MinSqmPrice != 1000 || r.MaxSqmPrice != 3000 {
		t.Errorf("sqm range: got %d..%d", r.MinSqmPrice, r.MaxSqmPrice)
	}
}

func TestInsightExtremes(t *testing.T) {
	r := quietService().Generate(sampleRecords())
	if r.MostExpensive == nil || r.MostExpensive.URL != "https://www.storia.ro/ro/oferta/b" {
		t.Errorf("MostExpensive: got %+v", r.MostExpensive)
	}
	if r.CheapestSqm == nil || r.CheapestSqm.City != "iasi_39939" {
		t.Errorf("CheapestSqm: got %+v", r.CheapestSqm)
	}
}

func TestInsightMostExpensiveFirst(t *testing.T) {
	recs := []models.ListingRecord{
		{URL: "top", SqmPrice: 5000, City: "brasov"},
		{URL: "low", SqmPrice: 100, City: "brasov"},
	}
	r := quietService().Generate(recs)
	if r.MostExpensive == nil || r.MostExpensive.URL != "top" {
		t.Errorf("MostExpensive: got %+v", r.MostExpensive)
	}
}

func TestInsightCityAverages(t *testing.T) {
	r := quietService().Generate(sampleRecords())
	want := []models.CityAverage{
		{City: "cluj-napoca", Listings: 2, AvgSqmPrice: 2500},
		{City: "brasov", Listings: 1, AvgSqmPrice: 1500},
		{City: "iasi_39939", Listings: 1, AvgSqmPrice: 1000},
	}
	if len(r.CityAverages) != len(want) {
		t.Fatalf("CityAverages: got %d, want %d", len(r.CityAverages), len(want))
	}
	for i := range want {
		if r.CityAverages[i] != want[i] {
			t.Errorf("city %d: got %+v, want %+v", i, r.CityAverages[i], want[i])
		}
	}
}

func TestInsightEmpty(t *testing.T) {
	r := quietService().Generate(nil)
	if r.TotalListings != 0 || r.MostExpensive != nil {
		t.Errorf("empty report: got %+v", r)
	}
	if r.ListingsByCity == nil || r.ListingsBySource == nil {
		t.Error("maps should be initialized")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := quietService()
	var buf bytes.Buffer
	svc.out = &buf

	svc.Print(svc.Generate(sampleRecords()), olx.Snapshot{Pages: 3, Entries: 120, Fresh: 40, Extracted: 4})

	out := buf.String()
	for _, want := range []string{"Results pages walked", "cluj-napoca", "storia.ro/ro/oferta/b"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.234, 1.23},
		{1.236, 1.24},
		{100.0, 100.0},
	}
	for _, c := range cases {
		if got := round2(c.in); got != c.want {
			t.Errorf("round2(%v): got %v, want %v", c.in, got, c.want)
		}
	}
}
