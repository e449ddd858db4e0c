package models

// CityAverage is the mean price per square metre of one city's ads.
type CityAverage struct {
	City        string
	Listings    int
	AvgSqmPrice float64
}

// InsightReport summarizes the records written during one run.
type InsightReport struct {
	TotalListings    int
	ListingsBySource map[AdSource]int
	ListingsByCity   map[string]int

	AveragePrice    float64
	AverageSqmPrice float64
	MinSqmPrice     int64
	MaxSqmPrice     int64

	PrivateSellers int
	CompanySellers int
	UnknownSellers int

	MostExpensive *ListingRecord
	CheapestSqm   *ListingRecord
	CityAverages  []CityAverage
}
