package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NA marks a field the source site does not expose.
const NA = "NA"

// AdSource identifies which site hosts an ad's detail page.
type AdSource string

const (
	SourceOLX    AdSource = "olx"
	SourceStoria AdSource = "storia"
)

// ParseAdSource accepts the two known site names.
func ParseAdSource(s string) (AdSource, error) {
	switch AdSource(s) {
	case SourceOLX, SourceStoria:
		return AdSource(s), nil
	}
	return "", fmt.Errorf("unknown ad source %q", s)
}

// Seller tells whether an ad was posted by an individual, a company, or
// whether the site does not say. It serializes as true, false or "NA".
type Seller int

const (
	SellerUnknown Seller = iota
	SellerPrivate
	SellerCompany
)

// String renders the value used in flat outputs such as CSV.
func (s Seller) String() string {
	switch s {
	case SellerPrivate:
		return "true"
	case SellerCompany:
		return "false"
	default:
		return NA
	}
}

// Value returns the dynamic form stored by document sinks: a bool, or NA.
func (s Seller) Value() any {
	switch s {
	case SellerPrivate:
		return true
	case SellerCompany:
		return false
	default:
		return NA
	}
}

// MarshalJSON writes true, false or "NA".
func (s Seller) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value())
}

// ListingRecord is one normalized ad, produced once per accepted entry.
type ListingRecord struct {
	URL        string   `json:"url"`
	Price      float64  `json:"price"`
	Surface    string   `json:"surface"`
	Rooms      string   `json:"rooms"`
	Floor      string   `json:"floor"`
	Built      string   `json:"built"`
	Private    Seller   `json:"private"`
	SqmPrice   int64    `json:"sqm_price"`
	Listed     string   `json:"listed"`
	City       string   `json:"city"`
	AdSource   AdSource `json:"ad_source"`
	PromoCount int      `json:"promo_count"`
}

// Columns is the flat field order shared by tabular sinks.
var Columns = []string{
	"url", "price", "surface", "rooms", "floor", "built", "private",
	"sqm_price", "listed", "city", "ad_source", "promo_count",
}

// Row renders the record in Columns order.
func (r ListingRecord) Row() []string {
	return []string{
		r.URL,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		r.Surface,
		r.Rooms,
		r.Floor,
		r.Built,
		r.Private.String(),
		strconv.FormatInt(r.SqmPrice, 10),
		r.Listed,
		r.City,
		string(r.AdSource),
		strconv.Itoa(r.PromoCount),
	}
}

// Fields returns the record as a flat mapping keyed like Columns.
func (r ListingRecord) Fields() map[string]any {
	return map[string]any{
		"url":         r.URL,
		"price":       r.Price,
		"surface":     r.Surface,
		"rooms":       r.Rooms,
		"floor":       r.Floor,
		"built":       r.Built,
		"private":     r.Private.Value(),
		"sqm_price":   r.SqmPrice,
		"listed":      r.Listed,
		"city":        r.City,
		"ad_source":   string(r.AdSource),
		"promo_count": r.PromoCount,
	}
}

// TaskContext is what the walker attaches to an extraction task.
// Its values always override anything the extractor produced.
type TaskContext struct {
	City       string
	AdSource   AdSource
	PromoCount int
}

// Apply stamps the context onto r, replacing same-named values.
func (c TaskContext) Apply(r *ListingRecord) {
	r.City = c.City
	if c.AdSource != "" {
		r.AdSource = c.AdSource
	}
	r.PromoCount = c.PromoCount
}

// ExtractionTask asks for one ad detail page to be fetched and extracted.
type ExtractionTask struct {
	URL     string
	Context TaskContext
}

// NextPageTask asks for the following results page of the same city.
type NextPageTask struct {
	URL  string
	Page int
}

// WalkResult is everything the walker decided about one results page.
type WalkResult struct {
	City        string
	Tasks       []ExtractionTask
	Next        *NextPageTask
	Entries     int
	Fresh       int
	Promoted    int
	EntryFaults int
}
