package olx

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"re-crawler/models"
	"re-crawler/utils"
)

const (
	olxPriceSelector    = `div[data-testid="ad-price-container"] > h3`
	olxInfoSelector     = "ul > li > p"
	storiaPriceSelector = `strong[data-cy="adPageHeaderPrice"]`
	labelSeparator      = ": "
	listedLayout        = "2006-01-02"
)

type field int

const (
	fieldSurface field = iota
	fieldRooms
	fieldFloor
	fieldBuilt
)

// olxLabels maps the "Label: value" lines of an olx ad to record fields.
var olxLabels = map[string]field{
	"Suprafata utila":   fieldSurface,
	"Numarul de camere": fieldRooms,
	"Etaj":              fieldFloor,
	"An constructie":    fieldBuilt,
}

// olxSellerMarkers are the unlabeled lines telling who posted the ad.
var olxSellerMarkers = map[string]models.Seller{
	"Persoana fizica": models.SellerPrivate,
	"Firma":           models.SellerCompany,
}

// storiaTitles maps record fields to the title attribute storia puts on the
// div preceding each value.
var storiaTitles = []struct {
	field field
	title string
}{
	{fieldSurface, "Suprafata construita (m²)"},
	{fieldRooms, "Numarul de camere"},
	{fieldFloor, "Etaj"},
	{fieldBuilt, "Anul constructiei"},
}

// rawListing holds the untouched texts pulled out of a detail page.
type rawListing struct {
	price  string
	fields map[field]string
	seller models.Seller
}

func (r rawListing) get(f field) string {
	if v, ok := r.fields[f]; ok && v != "" {
		return v
	}
	return models.NA
}

// Extractor turns ad detail pages into ListingRecords.
type Extractor struct {
	logger *utils.Logger
	now    func() time.Time
}

// NewExtractor creates an Extractor. now supplies the crawl date stamped as
// "listed"; pass time.Now outside tests.
func NewExtractor(logger *utils.Logger, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{logger: logger.Named("extractor"), now: now}
}

// Extract reads one detail page. The task context is applied last, so its
// city, source and promo count replace whatever the page produced.
// Unparseable price or surface yields an *ExtractionError.
func (e *Extractor) Extract(pageURL string, doc *goquery.Selection, source models.AdSource, tc models.TaskContext) (models.ListingRecord, error) {
	var raw rawListing
	switch source {
	case models.SourceOLX:
		raw = extractOLX(doc)
	case models.SourceStoria:
		raw = extractStoria(doc)
	default:
		return models.ListingRecord{}, &ExtractionError{URL: pageURL, Field: "ad_source", Err: fmt.Errorf("unknown source %q", source)}
	}

	rec, err := e.normalize(raw)
	if err != nil {
		var xe *ExtractionError
		if errors.As(err, &xe) {
			xe.URL = pageURL
		}
		return models.ListingRecord{}, err
	}

	rec.URL = pageURL
	rec.AdSource = source
	rec.Listed = e.now().Format(listedLayout)
	tc.Apply(&rec)
	return rec, nil
}

func (e *Extractor) normalize(raw rawListing) (models.ListingRecord, error) {
	price, err := ParsePrice(raw.price)
	if err != nil {
		return models.ListingRecord{}, err
	}
	surface, area, err := ParseSurface(raw.fields[fieldSurface])
	if err != nil {
		return models.ListingRecord{}, err
	}
	sqm, err := sqmPrice(price, area)
	if err != nil {
		return models.ListingRecord{}, err
	}

	return models.ListingRecord{
		Price:    price,
		Surface:  surface,
		Rooms:    raw.get(fieldRooms),
		Floor:    raw.get(fieldFloor),
		Built:    raw.get(fieldBuilt),
		Private:  raw.seller,
		SqmPrice: sqm,
	}, nil
}

// extractOLX reads the price heading and the flat list of info lines.
// Lines with unknown labels are ignored.
func extractOLX(doc *goquery.Selection) rawListing {
	raw := rawListing{fields: make(map[field]string)}
	raw.price, _ = firstText(doc.Find(olxPriceSelector))

	for _, line := range textNodes(doc.Find(olxInfoSelector)) {
		label, value, labeled := strings.Cut(line, labelSeparator)
		if !labeled {
			if seller, ok := olxSellerMarkers[line]; ok {
				raw.seller = seller
			}
			continue
		}
		if f, ok := olxLabels[label]; ok {
			raw.fields[f] = strings.TrimSpace(value)
		}
	}
	return raw
}

// extractStoria looks every field up by its title div. Storia does not show
// the seller type.
func extractStoria(doc *goquery.Selection) rawListing {
	raw := rawListing{fields: make(map[field]string), seller: models.SellerUnknown}
	raw.price, _ = firstText(doc.Find(storiaPriceSelector))

	for _, st := range storiaTitles {
		sel := doc.Find(fmt.Sprintf(`div[title=%q] ~ div`, st.title))
		if v, ok := firstText(sel); ok {
			raw.fields[st.field] = v
		}
	}
	return raw
}
