package olx

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"re-crawler/utils"
)

const seedURL = "https://www.olx.ro/imobiliare/apartamente-garsoniere-de-vanzare/cluj-napoca/?search%5Border%5D=created_at%3Adesc&currency=EUR"

func quietLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard, io.Discard, utils.LevelDebug)
}

func fixedClock(day int) func() time.Time {
	return func() time.Time { return time.Date(2026, time.October, day, 9, 30, 0, 0, time.UTC) }
}

func parseHTML(t *testing.T, src string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc.Selection
}

// entry renders one results-page offer. An empty href leaves the link out,
// the way promoted offers appear; an empty label leaves the clock out.
func entry(href, label string) string {
	var b strings.Builder
	b.WriteString(`<div class="offer-wrapper"><table><tr><td>`)
	if href != "" {
		b.WriteString(`<a class="detailsLink" href="` + href + `"><strong>Apartament</strong></a>`)
	} else {
		b.WriteString(`<a class="marginright5" href="#"><strong>Apartament</strong></a>`)
	}
	b.WriteString(`</td></tr><tr><td><p class="lheight16">`)
	b.WriteString(`<small><span><i data-icon="location-filled"></i>Cluj-Napoca</span></small>`)
	if label != "" {
		b.WriteString(`<small><span><i data-icon="clock"></i>` + label + `</span></small>`)
	}
	b.WriteString(`</p></td></tr></table></div>`)
	return b.String()
}

func resultsPage(entries ...string) string {
	return `<html><body><div id="offers_table">` + strings.Join(entries, "") + `</div></body></html>`
}

const olxAdPage = `<html><body>
<div data-testid="ad-price-container"><h3>100 000 €<span>Pretul e negociabil</span></h3></div>
<ul>
  <li><p>Persoana fizica</p></li>
  <li><p>Pret: 2 222 €/m²</p></li>
  <li><p>Suprafata utila: 45</p></li>
  <li><p>Numarul de camere: 2 camere</p></li>
  <li><p>Compartimentare: Decomandat</p></li>
  <li><p>Etaj: 3</p></li>
  <li><p>An constructie: Dupa 2000</p></li>
</ul>
</body></html>`

const olxCompanyAdPage = `<html><body>
<div data-testid="ad-price-container"><h3>72 500 €</h3></div>
<ul>
  <li><p>Firma</p></li>
  <li><p>Suprafata utila: 50</p></li>
</ul>
</body></html>`

const storiaAdPage = `<html><body>
<header><strong data-cy="adPageHeaderPrice">85 000 €</strong></header>
<section>
  <div class="row"><div title="Suprafata construita (m²)">Suprafata construita (m²):</div><div>54,5 m²</div></div>
  <div class="row"><div title="Numarul de camere">Numarul de camere:</div><div>2</div></div>
  <div class="row"><div title="Anul constructiei">Anul constructiei:</div><div>1980</div></div>
</section>
</body></html>`
