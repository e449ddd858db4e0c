package olx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"re-crawler/config"
	"re-crawler/models"
	"re-crawler/storage"
)

const testSearchPath = "/imobiliare/apartamente-garsoniere-de-vanzare/cluj-napoca/"

// fakeSite serves a two page result list and the ads it links to. Ads listed
// in flaky fail with 500 the given number of times before succeeding.
type fakeSite struct {
	mu    sync.Mutex
	hits  map[string]int
	flaky map[string]int
	ads   map[string]string
	pages map[string]string
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.Path == testSearchPath {
		key = "page=" + r.URL.Query().Get("page")
	}

	s.mu.Lock()
	s.hits[key]++
	n := s.hits[key]
	s.mu.Unlock()

	if fails, ok := s.flaky[key]; ok && n <= fails {
		http.Error(w, "upstream error", http.StatusInternalServerError)
		return
	}
	body, ok := s.pages[key]
	if !ok {
		body, ok = s.ads[key]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(body))
}

func (s *fakeSite) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func newFakeSite(flaky map[string]int) *fakeSite {
	return &fakeSite{
		hits:  make(map[string]int),
		flaky: flaky,
		pages: map[string]string{
			"page=": resultsPage(
				entry("/d/oferta/a.html", "Azi 12:00"),
				entry("", "Azi 11:50"),
				entry("/d/oferta/b.html", "Ieri 19:00"),
			),
			"page=2": resultsPage(
				entry("/d/oferta/old.html", "2 oct."),
			),
		},
		ads: map[string]string{
			"/d/oferta/a.html": olxAdPage,
			"/d/oferta/b.html": olxCompanyAdPage,
		},
	}
}

func newTestCollyCrawler(t *testing.T, maxRetries int, sink storage.RecordSink) *CollyCrawler {
	t.Helper()
	cfg := &config.Config{MaxConcurrency: 2, MaxRetries: maxRetries, UserAgent: "test-agent"}
	cc, err := NewCollyCrawler(cfg, NewPipeline(quietLogger(), sink, fixedClock(19)), quietLogger())
	if err != nil {
		t.Fatalf("NewCollyCrawler: %v", err)
	}
	// the test server listens on 127.0.0.1
	cc.collector.AllowedDomains = nil
	return cc
}

func testSeed(srv *httptest.Server) []config.Seed {
	return []config.Seed{{
		City:     "cluj-napoca",
		Category: "apartamente-garsoniere-de-vanzare",
		URL:      srv.URL + testSearchPath + "?search%5Border%5D=created_at%3Adesc&currency=EUR",
	}}
}

func TestCollyCrawlerWalksAndRetries(t *testing.T) {
	site := newFakeSite(map[string]int{"/d/oferta/b.html": 1})
	srv := httptest.NewServer(site)
	defer srv.Close()

	sink := storage.NewCollector()
	cc := newTestCollyCrawler(t, 2, sink)

	if err := cc.Crawl(context.Background(), testSeed(srv)); err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	got := cc.Stats()
	want := Snapshot{Pages: 2, Entries: 4, Fresh: 3, Promoted: 1, Dispatched: 2, Extracted: 2}
	if got != want {
		t.Errorf("stats:\n got %+v\nwant %+v", got, want)
	}

	recs := sink.Records()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	sellers := map[models.Seller]bool{}
	for _, r := range recs {
		if r.City != "cluj-napoca" || r.PromoCount != 1 || r.AdSource != models.SourceOLX {
			t.Errorf("%s: city=%q promo=%d source=%s", r.URL, r.City, r.PromoCount, r.AdSource)
		}
		sellers[r.Private] = true
	}
	if !sellers[models.SellerPrivate] || !sellers[models.SellerCompany] {
		t.Errorf("expected one private and one company ad, got %v", sellers)
	}

	if n := site.hitCount("/d/oferta/b.html"); n != 2 {
		t.Errorf("flaky ad fetched %d times, want 2", n)
	}
	if n := site.hitCount("/d/oferta/old.html"); n != 0 {
		t.Errorf("stale ad fetched %d times", n)
	}
	if n := site.hitCount("page=3"); n != 0 {
		t.Error("crawl went past the stale page")
	}
}

func TestCollyCrawlerGivesUpAfterMaxRetries(t *testing.T) {
	site := newFakeSite(map[string]int{"/d/oferta/b.html": 100})
	srv := httptest.NewServer(site)
	defer srv.Close()

	sink := storage.NewCollector()
	cc := newTestCollyCrawler(t, 1, sink)

	if err := cc.Crawl(context.Background(), testSeed(srv)); err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if n := site.hitCount("/d/oferta/b.html"); n != 2 {
		t.Errorf("failing ad fetched %d times, want 2", n)
	}
	got := cc.Stats()
	if got.FetchFaults != 1 || got.Extracted != 1 {
		t.Errorf("stats: got %+v, want 1 fetch fault and 1 extracted", got)
	}
	if len(sink.Records()) != 1 {
		t.Errorf("got %d records, want 1", len(sink.Records()))
	}
}

func TestCollyCrawlerCancelledBeforeStart(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cc := newTestCollyCrawler(t, 2, storage.NewCollector())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cc.Crawl(ctx, testSeed(srv))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server got %d requests after cancellation", n)
	}
	if got := cc.Stats(); got != (Snapshot{}) {
		t.Errorf("stats: got %+v, want none", got)
	}
}
