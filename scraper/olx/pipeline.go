package olx

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"re-crawler/config"
	"re-crawler/models"
	"re-crawler/storage"
	"re-crawler/utils"
)

// Crawler fetches seed pages and everything the walker asks for.
type Crawler interface {
	Crawl(ctx context.Context, seeds []config.Seed) error
	Stats() Snapshot
}

// Pipeline joins the walker, the extractor and the sink. The fetch drivers
// call Index for results pages and Detail for ad pages; both are safe to
// call again for the same document after a refetch.
type Pipeline struct {
	walker    *Walker
	extractor *Extractor
	sink      storage.RecordSink
	stats     *Stats
	logger    *utils.Logger
}

// NewPipeline wires a pipeline writing to sink. now stamps the crawl date.
func NewPipeline(logger *utils.Logger, sink storage.RecordSink, now func() time.Time) *Pipeline {
	return &Pipeline{
		walker:    NewWalker(logger),
		extractor: NewExtractor(logger, now),
		sink:      sink,
		stats:     &Stats{},
		logger:    logger.Named("pipeline"),
	}
}

// Stats returns the live counters.
func (p *Pipeline) Stats() *Stats { return p.stats }

// Index walks a results page. On a pagination fault the extraction tasks
// found so far are still returned but Next is cleared.
func (p *Pipeline) Index(pageURL string, doc *goquery.Selection) models.WalkResult {
	res, err := p.walker.Walk(pageURL, doc)
	if res.City != "" {
		p.stats.recordWalk(res)
	}
	if err != nil {
		p.stats.PaginationFaults.Add(1)
		p.logger.Error("branch stopped at %s: %v", pageURL, err)
		res.Next = nil
		return res
	}

	if res.Promoted > 0 {
		p.logger.Debug("%s: skipped %d promoted entries", res.City, res.Promoted)
	}
	if res.Next == nil {
		p.logger.Info("%s: no fresh ads on %s, branch done", res.City, pageURL)
	}
	return res
}

// Detail extracts one ad and hands the record to the sink. Faults are
// counted and logged with the ad URL; they never stop the crawl.
func (p *Pipeline) Detail(ctx context.Context, pageURL string, doc *goquery.Selection, task models.ExtractionTask) error {
	rec, err := p.extractor.Extract(pageURL, doc, task.Context.AdSource, task.Context)
	if err != nil {
		p.stats.ExtractionFaults.Add(1)
		p.logger.Warn("dropped %s: %v", pageURL, err)
		return err
	}

	if err := p.sink.Write(ctx, rec); err != nil {
		p.stats.SinkFaults.Add(1)
		p.logger.Error("sink write failed for %s: %v", pageURL, err)
		return err
	}

	p.stats.Extracted.Add(1)
	p.logger.Debug("%s %s: %.0f EUR, %s m², %d EUR/m²", rec.AdSource, rec.City, rec.Price, rec.Surface, rec.SqmPrice)
	return nil
}
