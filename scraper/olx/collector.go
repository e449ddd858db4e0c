package olx

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gocolly/colly"

	"re-crawler/config"
	"re-crawler/models"
	"re-crawler/utils"
)

// Request context keys carried between colly callbacks.
const (
	ctxKind       = "kind"
	ctxCity       = "ad_city"
	ctxSource     = "ad_source"
	ctxPromoCount = "promo_count"
	ctxRetries    = "retries"

	kindIndex  = "index"
	kindDetail = "detail"
)

var allowedDomains = []string{"www.olx.ro", "olx.ro", "www.storia.ro", "storia.ro"}

// CollyCrawler drives the pipeline with an asynchronous colly collector.
// Results pages and ad pages go through the same collector and are told
// apart by the "kind" value in the request context.
type CollyCrawler struct {
	pipeline   *Pipeline
	collector  *colly.Collector
	maxRetries int
	logger     *utils.Logger
}

// NewCollyCrawler configures the collector from cfg.
func NewCollyCrawler(cfg *config.Config, pipeline *Pipeline, logger *utils.Logger) (*CollyCrawler, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(allowedDomains...),
		colly.UserAgent(cfg.UserAgent),
		colly.Async(true),
	)
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	c.SetRequestTimeout(60 * time.Second)

	delay := time.Duration(cfg.RateLimitMs) * time.Millisecond
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.MaxConcurrency,
		Delay:       delay,
		RandomDelay: delay / 2,
	}); err != nil {
		return nil, err
	}

	return &CollyCrawler{
		pipeline:   pipeline,
		collector:  c,
		maxRetries: cfg.MaxRetries,
		logger:     logger.Named("collector"),
	}, nil
}

func (cc *CollyCrawler) Stats() Snapshot { return cc.pipeline.Stats().Snapshot() }

// Crawl queues every seed and blocks until the collector drains. Cancelling
// ctx aborts requests that have not started yet.
func (cc *CollyCrawler) Crawl(ctx context.Context, seeds []config.Seed) error {
	c := cc.collector

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "ro-RO,ro;q=0.9,en;q=0.5")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		pageURL := e.Request.URL.String()
		switch e.Request.Ctx.Get(ctxKind) {
		case kindIndex:
			cc.onIndex(pageURL, e)
		case kindDetail:
			cc.onDetail(ctx, pageURL, e)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		cc.onError(r, err)
	})

	for _, seed := range seeds {
		cc.logger.Info("seeding %s (%s)", seed.City, seed.Category)
		if err := cc.visit(seed.URL, indexContext()); err != nil {
			cc.logger.Error("seed %s rejected: %v", seed.URL, err)
		}
	}

	c.Wait()
	return ctx.Err()
}

func (cc *CollyCrawler) onIndex(pageURL string, e *colly.HTMLElement) {
	res := cc.pipeline.Index(pageURL, e.DOM)

	for _, task := range res.Tasks {
		if err := cc.visit(task.URL, detailContext(task.Context)); err != nil {
			if !errors.Is(err, colly.ErrAlreadyVisited) {
				cc.logger.Warn("could not queue %s: %v", task.URL, err)
			}
			continue
		}
		cc.pipeline.Stats().Dispatched.Add(1)
	}

	if res.Next != nil {
		cc.logger.Info("%s: requesting page %d", res.City, res.Next.Page)
		if err := cc.visit(res.Next.URL, indexContext()); err != nil {
			cc.logger.Warn("could not queue %s: %v", res.Next.URL, err)
		}
	}
}

func (cc *CollyCrawler) onDetail(ctx context.Context, pageURL string, e *colly.HTMLElement) {
	tc, err := taskContext(e.Request.Ctx)
	if err != nil {
		cc.pipeline.Stats().ExtractionFaults.Add(1)
		cc.logger.Warn("dropped %s: %v", pageURL, err)
		return
	}
	task := models.ExtractionTask{URL: pageURL, Context: tc}
	_ = cc.pipeline.Detail(ctx, pageURL, e.DOM, task)
}

// onError retries failed fetches with the same request context until
// MAX_RETRIES is reached.
func (cc *CollyCrawler) onError(r *colly.Response, err error) {
	tries, _ := strconv.Atoi(r.Ctx.Get(ctxRetries))
	if tries < cc.maxRetries {
		r.Ctx.Put(ctxRetries, strconv.Itoa(tries+1))
		cc.logger.Warn("fetch %s failed (status %d, attempt %d/%d): %v, retrying",
			r.Request.URL, r.StatusCode, tries+1, cc.maxRetries+1, err)
		if rerr := r.Request.Retry(); rerr == nil {
			return
		}
	}
	cc.pipeline.Stats().FetchFaults.Add(1)
	cc.logger.Error("fetch %s failed: %v", r.Request.URL, err)
}

func (cc *CollyCrawler) visit(url string, ctx *colly.Context) error {
	return cc.collector.Request("GET", url, nil, ctx, nil)
}

func indexContext() *colly.Context {
	ctx := colly.NewContext()
	ctx.Put(ctxKind, kindIndex)
	return ctx
}

func detailContext(tc models.TaskContext) *colly.Context {
	ctx := colly.NewContext()
	ctx.Put(ctxKind, kindDetail)
	ctx.Put(ctxCity, tc.City)
	ctx.Put(ctxSource, string(tc.AdSource))
	ctx.Put(ctxPromoCount, strconv.Itoa(tc.PromoCount))
	return ctx
}

func taskContext(ctx *colly.Context) (models.TaskContext, error) {
	source, err := models.ParseAdSource(ctx.Get(ctxSource))
	if err != nil {
		return models.TaskContext{}, &ExtractionError{Field: "ad_source", Err: err}
	}
	promo, _ := strconv.Atoi(ctx.Get(ctxPromoCount))
	return models.TaskContext{
		City:       ctx.Get(ctxCity),
		AdSource:   source,
		PromoCount: promo,
	}, nil
}
