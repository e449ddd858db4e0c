package olx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"re-crawler/config"
	"re-crawler/models"
	"re-crawler/utils"
)

// BrowserCrawler renders every page in headless Chrome before handing it to
// the pipeline. Each seed's results pages are walked in order on the calling
// goroutine; ad pages run on the worker pool.
type BrowserCrawler struct {
	cfg      *config.Config
	pipeline *Pipeline
	logger   *utils.Logger
	pool     *utils.WorkerPool
	seen     *utils.URLSet
	retry    *utils.RetryConfig
}

// NewBrowserCrawler creates a chromedp backed crawler.
func NewBrowserCrawler(cfg *config.Config, pipeline *Pipeline, logger *utils.Logger) *BrowserCrawler {
	logger = logger.Named("browser")
	return &BrowserCrawler{
		cfg:      cfg,
		pipeline: pipeline,
		logger:   logger,
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:     utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries + 1,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (b *BrowserCrawler) Stats() Snapshot { return b.pipeline.Stats().Snapshot() }

// Crawl walks every seed until its freshness cutoff, then waits for the
// outstanding ad pages.
func (b *BrowserCrawler) Crawl(ctx context.Context, seeds []config.Seed) error {
	chromeBin := b.cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	b.logger.Info("using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// start the browser once so every fetch opens a tab on it
	if err := chromedp.Run(browserCtx); err != nil {
		return fmt.Errorf("browser: start: %w", err)
	}

	for _, seed := range seeds {
		if ctx.Err() != nil {
			break
		}
		b.logger.Info("walking %s (%s)", seed.City, seed.Category)
		b.walkBranch(ctx, browserCtx, seed.URL)
	}

	b.pool.Wait()
	b.logger.Info("fetched %d unique ads", b.seen.Size())
	return ctx.Err()
}

// walkBranch follows one city's results pages until a page has no fresh
// ads, a fault ends the branch, or ctx is cancelled.
func (b *BrowserCrawler) walkBranch(ctx, browserCtx context.Context, pageURL string) {
	for pageURL != "" && ctx.Err() == nil {
		doc, err := b.fetch(ctx, browserCtx, pageURL)
		if err != nil {
			b.pipeline.Stats().FetchFaults.Add(1)
			b.logger.Error("results page %s: %v", pageURL, err)
			return
		}

		res := b.pipeline.Index(pageURL, doc)
		for _, task := range res.Tasks {
			if !b.seen.Add(task.URL) {
				continue
			}
			t := task
			if !b.pool.Submit(ctx, func() { b.detail(ctx, browserCtx, t) }) {
				return
			}
			b.pipeline.Stats().Dispatched.Add(1)
		}

		if res.Next == nil {
			return
		}
		b.logger.Info("%s: requesting page %d", res.City, res.Next.Page)
		pageURL = res.Next.URL
	}
}

func (b *BrowserCrawler) detail(ctx, browserCtx context.Context, task models.ExtractionTask) {
	doc, err := b.fetch(ctx, browserCtx, task.URL)
	if err != nil {
		b.pipeline.Stats().FetchFaults.Add(1)
		b.logger.Error("ad page %s: %v", task.URL, err)
		return
	}
	_ = b.pipeline.Detail(ctx, task.URL, doc, task)
}

// fetch renders url in a fresh tab and parses the resulting HTML.
func (b *BrowserCrawler) fetch(ctx, browserCtx context.Context, url string) (*goquery.Selection, error) {
	var html string

	// tabs derive from browserCtx, which is already cancelled with ctx
	err := b.retry.Do(ctx, "fetch "+url, func(context.Context) error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 60*time.Second)
		defer cancelTimeout()

		return chromedp.Run(tabCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc.Selection, nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring CHROME_BIN.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
