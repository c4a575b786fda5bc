// Package crawler walks a school website breadth-first and turns its pages
// into knowledge-base documents.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dtnitsch/school-assistant/internal/common"
	"github.com/dtnitsch/school-assistant/models"
	"github.com/dtnitsch/school-assistant/pkg/fetcher"
	"github.com/dtnitsch/school-assistant/pkg/metrics"
	"github.com/dtnitsch/school-assistant/pkg/parser"
)

// ErrInvalidSeed means the crawl could not start because the seed URL is
// misconfigured.
var ErrInvalidSeed = errors.New("invalid seed URL")

const (
	minBlockContentLen = 100
	minPageContentLen  = 50
	dedupPrefixLen     = 200
)

// DefaultCommonPages are page names guessed under the site root, each tried
// bare and with a .html extension.
var DefaultCommonPages = []string{
	"about", "about-us", "admission", "admissions", "fees", "fee-structure",
	"contact", "contact-us", "facilities", "academics", "events", "news",
	"notices", "gallery", "staff", "faculty", "principal", "timings",
	"curriculum", "infrastructure", "activities", "sports", "library",
}

// PageFetcher retrieves a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Response, error)
}

// Options bounds a crawl run.
type Options struct {
	PageBudget       int
	DiscoveryCap     int
	Delay            time.Duration
	MaxContentLength int
	CommonPages      []string
	DefaultTitle     string
}

// Result is the outcome of one crawl run.
type Result struct {
	Documents    []models.Document
	PagesFetched int
	Failed       int
	Skipped      int
	Discovered   int
	Duplicates   int
}

type Crawler struct {
	fetcher PageFetcher
	parser  *parser.Parser
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(f PageFetcher, opts Options, logger *slog.Logger, m *metrics.Metrics) *Crawler {
	if opts.PageBudget <= 0 {
		opts.PageBudget = 50
	}
	if opts.DiscoveryCap <= 0 {
		opts.DiscoveryCap = 100
	}
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = 3000
	}
	if opts.CommonPages == nil {
		opts.CommonPages = DefaultCommonPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		fetcher: f,
		parser:  &parser.Parser{DefaultTitle: opts.DefaultTitle},
		opts:    opts,
		logger:  logger.With("component", "crawler"),
		metrics: m,
		now:     time.Now,
	}
}

// Crawl fetches the seed page, then works through discovered same-site links
// and guessed page names until the page budget is spent or the queue runs
// dry. Per-URL failures are logged and skipped. The only error is
// ErrInvalidSeed; a cancelled context ends the run early with whatever was
// collected.
func (c *Crawler) Crawl(ctx context.Context, seed string) (*Result, error) {
	seedURL, err := common.ValidateSeedURL(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	// normalized like discovered links so the home page is not fetched twice
	seedURL.Fragment = ""
	seedURL.RawFragment = ""
	if seedURL.Path == "" {
		seedURL.Path = "/"
	}
	seed = seedURL.String()

	c.logger.Info("Starting crawl", "seed", seed, "page_budget", c.opts.PageBudget, "discovery_cap", c.opts.DiscoveryCap)
	started := c.now()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(c.opts.Delay), 1)
	}

	res := &Result{}
	var collected []models.Document
	fr := newFrontier(c.opts.DiscoveryCap)

	visit := func(target, category string) []string {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		fr.markVisited(target)
		res.PagesFetched++

		doc, links, err := c.fetchPage(ctx, target, category)
		switch {
		case err != nil:
			res.Failed++
			c.metrics.CrawlPage(metrics.OutcomeFailed)
			c.logger.Warn("Error fetching page", "url", target, "error", err)
		case doc == nil:
			res.Skipped++
			c.metrics.CrawlPage(metrics.OutcomeSkipped)
			c.logger.Debug("Page has no usable content", "url", target)
		default:
			c.metrics.CrawlPage(metrics.OutcomeOK)
			collected = append(collected, *doc)
		}
		return sameSite(seedURL, links)
	}

	seedLinks := visit(seed, "home")
	fr.markVisited(seed)
	fr.seed(seedLinks...)
	fr.seed(guessedPages(seed, c.opts.CommonPages)...)

	for res.PagesFetched < c.opts.PageBudget && ctx.Err() == nil {
		target, ok := fr.pop()
		if !ok {
			break
		}
		links := visit(target, models.DefaultCategory)
		res.Discovered += fr.discover(links...)
	}

	res.Documents, res.Duplicates = Deduplicate(collected)

	c.logger.Info("Crawl finished",
		"pages_fetched", res.PagesFetched,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"queued", fr.size(),
		"documents", len(res.Documents),
		"duplicates", res.Duplicates,
		"duration", c.now().Sub(started),
	)
	return res, nil
}

// fetchPage fetches and extracts one page. A nil document with a nil error
// means the page had too little content.
func (c *Crawler) fetchPage(ctx context.Context, target, category string) (*models.Document, []string, error) {
	resp, err := c.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	page, err := c.parser.Extract(target, string(resp.Body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := page.ToPlainText()
	if utf8.RuneCountInString(content) < minBlockContentLen && page.BodyText != "" {
		content = page.BodyText
	}
	if utf8.RuneCountInString(content) <= minPageContentLen {
		return nil, page.Links, nil
	}

	return &models.Document{
		ID:        uuid.NewString(),
		Title:     page.Title,
		Content:   common.Truncate(content, c.opts.MaxContentLength),
		Category:  category,
		Origin:    models.OriginCrawled,
		SourceURL: target,
		CreatedAt: c.now(),
	}, page.Links, nil
}

// Deduplicate drops documents whose first 200 characters of content match an
// earlier document. It returns the kept documents and the number dropped.
func Deduplicate(docs []models.Document) ([]models.Document, int) {
	seen := make(map[string]struct{}, len(docs))
	unique := make([]models.Document, 0, len(docs))
	for _, doc := range docs {
		key := common.ContentHash([]byte(common.Truncate(doc.Content, dedupPrefixLen)))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, doc)
	}
	return unique, len(docs) - len(unique)
}

// sameSite keeps links on the seed's host. Scheme is not compared: school
// sites commonly mix http and https links to the same pages.
func sameSite(seed *url.URL, links []string) []string {
	var out []string
	for _, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !strings.EqualFold(u.Host, seed.Host) {
			continue
		}
		if u.Path == "" {
			u.Path = "/"
		}
		out = append(out, u.String())
	}
	return out
}

func guessedPages(seed string, pages []string) []string {
	base := strings.TrimRight(seed, "/")
	out := make([]string, 0, len(pages)*2)
	for _, page := range pages {
		out = append(out, base+"/"+page, base+"/"+page+".html")
	}
	return out
}
