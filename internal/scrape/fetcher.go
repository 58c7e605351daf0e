// Package scrape fetches job postings and public profile pages.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobassist/internal/config"
	"jobassist/internal/errors"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// Page is what a single fetch yields
type Page struct {
	URL        string
	StatusCode int
	Title      string
	Text       string   // visible body text, one line per text block
	LDJSON     []string // application/ld+json script bodies in document order
	NextData   string   // __NEXT_DATA__ script body, if any
}

// Fetcher downloads pages with a fresh colly collector per call. Requests
// to one host are spaced at least cfg.Delay apart across all calls.
type Fetcher struct {
	cfg    config.ScrapeConfig
	logger *errors.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFetcher creates a fetcher
func NewFetcher(cfg config.ScrapeConfig, logger *errors.Logger) *Fetcher {
	return &Fetcher{cfg: cfg, logger: logger, limiters: make(map[string]*rate.Limiter)}
}

// waitTurn blocks until host may be requested again or ctx is done
func (f *Fetcher) waitTurn(ctx context.Context, host string) error {
	if f.cfg.Delay <= 0 {
		return nil
	}

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(f.cfg.Delay), 1)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

// contextTransport binds every outgoing request to the caller's context
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// Fetch downloads rawURL and collects its title, text and embedded data
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid URL", err).
			WithContext("url", rawURL)
	}

	u, _ := url.Parse(rawURL)
	if err := f.waitTurn(ctx, u.Hostname()); err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "Fetch canceled while waiting for host", err).
			WithContext("url", rawURL)
	}

	c := f.newCollector(ctx)
	page := &Page{URL: rawURL}
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
	})
	c.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
	})
	c.OnHTML("title", func(e *colly.HTMLElement) {
		if page.Title == "" {
			page.Title = strings.TrimSpace(e.Text)
		}
	})
	c.OnHTML(`script[type="application/ld+json"]`, func(e *colly.HTMLElement) {
		page.LDJSON = append(page.LDJSON, strings.TrimSpace(e.Text))
	})
	c.OnHTML("script#__NEXT_DATA__", func(e *colly.HTMLElement) {
		page.NextData = strings.TrimSpace(e.Text)
	})
	c.OnHTML("body", func(e *colly.HTMLElement) {
		body := e.DOM.Clone()
		body.Find("script, style, noscript, template").Remove()
		page.Text = collapseWhitespace(body.Text())
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
		}
	})

	start := time.Now()
	if err := c.Visit(rawURL); err != nil && fetchErr == nil {
		fetchErr = err
	}
	c.Wait()

	if fetchErr != nil {
		if f.logger != nil {
			f.logger.Warn("Page fetch failed", "url", rawURL, "status", page.StatusCode, "error", fetchErr.Error())
		}
		return nil, errors.NewScrapeError(errors.ErrCodeFetchFailed, "Failed to fetch page", fetchErr).
			WithContext("url", rawURL).
			WithContext("status", page.StatusCode)
	}

	if f.logger != nil {
		f.logger.Debug("Page fetched",
			"url", rawURL,
			"status", page.StatusCode,
			"text_length", len(page.Text),
			"ld_json_blocks", len(page.LDJSON),
			"has_next_data", page.NextData != "",
			"duration", time.Since(start))
	}
	return page, nil
}

func (f *Fetcher) newCollector(ctx context.Context) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
	}
	if f.cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(f.cfg.UserAgent))
	}
	if f.cfg.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(f.cfg.MaxBodySize))
	}

	c := colly.NewCollector(opts...)
	c.WithTransport(contextTransport{ctx: ctx, base: http.DefaultTransport})
	if f.cfg.Timeout > 0 {
		c.SetRequestTimeout(f.cfg.Timeout)
	}
	return c
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
