package sentiment

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"swingbot/internal/logger"
)

// Scraper fetches news headlines for a symbol from RSS feeds: the Yahoo
// Finance symbol feed first, Google News search as fallback.
type Scraper struct {
	yahooBase  string
	googleBase string
	timeout    time.Duration
}

// ScraperOption configures the headline scraper
type ScraperOption func(*Scraper)

// WithFeedHosts overrides the feed endpoints (used by tests)
func WithFeedHosts(yahoo, google string) ScraperOption {
	return func(s *Scraper) {
		s.yahooBase = yahoo
		s.googleBase = google
	}
}

// NewScraper creates a headline scraper
func NewScraper(timeout time.Duration, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		yahooBase:  "https://feeds.finance.yahoo.com",
		googleBase: "https://news.google.com",
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Headlines returns up to maxHeadlines recent headline titles for a symbol.
// The exchange suffix is stripped before querying the feeds.
func (s *Scraper) Headlines(ctx context.Context, symbol string, maxHeadlines int) ([]string, error) {
	base := strings.SplitN(symbol, ".", 2)[0]

	feedURL := fmt.Sprintf("%s/rss/2.0/headline?s=%s&region=IN&lang=en-IN", s.yahooBase, url.QueryEscape(base))
	titles, err := s.scrapeFeed(ctx, feedURL, maxHeadlines)
	if err != nil {
		logger.Debug(ctx, "Yahoo feed failed", "symbol", symbol, "error", err)
	}
	if len(titles) > 0 {
		return titles, nil
	}

	// Fallback to a Google News search feed.
	query := url.QueryEscape(base + " stock news India")
	searchURL := fmt.Sprintf("%s/rss/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", s.googleBase, query)
	titles, err = s.scrapeFeed(ctx, searchURL, maxHeadlines)
	if err != nil {
		return nil, fmt.Errorf("headline fetch failed for %s: %w", symbol, err)
	}
	return titles, nil
}

// scrapeFeed pulls item titles from one RSS feed
func (s *Scraper) scrapeFeed(ctx context.Context, feedURL string, maxHeadlines int) ([]string, error) {
	titles := []string{}

	c := colly.NewCollector()
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnXML("//rss/channel/item/title", func(e *colly.XMLElement) {
		if len(titles) >= maxHeadlines {
			return
		}
		if t := strings.TrimSpace(e.Text); t != "" {
			titles = append(titles, t)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Debug(ctx, "Feed scraping error", "url", feedURL, "error", err)
	})

	if err := c.Visit(feedURL); err != nil {
		return nil, err
	}
	c.Wait()

	return titles, nil
}
