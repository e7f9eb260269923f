package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLexiconSigns(t *testing.T) {
	l := NewLexicon()

	if s := l.Score("Shares surge on strong profit growth"); s <= 0 {
		t.Errorf("Expected positive score, got %f", s)
	}
	if s := l.Score("Stock plunges after fraud probe and losses"); s >= 0 {
		t.Errorf("Expected negative score, got %f", s)
	}
	if s := l.Score("Board meeting scheduled for Tuesday"); s != 0 {
		t.Errorf("Expected neutral score for plain text, got %f", s)
	}
}

func TestLexiconBounds(t *testing.T) {
	l := NewLexicon()
	s := l.Score("surge surge surge rally rally jump soar beats bullish profit gains")
	if s < -1 || s > 1 {
		t.Errorf("Expected score in [-1,1], got %f", s)
	}
	if s < 0.5 {
		t.Errorf("Expected strongly positive compound, got %f", s)
	}
}

func TestLexiconNegation(t *testing.T) {
	l := NewLexicon()
	pos := l.Score("profit growth")
	neg := l.Score("no profit no growth")
	if pos <= 0 {
		t.Fatalf("Expected positive baseline, got %f", pos)
	}
	if neg >= 0 {
		t.Errorf("Expected negation to flip the score, got %f", neg)
	}
}

func TestScoreAllEmpty(t *testing.T) {
	l := NewLexicon()
	if s := l.ScoreAll(nil); s != 0 {
		t.Errorf("Expected neutral score for no headlines, got %f", s)
	}
}

func TestScoreCacheTTL(t *testing.T) {
	cache := newScoreCache(50*time.Millisecond, 10)

	cache.set("RELIANCE.NS", 0.42)
	got, ok := cache.get("RELIANCE.NS")
	if !ok || got != 0.42 {
		t.Fatalf("Expected cached 0.42, got %f (ok=%v)", got, ok)
	}

	time.Sleep(80 * time.Millisecond)
	if _, ok := cache.get("RELIANCE.NS"); ok {
		t.Error("Expected cache entry to expire")
	}
}

func TestScoreCacheCapacity(t *testing.T) {
	cache := newScoreCache(time.Hour, 2)

	cache.set("A.NS", 0.1)
	time.Sleep(5 * time.Millisecond)
	cache.set("B.NS", 0.2)
	time.Sleep(5 * time.Millisecond)
	cache.set("C.NS", 0.3)

	cache.mu.RLock()
	size := len(cache.data)
	cache.mu.RUnlock()
	if size != 2 {
		t.Fatalf("Expected capacity-bounded cache of 2, got %d", size)
	}
	if _, ok := cache.get("A.NS"); ok {
		t.Error("Expected the oldest entry evicted")
	}
	if _, ok := cache.get("C.NS"); !ok {
		t.Error("Expected the newest entry retained")
	}
}

func TestScoreCacheCleanup(t *testing.T) {
	cache := newScoreCache(20*time.Millisecond, 10)
	cache.set("A.NS", 0.1)
	cache.set("B.NS", 0.2)

	time.Sleep(50 * time.Millisecond)
	cache.cleanup()

	cache.mu.RLock()
	size := len(cache.data)
	cache.mu.RUnlock()
	if size != 0 {
		t.Errorf("Expected 0 entries after cleanup, got %d", size)
	}
}

func TestDefaultServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()
	if cfg.MaxHeadlines != 20 {
		t.Errorf("Expected MaxHeadlines 20, got %d", cfg.MaxHeadlines)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("Expected CacheTTL 1 hour, got %v", cfg.CacheTTL)
	}
	if !cfg.Enabled {
		t.Error("Expected Enabled to be true")
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(&ServiceConfig{Enabled: false})
	if s := svc.Score(context.Background(), "RELIANCE.NS"); s != 0.0 {
		t.Errorf("Expected neutral score when disabled, got %f", s)
	}
}

func TestServiceScoresFeed(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<item><title>Shares surge on record profit</title></item>
<item><title>Analysts upgrade stock after strong growth</title></item>
</channel></rss>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(feed))
	}))
	defer ts.Close()

	svc := NewService(DefaultServiceConfig())
	svc.scraper = NewScraper(5*time.Second, WithFeedHosts(ts.URL, ts.URL))

	score := svc.Score(context.Background(), "RELIANCE.NS")
	if score <= 0 {
		t.Errorf("Expected positive score from positive headlines, got %f", score)
	}

	// Second call is served from cache.
	cached := svc.Score(context.Background(), "RELIANCE.NS")
	if cached != score {
		t.Errorf("Expected cached score %f, got %f", score, cached)
	}
}

func TestServiceFailsOpen(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	svc := NewService(DefaultServiceConfig())
	svc.scraper = NewScraper(time.Second, WithFeedHosts(ts.URL, ts.URL))

	if s := svc.Score(context.Background(), "RELIANCE.NS"); s != 0.0 {
		t.Errorf("Expected neutral score on upstream failure, got %f", s)
	}
}

func TestScraperHeadlineLimit(t *testing.T) {
	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<item><title>one</title></item>
<item><title>two</title></item>
<item><title>three</title></item>
</channel></rss>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(feed))
	}))
	defer ts.Close()

	s := NewScraper(5*time.Second, WithFeedHosts(ts.URL, ts.URL))
	titles, err := s.Headlines(context.Background(), "TCS.NS", 2)
	if err != nil {
		t.Fatalf("Expected headlines, got %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("Expected 2 headlines under the limit, got %d", len(titles))
	}
}
