// Package sentiment scores news headlines per symbol with a lexicon scorer
// behind a bounded TTL cache. It fails open: any upstream trouble yields the
// neutral 0.0 score.
package sentiment

import (
	"context"
	"sync"
	"time"

	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/store"
)

// Service provides cached news sentiment per symbol
type Service struct {
	scraper *Scraper
	lexicon *Lexicon
	cache   *scoreCache
	cfg     *ServiceConfig
}

var _ interfaces.SentimentSource = (*Service)(nil)

// ServiceConfig configures the sentiment service
type ServiceConfig struct {
	MaxHeadlines  int           // Maximum headlines to score per symbol
	CacheTTL      time.Duration // How long a cached score stays valid
	CacheCapacity int           // Maximum cached symbols before eviction
	Timeout       time.Duration // Timeout for feed fetches
	Enabled       bool          // Whether sentiment scoring is enabled
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:  20,
		CacheTTL:      1 * time.Hour,
		CacheCapacity: 2048,
		Timeout:       10 * time.Second,
		Enabled:       true,
	}
}

// ConfigFrom maps the application config onto the service config
func ConfigFrom(cfg *store.Config) *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:  cfg.Sentiment.MaxHeadlines,
		CacheTTL:      time.Duration(cfg.Sentiment.CacheTTLMins) * time.Minute,
		CacheCapacity: cfg.Sentiment.CacheCapacity,
		Timeout:       time.Duration(cfg.Sentiment.TimeoutSecs) * time.Second,
		Enabled:       cfg.Sentiment.Enabled,
	}
}

// scoreCache stores scores with a TTL and a capacity bound, so a long-lived
// process neither grows without limit nor serves stale scores.
type scoreCache struct {
	mu       sync.RWMutex
	data     map[string]*cacheEntry
	ttl      time.Duration
	capacity int
}

type cacheEntry struct {
	score     float64
	timestamp time.Time
}

func newScoreCache(ttl time.Duration, capacity int) *scoreCache {
	cache := &scoreCache{
		data:     make(map[string]*cacheEntry),
		ttl:      ttl,
		capacity: capacity,
	}
	go cache.cleanupLoop()
	return cache
}

func (c *scoreCache) get(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[symbol]
	if !exists {
		return 0, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		return 0, false
	}
	return entry.score, true
}

func (c *scoreCache) set(symbol string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.capacity {
		c.evictOldestLocked()
	}
	c.data[symbol] = &cacheEntry{score: score, timestamp: time.Now()}
}

// evictOldestLocked drops the stalest entry; caller holds the write lock.
func (c *scoreCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.data {
		if oldestKey == "" || e.timestamp.Before(oldest) {
			oldestKey = k
			oldest = e.timestamp
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

func (c *scoreCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *scoreCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for symbol, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, symbol)
		}
	}
}

// NewService creates the sentiment service
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper: NewScraper(cfg.Timeout),
		lexicon: NewLexicon(),
		cache:   newScoreCache(cfg.CacheTTL, cfg.CacheCapacity),
		cfg:     cfg,
	}
}

// Score returns the compound sentiment for a symbol in [-1, 1], cached or
// fresh. It never fails: disabled service, fetch errors, and empty feeds
// all score neutral 0.0.
func (s *Service) Score(ctx context.Context, symbol string) float64 {
	if !s.cfg.Enabled {
		return 0.0
	}

	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached sentiment", "symbol", symbol, "score", cached)
		return cached
	}

	headlines, err := s.scraper.Headlines(ctx, symbol, s.cfg.MaxHeadlines)
	if err != nil {
		logger.Warn(ctx, "Sentiment fetch failed, scoring neutral", "symbol", symbol, "error", err)
		return 0.0
	}

	score := s.lexicon.ScoreAll(headlines)
	s.cache.set(symbol, score)

	logger.Debug(ctx, "Sentiment scored", "symbol", symbol, "headlines", len(headlines), "score", score)
	return score
}
