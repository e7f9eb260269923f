// Package history fetches daily OHLCV series from the Yahoo Finance chart
// API, with a bulk/detail endpoint strategy and an NSE-to-BSE exchange
// suffix fallback.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"swingbot/internal/logger"
	"swingbot/internal/types"
)

const (
	suffixNSE = ".NS"
	suffixBSE = ".BO"
)

// Client handles Yahoo Finance chart API interactions. The two hosts mirror
// the bulk-download and per-ticker detail endpoints: the second is tried
// whenever the first yields an error or an empty series.
type Client struct {
	hosts      []string
	httpClient *http.Client
	headers    map[string]string
}

// Option configures the history client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHosts overrides the API hosts (used by tests)
func WithHosts(hosts ...string) Option {
	return func(c *Client) {
		c.hosts = hosts
	}
}

// NewClient creates a new Yahoo Finance history client
func NewClient(opts ...Option) *Client {
	c := &Client{
		hosts: []string{
			"https://query1.finance.yahoo.com",
			"https://query2.finance.yahoo.com",
		},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			"Accept":     "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// History returns daily candles covering [now-window, now] for the symbol.
// Each host is tried in order; if every attempt for an .NS symbol fails or
// comes back empty, the fetch is retried once with the .BO suffix. No
// further fallback beyond that single exchange swap.
func (c *Client) History(ctx context.Context, symbol string, window time.Duration) ([]types.Candle, error) {
	end := time.Now()
	start := end.Add(-window)
	return c.fetch(ctx, symbol, start, end, true)
}

func (c *Client) fetch(ctx context.Context, symbol string, start, end time.Time, allowSuffixSwap bool) ([]types.Candle, error) {
	var lastErr error
	for _, host := range c.hosts {
		candles, err := c.fetchChart(ctx, host, symbol, start, end)
		if err != nil {
			logger.Debug(ctx, "History fetch attempt failed", "symbol", symbol, "host", host, "error", err)
			lastErr = err
			continue
		}
		if len(candles) > 0 {
			return candles, nil
		}
	}

	if allowSuffixSwap && strings.HasSuffix(symbol, suffixNSE) {
		alt := strings.TrimSuffix(symbol, suffixNSE) + suffixBSE
		logger.Debug(ctx, "Retrying with BSE suffix", "symbol", symbol, "alt", alt)
		return c.fetch(ctx, alt, start, end, false)
	}

	if lastErr != nil {
		return nil, fmt.Errorf("history fetch failed for %s: %w", symbol, lastErr)
	}
	return nil, nil
}

// chartResponse is the slice of the Yahoo chart payload we consume. Bars with
// missing values arrive as JSON nulls, hence the pointer fields.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(ctx context.Context, host, symbol string, start, end time.Time) ([]types.Candle, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		host, symbol, start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("invalid chart response: %w", err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	res := cr.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	candles := make([]types.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		// Drop bars with any missing OHLCV field.
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		candles = append(candles, types.Candle{
			Ts:    ts,
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
			Vol:   *quote.Volume[i],
		})
	}
	return candles, nil
}
