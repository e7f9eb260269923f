package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// NSEListings fetches the full equity symbol list from the NSE India API.
// The API refuses requests without session cookies, so a homepage request
// warms the cookie jar first; both steps carry bounded retries.
type NSEListings struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// NewNSEListings creates a listings client with its own cookie-carrying
// HTTP client.
func NewNSEListings() *NSEListings {
	jar, _ := cookiejar.New(nil)
	return &NSEListings{
		baseURL: "https://www.nseindia.com",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		headers: map[string]string{
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
				" (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
			"Accept":  "application/json, text/plain, */*",
			"Referer": "https://www.nseindia.com/",
		},
	}
}

// Fetch returns the raw (un-normalized) symbol strings from the listings
// API, or an error after exhausting retries. Callers fall back to the local
// catalog CSV on error.
func (n *NSEListings) Fetch(ctx context.Context) ([]string, error) {
	// Warm up session cookies.
	for attempt := 0; attempt < 3; attempt++ {
		if err := n.get(ctx, n.baseURL, nil); err == nil {
			break
		}
		if err := sleep(ctx, time.Second); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		var payload struct {
			Data []struct {
				Symbol string `json:"symbol"`
			} `json:"data"`
		}
		err := n.get(ctx, n.baseURL+"/api/equity-master", &payload)
		if err == nil && len(payload.Data) > 0 {
			symbols := make([]string, 0, len(payload.Data))
			for _, d := range payload.Data {
				if d.Symbol != "" {
					symbols = append(symbols, d.Symbol)
				}
			}
			return symbols, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("equity-master returned no symbols")
		}
		if err := sleep(ctx, time.Second); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("NSE listings fetch exhausted retries: %w", lastErr)
}

func (n *NSEListings) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NSE API returned status %d", resp.StatusCode)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
