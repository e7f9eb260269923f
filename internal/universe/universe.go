// Package universe produces the set of ticker symbols to scan or train on,
// from a local catalog file with an optional remote NSE listing fetch.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"swingbot/internal/logger"
)

const (
	suffixNSE = ".NS"
	suffixBSE = ".BO"

	symbolColumn = "SYMBOL"
)

// Source yields normalized ticker symbols from a CSV catalog, optionally
// refreshed from the NSE listings API with the CSV as fallback.
type Source struct {
	csvPath string
	remote  *NSEListings // nil disables the remote fetch
}

func New(csvPath string, remote *NSEListings) *Source {
	return &Source{csvPath: csvPath, remote: remote}
}

// ScanSymbols returns the universe for an inference scan: catalog order
// preserved, duplicates collapsed to their first appearance.
func (s *Source) ScanSymbols(ctx context.Context) ([]string, error) {
	raw, err := s.rawSymbols(ctx)
	if err != nil {
		return nil, err
	}
	return ForScan(raw), nil
}

// TrainingSymbols returns the universe for a training run: deduplicated and
// globally sorted so runs are deterministic.
func (s *Source) TrainingSymbols(ctx context.Context) ([]string, error) {
	raw, err := s.rawSymbols(ctx)
	if err != nil {
		return nil, err
	}
	return ForTraining(raw), nil
}

func (s *Source) rawSymbols(ctx context.Context) ([]string, error) {
	if s.remote != nil {
		raw, err := s.remote.Fetch(ctx)
		if err == nil && len(raw) > 0 {
			logger.Info(ctx, "Loaded symbols from NSE listings API", "count", len(raw))
			return raw, nil
		}
		logger.Warn(ctx, "NSE listings fetch failed, falling back to catalog CSV", "error", err)
	}
	return LoadCatalog(s.csvPath)
}

// LoadCatalog reads raw ticker strings from the catalog CSV. The SYMBOL
// column is used when the header names one; otherwise the first column.
// A missing catalog file is a fatal startup condition for the caller.
func LoadCatalog(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("symbol catalog unavailable: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("symbol catalog unreadable: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := 0
	start := 0
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), symbolColumn) {
			col = i
			start = 1
			break
		}
	}
	// No SYMBOL header: treat the first row as data unless it looks like
	// some other header text with no digits and a known suffix-free word.
	if start == 0 && looksLikeHeader(records[0][col]) {
		start = 1
	}

	symbols := make([]string, 0, len(records))
	for _, rec := range records[start:] {
		if col >= len(rec) {
			continue
		}
		if v := strings.TrimSpace(rec[col]); v != "" {
			symbols = append(symbols, v)
		}
	}
	return symbols, nil
}

func looksLikeHeader(cell string) bool {
	v := strings.TrimSpace(strings.ToUpper(cell))
	return v == symbolColumn || v == "TICKER" || v == "NAME"
}

// Normalize trims, uppercases, and appends the primary exchange suffix when
// the symbol carries neither recognized suffix.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if !strings.HasSuffix(s, suffixNSE) && !strings.HasSuffix(s, suffixBSE) {
		s += suffixNSE
	}
	return s
}

// ForScan normalizes and deduplicates, preserving first-seen order.
func ForScan(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s := Normalize(r)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ForTraining normalizes, deduplicates, and sorts for deterministic runs.
func ForTraining(raw []string) []string {
	out := ForScan(raw)
	sort.Strings(out)
	return out
}
