// Package scan fans the symbol universe out across a bounded worker pool and
// reduces the successful predictions to the two 30-day extremes.
package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

const (
	rationaleTopPositive = "Strongest positive ML momentum 30 Days (relative)"
	rationaleTopNegative = "Weakest / negative ML momentum 30 Days (relative)"
)

// SymbolLister yields the symbols a scan covers.
type SymbolLister interface {
	ScanSymbols(ctx context.Context) ([]string, error)
}

// Scanner coordinates one full scan. The pool size is fixed and small to
// respect the market-data provider's rate limits.
type Scanner struct {
	predictor interfaces.Predictor
	symbols   SymbolLister
	workers   int
	perSymbol time.Duration
	limit     int
}

func New(cfg *store.Config, symbols SymbolLister, predictor interfaces.Predictor) *Scanner {
	return &Scanner{
		predictor: predictor,
		symbols:   symbols,
		workers:   cfg.Scan.Workers,
		perSymbol: time.Duration(cfg.Scan.PerSymbolTimeoutSecs) * time.Second,
		limit:     cfg.AnalysisSymbolLimit,
	}
}

// Run scans the full universe. A single symbol's failure is swallowed and
// excluded; an empty result set is a valid outcome, not an error.
func (s *Scanner) Run(ctx context.Context) (*types.ScanResult, error) {
	op := logger.StartOperation(ctx, "scan.Run", "workers", s.workers)
	ctx = op.GetContext()

	symbols, err := s.symbols.ScanSymbols(ctx)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	if s.limit > 0 && len(symbols) > s.limit {
		symbols = symbols[:s.limit]
	}
	logger.Info(ctx, "Scan started", "symbols", len(symbols))

	jobs := make(chan string, len(symbols))
	for _, sym := range symbols {
		jobs <- sym
	}
	close(jobs)

	var (
		mu      sync.Mutex
		results []types.Prediction
	)

	// Workers only return an error on context cancellation, so one bad
	// symbol never aborts the scan.
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			for sym := range jobs {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				symCtx, cancel := context.WithTimeout(gctx, s.perSymbol)
				pred, err := s.predictor.Predict(symCtx, sym)
				cancel()
				if err != nil {
					logger.SymbolSkipped(gctx, sym, "predict", err)
					continue
				}

				mu.Lock()
				results = append(results, *pred)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		op.EndWithError(err, "successes", len(results))
		return nil, err
	}

	res := Reduce(ctx, results)
	op.End("successes", len(res.All), "picks", len(res.TopPicks))
	return res, nil
}

// Reduce selects the max and min predictions by 30-day upside and relabels
// them with the comparative rationale. Ties break lexicographically by
// symbol so the outcome is independent of worker completion order. When the
// two extremes are the same symbol the pick list collapses to one entry.
func Reduce(ctx context.Context, results []types.Prediction) *types.ScanResult {
	all := make([]types.Prediction, len(results))
	copy(all, results)
	sort.Slice(all, func(i, j int) bool { return all[i].Symbol < all[j].Symbol })

	if len(all) == 0 {
		return &types.ScanResult{TopPicks: []types.Prediction{}, All: []types.Prediction{}}
	}

	maxIdx, minIdx := 0, 0
	for i := 1; i < len(all); i++ {
		if all[i].Upside30d > all[maxIdx].Upside30d {
			maxIdx = i
		}
		if all[i].Upside30d < all[minIdx].Upside30d {
			minIdx = i
		}
	}

	if maxIdx == minIdx {
		pick := all[maxIdx]
		if pick.Upside30d >= 0 {
			pick.Rationale = rationaleTopPositive
		} else {
			pick.Rationale = rationaleTopNegative
		}
		logger.Pick(ctx, pick.Symbol, "only", pick.Upside30d)
		return &types.ScanResult{TopPicks: []types.Prediction{pick}, All: all}
	}

	top := all[maxIdx]
	top.Rationale = rationaleTopPositive
	bottom := all[minIdx]
	bottom.Rationale = rationaleTopNegative

	logger.Pick(ctx, top.Symbol, "top_positive", top.Upside30d)
	logger.Pick(ctx, bottom.Symbol, "top_negative", bottom.Upside30d)

	return &types.ScanResult{TopPicks: []types.Prediction{top, bottom}, All: all}
}
