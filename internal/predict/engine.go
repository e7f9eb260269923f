// Package predict runs trained-model inference for one symbol at a time.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"swingbot/internal/features"
	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/model"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

// Per-symbol conditions the scan swallows and logs.
var (
	ErrNoData     = errors.New("no price data")
	ErrNoFeatures = errors.New("feature build failed")
)

const (
	atrStopMultiple  = 1.5
	stopLossFloorPct = 0.9 // fallback when the ATR stop is non-positive
)

// Engine holds the immutable loaded model plus the external collaborators.
// Construction fails when no artifact exists; that is the one unrecoverable
// precondition of the inference process.
type Engine struct {
	model     *model.Model
	history   interfaces.HistorySource
	sentiment interfaces.SentimentSource
	lookback  time.Duration
}

var _ interfaces.Predictor = (*Engine)(nil)

func New(cfg *store.Config, hist interfaces.HistorySource, sent interfaces.SentimentSource) (*Engine, error) {
	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	return &Engine{
		model:     m,
		history:   hist,
		sentiment: sent,
		lookback:  time.Duration(cfg.LookbackDays) * 24 * time.Hour,
	}, nil
}

// NewWithModel wires an already-loaded model (used by tests).
func NewWithModel(m *model.Model, hist interfaces.HistorySource, sent interfaces.SentimentSource, lookback time.Duration) *Engine {
	return &Engine{model: m, history: hist, sentiment: sent, lookback: lookback}
}

// Predict produces the multi-horizon prediction for one symbol. Every
// failure is per-symbol recoverable: the caller logs and skips.
func (e *Engine) Predict(ctx context.Context, symbol string) (*types.Prediction, error) {
	bars, err := e.history.History(ctx, symbol, e.lookback)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrNoData, symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	vec, lastPrice, lastATR, ok := features.Latest(bars)
	if !ok {
		return nil, fmt.Errorf("%w for %s (%d bars)", ErrNoFeatures, symbol, len(bars))
	}

	preds, err := e.model.Predict(vec.Values())
	if err != nil {
		// Cannot happen when the feature contract is honored; treated as a
		// non-fatal per-symbol failure regardless.
		return nil, fmt.Errorf("model prediction failed for %s: %w", symbol, err)
	}

	up15 := preds[0] * 100
	up30 := preds[1] * 100
	up60 := preds[2] * 100
	up90 := preds[3] * 100

	sentiment := e.sentiment.Score(ctx, symbol)

	target90 := round2(lastPrice * (1 + up90/100))
	stopLoss := round2(lastPrice - atrStopMultiple*lastATR)
	if stopLoss <= 0 {
		// Degenerate ATR on thin or bad data.
		stopLoss = round2(lastPrice * stopLossFloorPct)
	}

	rationale := "Negative ML momentum with downside risk"
	if up30 > 0 {
		rationale = "Positive ML momentum with upward trend"
	}

	logger.Debug(ctx, "Symbol analyzed", "symbol", symbol, "upside_30d", round2(up30))

	return &types.Prediction{
		Symbol:    symbol,
		LastPrice: round2(lastPrice),
		Upside15d: round2(up15),
		Upside30d: round2(up30),
		Upside60d: round2(up60),
		Upside90d: round2(up90),
		Target90d: target90,
		StopLoss:  stopLoss,
		Sentiment: round3(sentiment),
		Rationale: rationale,
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
