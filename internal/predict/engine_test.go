package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"swingbot/internal/model"
	"swingbot/internal/types"
)

// constantModel trains a forest on constant targets, so every prediction is
// exactly the given fractional return per horizon.
func constantModel(t *testing.T, targets [4]float64) *model.Model {
	t.Helper()
	rows := 20
	nf := len(types.FeatureColumns())
	X := mat.NewDense(rows, nf, nil)
	Y := mat.NewDense(rows, len(targets), nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < nf; j++ {
			X.Set(i, j, float64(i+j))
		}
		for h, v := range targets {
			Y.Set(i, h, v)
		}
	}
	m, err := model.Train(X, Y, model.Hyperparams{
		Trees: 5, MaxDepth: 3, MinLeaf: 1, MaxFeatures: 1.0, Seed: 42,
	})
	if err != nil {
		t.Fatalf("Expected training to succeed, got %v", err)
	}
	return m
}

type stubHistory struct {
	bars []types.Candle
	err  error
}

func (s *stubHistory) History(ctx context.Context, symbol string, window time.Duration) ([]types.Candle, error) {
	return s.bars, s.err
}

type stubSentiment struct{ score float64 }

func (s *stubSentiment) Score(ctx context.Context, symbol string) float64 { return s.score }

func risingBars(n int) []types.Candle {
	bars := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		c := 100.0 + float64(i)
		bars[i] = types.Candle{Ts: int64(i) * 86400, Open: c, High: c + 1, Low: c - 1, Close: c, Vol: 500}
	}
	return bars
}

func TestPredictUpsides(t *testing.T) {
	m := constantModel(t, [4]float64{0.05, 0.10, -0.02, 0.20})
	e := NewWithModel(m, &stubHistory{bars: risingBars(60)}, &stubSentiment{score: 0.1234}, time.Hour)

	pred, err := e.Predict(context.Background(), "RELIANCE.NS")
	if err != nil {
		t.Fatalf("Expected prediction to succeed, got %v", err)
	}

	if pred.Symbol != "RELIANCE.NS" {
		t.Errorf("Expected symbol RELIANCE.NS, got %s", pred.Symbol)
	}
	if pred.LastPrice != 159 {
		t.Errorf("Expected last price 159, got %f", pred.LastPrice)
	}
	if pred.Upside15d != 5.0 || pred.Upside30d != 10.0 || pred.Upside60d != -2.0 || pred.Upside90d != 20.0 {
		t.Errorf("Expected upsides 5/10/-2/20, got %f/%f/%f/%f",
			pred.Upside15d, pred.Upside30d, pred.Upside60d, pred.Upside90d)
	}
	if want := math.Round(159*1.20*100) / 100; pred.Target90d != want {
		t.Errorf("Expected target %f, got %f", want, pred.Target90d)
	}
	// Constant 2-point daily range: ATR 2, stop 159 - 3.
	if pred.StopLoss != 156.0 {
		t.Errorf("Expected stop loss 156.0, got %f", pred.StopLoss)
	}
	if pred.Sentiment != 0.123 {
		t.Errorf("Expected sentiment rounded to 0.123, got %f", pred.Sentiment)
	}
	if pred.Rationale != "Positive ML momentum with upward trend" {
		t.Errorf("Unexpected rationale %q", pred.Rationale)
	}
}

func TestPredictNegativeRationale(t *testing.T) {
	m := constantModel(t, [4]float64{-0.01, -0.05, -0.03, -0.08})
	e := NewWithModel(m, &stubHistory{bars: risingBars(60)}, &stubSentiment{}, time.Hour)

	pred, err := e.Predict(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Expected prediction to succeed, got %v", err)
	}
	if pred.Rationale != "Negative ML momentum with downside risk" {
		t.Errorf("Unexpected rationale %q", pred.Rationale)
	}
}

func TestPredictStopLossFallback(t *testing.T) {
	// Huge daily ranges push the ATR stop below zero, forcing the 10% floor.
	bars := make([]types.Candle, 60)
	for i := range bars {
		bars[i] = types.Candle{Ts: int64(i) * 86400, Open: 100, High: 180, Low: 20, Close: 100, Vol: 500}
	}
	m := constantModel(t, [4]float64{0.01, 0.02, 0.03, 0.04})
	e := NewWithModel(m, &stubHistory{bars: bars}, &stubSentiment{}, time.Hour)

	pred, err := e.Predict(context.Background(), "INFY.NS")
	if err != nil {
		t.Fatalf("Expected prediction to succeed, got %v", err)
	}
	if pred.StopLoss != 90.0 {
		t.Errorf("Expected fallback stop loss 90.0, got %f", pred.StopLoss)
	}
}

func TestPredictNoData(t *testing.T) {
	m := constantModel(t, [4]float64{0, 0, 0, 0})

	e := NewWithModel(m, &stubHistory{err: fmt.Errorf("boom")}, &stubSentiment{}, time.Hour)
	if _, err := e.Predict(context.Background(), "X.NS"); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData for fetch failure, got %v", err)
	}

	e = NewWithModel(m, &stubHistory{}, &stubSentiment{}, time.Hour)
	if _, err := e.Predict(context.Background(), "X.NS"); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData for empty series, got %v", err)
	}
}

func TestPredictNoFeatures(t *testing.T) {
	m := constantModel(t, [4]float64{0, 0, 0, 0})
	e := NewWithModel(m, &stubHistory{bars: risingBars(10)}, &stubSentiment{}, time.Hour)
	if _, err := e.Predict(context.Background(), "X.NS"); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("Expected ErrNoFeatures for a short series, got %v", err)
	}
}
