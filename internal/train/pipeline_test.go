package train

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"swingbot/internal/features"
	"swingbot/internal/model"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

type stubLister struct{ symbols []string }

func (s *stubLister) TrainingSymbols(ctx context.Context) ([]string, error) {
	return s.symbols, nil
}

// stubHistory serves a synthetic rising series per known symbol.
type stubHistory struct {
	bars map[string][]types.Candle
}

func (s *stubHistory) History(ctx context.Context, symbol string, window time.Duration) ([]types.Candle, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	return bars, nil
}

func risingBars(n int) []types.Candle {
	bars := make([]types.Candle, n)
	for i := 0; i < n; i++ {
		c := 100.0 + float64(i)
		bars[i] = types.Candle{Ts: int64(i) * 86400, Open: c, High: c + 1, Low: c - 1, Close: c, Vol: 500}
	}
	return bars
}

func testConfig(t *testing.T) *store.Config {
	cfg := &store.Config{
		ModelPath:  filepath.Join(t.TempDir(), "models", "m.json"),
		TrainYears: 1,
	}
	cfg.Model.Trees = 5
	cfg.Model.MaxDepth = 3
	cfg.Model.MinLeaf = 1
	cfg.Model.MaxFeatures = 1.0
	cfg.Model.Seed = 42
	return cfg
}

func TestBuildDatasetRowCount(t *testing.T) {
	hist := &stubHistory{bars: map[string][]types.Candle{
		"A.NS": risingBars(200),
		"B.NS": risingBars(200),
	}}
	p := New(testConfig(t), &stubLister{}, hist)

	X, Y, err := p.BuildDataset(context.Background(), []string{"A.NS", "B.NS"})
	if err != nil {
		t.Fatalf("Expected dataset build to succeed, got %v", err)
	}

	// Each 200-bar symbol yields 200 - warm-up - 90 lookahead rows.
	perSymbol := 200 - features.WarmupBars - 90
	rows, cols := X.Dims()
	if rows != 2*perSymbol {
		t.Errorf("Expected %d pooled rows, got %d", 2*perSymbol, rows)
	}
	if cols != len(types.FeatureColumns()) {
		t.Errorf("Expected %d feature columns, got %d", len(types.FeatureColumns()), cols)
	}
	yr, yc := Y.Dims()
	if yr != rows || yc != len(types.Horizons) {
		t.Errorf("Expected %dx%d targets, got %dx%d", rows, len(types.Horizons), yr, yc)
	}
}

func TestBuildDatasetSkipsBadSymbols(t *testing.T) {
	hist := &stubHistory{bars: map[string][]types.Candle{
		"A.NS": risingBars(200),
		"B.NS": risingBars(50), // too short to label
	}}
	p := New(testConfig(t), &stubLister{}, hist)

	X, _, err := p.BuildDataset(context.Background(), []string{"A.NS", "B.NS", "C.NS"})
	if err != nil {
		t.Fatalf("Expected dataset build to succeed, got %v", err)
	}
	rows, _ := X.Dims()
	if want := 200 - features.WarmupBars - 90; rows != want {
		t.Errorf("Expected only A.NS rows (%d), got %d", want, rows)
	}
}

func TestBuildDatasetNoData(t *testing.T) {
	p := New(testConfig(t), &stubLister{}, &stubHistory{})
	if _, _, err := p.BuildDataset(context.Background(), []string{"A.NS"}); err == nil {
		t.Error("Expected error when no symbol yields data")
	}
}

func TestSplitSizes(t *testing.T) {
	examples := make([]types.Example, 182)
	X, Y := Matrices(examples)

	XTrain, YTrain, XTest, YTest := Split(X, Y)
	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	if trainRows != 146 || testRows != 36 {
		t.Errorf("Expected 146/36 split of 182 rows, got %d/%d", trainRows, testRows)
	}
	ytr, _ := YTrain.Dims()
	yte, _ := YTest.Dims()
	if ytr != trainRows || yte != testRows {
		t.Errorf("Expected target split to mirror features, got %d/%d", ytr, yte)
	}
}

func TestSplitTinySample(t *testing.T) {
	X, Y := Matrices(make([]types.Example, 3))
	XTrain, YTrain, XTest, YTest := Split(X, Y)
	trainRows, _ := XTrain.Dims()
	if trainRows != 3 {
		t.Errorf("Expected all 3 rows in the training split, got %d", trainRows)
	}
	ytr, _ := YTrain.Dims()
	if ytr != 3 {
		t.Errorf("Expected all 3 target rows in the training split, got %d", ytr)
	}
	if XTest != nil || YTest != nil {
		t.Error("Expected a nil holdout below the holdout threshold")
	}
}

func TestEvaluateNilHoldout(t *testing.T) {
	cfg := testConfig(t)
	hist := &stubHistory{bars: map[string][]types.Candle{"A.NS": risingBars(250)}}
	p := New(cfg, &stubLister{}, hist)
	X, Y, err := p.BuildDataset(context.Background(), []string{"A.NS"})
	if err != nil {
		t.Fatalf("Expected dataset build to succeed, got %v", err)
	}
	m, err := model.Train(X, Y, model.Hyperparams{
		Trees: 5, MaxDepth: 3, MinLeaf: 1, MaxFeatures: 1.0, Seed: 42,
	})
	if err != nil {
		t.Fatalf("Expected training to succeed, got %v", err)
	}

	metrics := Evaluate(m, nil, nil)
	if len(metrics) != len(types.Horizons) {
		t.Fatalf("Expected %d metrics, got %d", len(types.Horizons), len(metrics))
	}
	for _, metric := range metrics {
		if !math.IsNaN(metric.RMSE) || !math.IsNaN(metric.R2) {
			t.Errorf("Horizon %d: expected NaN diagnostics for a nil holdout, got RMSE %f R2 %f",
				metric.Horizon, metric.RMSE, metric.R2)
		}
	}
}

func TestRunTinyDataset(t *testing.T) {
	// 112 bars yield 3 pooled rows, too few for a holdout; the run must
	// still write an artifact.
	cfg := testConfig(t)
	hist := &stubHistory{bars: map[string][]types.Candle{"A.NS": risingBars(112)}}
	p := New(cfg, &stubLister{symbols: []string{"A.NS"}}, hist)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Expected tiny training run to succeed, got %v", err)
	}
	if _, err := model.Load(cfg.ModelPath); err != nil {
		t.Errorf("Expected a loadable artifact from a tiny run, got %v", err)
	}
}

func TestRunWritesArtifact(t *testing.T) {
	cfg := testConfig(t)
	hist := &stubHistory{bars: map[string][]types.Candle{
		"A.NS": risingBars(250),
		"B.NS": risingBars(250),
	}}
	p := New(cfg, &stubLister{symbols: []string{"A.NS", "B.NS"}}, hist)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Expected training run to succeed, got %v", err)
	}

	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		t.Fatalf("Expected a loadable artifact, got %v", err)
	}
	if len(m.Forests) != len(types.Horizons) {
		t.Errorf("Expected %d forests in artifact, got %d", len(types.Horizons), len(m.Forests))
	}
}

func TestRunHonorsSymbolLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.TrainSymbolLimit = 1
	hist := &stubHistory{bars: map[string][]types.Candle{
		"A.NS": risingBars(250),
	}}
	// Only A.NS has data; the limit keeps B.NS out of the run entirely.
	p := New(cfg, &stubLister{symbols: []string{"A.NS", "B.NS"}}, hist)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Expected training run to succeed, got %v", err)
	}
}
