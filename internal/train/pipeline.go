// Package train builds the pooled labeled dataset, fits the multi-output
// forest, evaluates held-out error, and serializes the model artifact.
package train

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"swingbot/internal/features"
	"swingbot/internal/interfaces"
	"swingbot/internal/logger"
	"swingbot/internal/model"
	"swingbot/internal/store"
	"swingbot/internal/types"
)

// holdoutFraction is the chronological share of the pooled sample kept for
// evaluation. The split preserves pooled order and never shuffles.
const holdoutFraction = 0.2

// symbolPacing is the pause between per-symbol history fetches, keeping the
// sequential training loop gentle on the provider.
const symbolPacing = 100 * time.Millisecond

// SymbolLister yields the symbols a training run covers.
type SymbolLister interface {
	TrainingSymbols(ctx context.Context) ([]string, error)
}

// Metric is the held-out diagnostic for one horizon. Diagnostics only:
// training always produces an artifact regardless of scores.
type Metric struct {
	Horizon int
	RMSE    float64
	R2      float64
}

type Pipeline struct {
	cfg     *store.Config
	symbols SymbolLister
	history interfaces.HistorySource
}

func New(cfg *store.Config, symbols SymbolLister, history interfaces.HistorySource) *Pipeline {
	return &Pipeline{cfg: cfg, symbols: symbols, history: history}
}

// Run executes the full training pass and writes the artifact to the
// configured path.
func (p *Pipeline) Run(ctx context.Context) error {
	op := logger.StartOperation(ctx, "train.Run")
	ctx = op.GetContext()

	symbols, err := p.symbols.TrainingSymbols(ctx)
	if err != nil {
		op.EndWithError(err)
		return err
	}
	if p.cfg.TrainSymbolLimit > 0 && len(symbols) > p.cfg.TrainSymbolLimit {
		logger.Info(ctx, "Capping training universe", "limit", p.cfg.TrainSymbolLimit, "total", len(symbols))
		symbols = symbols[:p.cfg.TrainSymbolLimit]
	}

	X, Y, err := p.BuildDataset(ctx, symbols)
	if err != nil {
		op.EndWithError(err)
		return err
	}
	rows, _ := X.Dims()
	logger.Info(ctx, "Dataset built", "rows", rows, "symbols", len(symbols))

	XTrain, YTrain, XTest, YTest := Split(X, Y)

	hp := model.Hyperparams{
		Trees:       p.cfg.Model.Trees,
		MaxDepth:    p.cfg.Model.MaxDepth,
		MinLeaf:     p.cfg.Model.MinLeaf,
		MaxFeatures: p.cfg.Model.MaxFeatures,
		Seed:        p.cfg.Model.Seed,
	}
	logger.Info(ctx, "Training model", "trees", hp.Trees, "max_depth", hp.MaxDepth, "seed", hp.Seed)

	m, err := model.Train(XTrain, YTrain, hp)
	if err != nil {
		op.EndWithError(err)
		return err
	}

	for _, metric := range Evaluate(m, XTest, YTest) {
		logger.Info(ctx, "Holdout evaluation",
			"horizon_days", metric.Horizon,
			"rmse", fmt.Sprintf("%.4f", metric.RMSE),
			"r2", fmt.Sprintf("%.4f", metric.R2),
		)
	}

	if err := m.Save(p.cfg.ModelPath); err != nil {
		op.EndWithError(err)
		return fmt.Errorf("failed to save model artifact: %w", err)
	}
	logger.Info(ctx, "Model artifact written", "path", p.cfg.ModelPath)
	op.End("rows", rows)
	return nil
}

// BuildDataset fetches history per symbol sequentially, builds labeled
// examples, and pools them into one feature matrix and one target matrix.
// Symbols yielding no usable rows are logged and skipped, never fatal.
func (p *Pipeline) BuildDataset(ctx context.Context, symbols []string) (X, Y *mat.Dense, err error) {
	window := time.Duration(p.cfg.TrainYears) * 365 * 24 * time.Hour
	var pooled []types.Example

	for i, sym := range symbols {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		logger.Info(ctx, "Fetching training history", "symbol", sym, "progress", fmt.Sprintf("%d/%d", i+1, len(symbols)))
		bars, ferr := p.history.History(ctx, sym, window)
		if ferr != nil {
			logger.SymbolSkipped(ctx, sym, "fetch", ferr)
			continue
		}

		examples := features.Training(bars)
		if len(examples) == 0 {
			logger.SymbolSkipped(ctx, sym, "features", nil, "bars", len(bars))
			continue
		}
		pooled = append(pooled, examples...)

		if i < len(symbols)-1 {
			time.Sleep(symbolPacing)
		}
	}

	if len(pooled) == 0 {
		return nil, nil, fmt.Errorf("no training data collected from %d symbols", len(symbols))
	}
	X, Y = Matrices(pooled)
	return X, Y, nil
}

// Matrices packs pooled examples into gonum matrices, features in contract
// column order and one target column per horizon.
func Matrices(examples []types.Example) (X, Y *mat.Dense) {
	nCols := len(types.FeatureColumns())
	X = mat.NewDense(len(examples), nCols, nil)
	Y = mat.NewDense(len(examples), len(types.Horizons), nil)
	for i, ex := range examples {
		X.SetRow(i, ex.Features.Values())
		Y.SetRow(i, ex.Targets[:])
	}
	return X, Y
}

// Split holds out the last holdoutFraction of the pooled, order-preserved
// sample. Pooling across symbols before the split is inherited behavior;
// the holdout may share calendar regimes with the training set.
func Split(X, Y *mat.Dense) (XTrain, YTrain, XTest, YTest *mat.Dense) {
	rows, xc := X.Dims()
	_, yc := Y.Dims()
	nTest := int(math.Floor(float64(rows) * holdoutFraction))
	nTrain := rows - nTest

	XTrain = X.Slice(0, nTrain, 0, xc).(*mat.Dense)
	YTrain = Y.Slice(0, nTrain, 0, yc).(*mat.Dense)
	if nTest == 0 {
		// gonum panics on zero-dimension matrices; nil marks an empty holdout.
		return XTrain, YTrain, nil, nil
	}
	XTest = X.Slice(nTrain, rows, 0, xc).(*mat.Dense)
	YTest = Y.Slice(nTrain, rows, 0, yc).(*mat.Dense)
	return XTrain, YTrain, XTest, YTest
}

// Evaluate computes per-horizon RMSE and R² of the model over a held-out
// set. A nil holdout from a tiny sample yields NaN metrics rather than an
// error.
func Evaluate(m *model.Model, XTest, YTest *mat.Dense) []Metric {
	metrics := make([]Metric, len(m.Horizons))
	if XTest == nil || YTest == nil {
		for h, horizon := range m.Horizons {
			metrics[h] = Metric{Horizon: horizon, RMSE: math.NaN(), R2: math.NaN()}
		}
		return metrics
	}

	rows, _ := XTest.Dims()

	preds := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		p, err := m.Predict(XTest.RawRowView(i))
		if err != nil {
			continue
		}
		preds[i] = p
	}

	for h, horizon := range m.Horizons {
		actual := make([]float64, rows)
		mat.Col(actual, h, YTest)

		var sumSqErr float64
		n := 0
		for i := 0; i < rows; i++ {
			if preds[i] == nil {
				continue
			}
			d := preds[i][h] - actual[i]
			sumSqErr += d * d
			n++
		}

		mean := stat.Mean(actual, nil)
		var sumSqTot float64
		for _, a := range actual {
			d := a - mean
			sumSqTot += d * d
		}

		metrics[h] = Metric{
			Horizon: horizon,
			RMSE:    math.Sqrt(sumSqErr / float64(n)),
			R2:      1 - sumSqErr/sumSqTot,
		}
	}
	return metrics
}
