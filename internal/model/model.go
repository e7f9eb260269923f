// Package model implements the multi-output random-forest regressor mapping
// a feature vector to predicted forward returns, plus its on-disk artifact.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"swingbot/internal/types"
)

// SchemaVersion identifies the artifact layout. Bump on incompatible change.
const SchemaVersion = 1

// Model is the trained artifact: one forest per forward-return horizon,
// trained jointly over the same pooled dataset. Immutable after load, safe
// to share across concurrent scan workers.
type Model struct {
	Version  int         `json:"version"`
	Columns  []string    `json:"columns"`
	Horizons []int       `json:"horizons"`
	Params   Hyperparams `json:"params"`
	Forests  []*Forest   `json:"forests"`
}

// Train fits one forest per target column of Y against the shared feature
// matrix X. Forests train in parallel; determinism comes from per-tree
// seeding, not scheduling order.
func Train(X, Y *mat.Dense, hp Hyperparams) (*Model, error) {
	xr, xc := X.Dims()
	yr, yc := Y.Dims()
	if xr == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	if xr != yr {
		return nil, fmt.Errorf("X has %d rows, Y has %d", xr, yr)
	}
	if xc != len(types.FeatureColumns()) {
		return nil, fmt.Errorf("X has %d columns, feature contract has %d", xc, len(types.FeatureColumns()))
	}
	if yc != len(types.Horizons) {
		return nil, fmt.Errorf("Y has %d columns, expected %d horizons", yc, len(types.Horizons))
	}

	m := &Model{
		Version:  SchemaVersion,
		Columns:  types.FeatureColumns(),
		Horizons: types.Horizons[:],
		Params:   hp,
		Forests:  make([]*Forest, yc),
	}

	var g errgroup.Group
	for h := 0; h < yc; h++ {
		h := h
		g.Go(func() error {
			y := make([]float64, yr)
			mat.Col(y, h, Y)
			m.Forests[h] = fitForest(X, y, hp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// Predict maps one feature vector to a fractional forward return per
// horizon. The input length must match the embedded column contract.
func (m *Model) Predict(x []float64) ([]float64, error) {
	if len(x) != len(m.Columns) {
		return nil, fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(m.Columns))
	}
	out := make([]float64, len(m.Forests))
	for i, f := range m.Forests {
		out[i] = f.Predict(x)
	}
	return out, nil
}

// Save serializes the artifact as JSON at path, creating parent directories.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads an artifact from path and verifies the feature column contract
// so training-time and inference-time feature order can never silently
// drift apart.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact unavailable (run the train job first): %w", err)
	}
	var m Model
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("model artifact corrupt: %w", err)
	}
	if m.Version != SchemaVersion {
		return nil, fmt.Errorf("model artifact schema version %d, want %d", m.Version, SchemaVersion)
	}
	want := types.FeatureColumns()
	if len(m.Columns) != len(want) {
		return nil, fmt.Errorf("model artifact has %d feature columns, want %d", len(m.Columns), len(want))
	}
	for i, c := range want {
		if m.Columns[i] != c {
			return nil, fmt.Errorf("model artifact column %d is %q, want %q", i, m.Columns[i], c)
		}
	}
	if len(m.Forests) != len(m.Horizons) {
		return nil, fmt.Errorf("model artifact has %d forests for %d horizons", len(m.Forests), len(m.Horizons))
	}
	return &m, nil
}
