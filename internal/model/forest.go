package model

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Hyperparams are the fixed training constants, exposed through config
// rather than hardcoded.
type Hyperparams struct {
	Trees       int     `json:"trees"`
	MaxDepth    int     `json:"max_depth"`
	MinLeaf     int     `json:"min_leaf"`
	MaxFeatures float64 `json:"max_features"` // fraction of features tried per split
	Seed        int64   `json:"seed"`
}

// node is one decision-tree node. Leaves have Feature == -1 and carry the
// mean target of their samples.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v,omitempty"`
}

const leafMarker = -1

// Tree is a CART regression tree stored as a flat node array.
type Tree struct {
	Nodes []node `json:"nodes"`
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature == leafMarker {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is a bagged ensemble of regression trees for a single target.
type Forest struct {
	Trees []Tree `json:"trees"`
}

// Predict returns the mean prediction across trees.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

// fitForest trains one forest on X (rows = samples) against a single target
// column. Each tree draws its own bootstrap sample from an rng seeded by the
// base seed plus the tree index, so the result is deterministic no matter
// how trees are scheduled.
func fitForest(X *mat.Dense, y []float64, hp Hyperparams) *Forest {
	rows, cols := X.Dims()
	f := &Forest{Trees: make([]Tree, hp.Trees)}

	for ti := 0; ti < hp.Trees; ti++ {
		rng := rand.New(rand.NewSource(hp.Seed + int64(ti)))
		sample := make([]int, rows)
		for i := range sample {
			sample[i] = rng.Intn(rows)
		}
		b := &treeBuilder{
			X:        X,
			y:        y,
			maxDepth: hp.MaxDepth,
			minLeaf:  hp.MinLeaf,
			nSplit:   splitFeatureCount(cols, hp.MaxFeatures),
			rng:      rng,
		}
		b.grow(sample, 0)
		f.Trees[ti] = Tree{Nodes: b.nodes}
	}
	return f
}

func splitFeatureCount(cols int, frac float64) int {
	n := int(math.Round(frac * float64(cols)))
	if n < 1 {
		n = 1
	}
	if n > cols {
		n = cols
	}
	return n
}

type treeBuilder struct {
	X        *mat.Dense
	y        []float64
	maxDepth int
	minLeaf  int
	nSplit   int
	rng      *rand.Rand
	nodes    []node
}

// grow builds the subtree for the given sample indexes and returns its node
// index within the flat array.
func (b *treeBuilder) grow(sample []int, depth int) int {
	mean, sse := meanSSE(b.y, sample)

	if depth >= b.maxDepth || len(sample) < 2*b.minLeaf || sse == 0 {
		return b.leaf(mean)
	}

	feat, thr, ok := b.bestSplit(sample, sse)
	if !ok {
		return b.leaf(mean)
	}

	left := make([]int, 0, len(sample))
	right := make([]int, 0, len(sample))
	for _, i := range sample {
		if b.X.At(i, feat) <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < b.minLeaf || len(right) < b.minLeaf {
		return b.leaf(mean)
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{Feature: feat, Threshold: thr})
	b.nodes[idx].Left = b.grow(left, depth+1)
	b.nodes[idx].Right = b.grow(right, depth+1)
	return idx
}

func (b *treeBuilder) leaf(value float64) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{Feature: leafMarker, Value: value})
	return idx
}

// bestSplit scans a random feature subset for the threshold with the largest
// SSE reduction, using running sums over value-sorted samples.
func (b *treeBuilder) bestSplit(sample []int, parentSSE float64) (feature int, threshold float64, ok bool) {
	_, cols := b.X.Dims()
	feats := b.rng.Perm(cols)[:b.nSplit]

	bestGain := 0.0
	vals := make([]float64, len(sample))
	order := make([]int, len(sample))

	for _, f := range feats {
		for i, s := range sample {
			vals[i] = b.X.At(s, f)
			order[i] = i
		}
		sortByValue(order, vals)

		var sumL, sumSqL float64
		var sumR, sumSqR float64
		for _, s := range sample {
			sumR += b.y[s]
			sumSqR += b.y[s] * b.y[s]
		}

		nL := 0
		nTotal := len(sample)
		for k := 0; k < nTotal-1; k++ {
			yi := b.y[sample[order[k]]]
			sumL += yi
			sumSqL += yi * yi
			sumR -= yi
			sumSqR -= yi * yi
			nL++

			// Can't split between equal values.
			if vals[order[k]] == vals[order[k+1]] {
				continue
			}
			nR := nTotal - nL
			if nL < b.minLeaf || nR < b.minLeaf {
				continue
			}

			sseL := sumSqL - sumL*sumL/float64(nL)
			sseR := sumSqR - sumR*sumR/float64(nR)
			gain := parentSSE - sseL - sseR
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (vals[order[k]] + vals[order[k+1]]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func meanSSE(y []float64, sample []int) (mean, sse float64) {
	if len(sample) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, i := range sample {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(sample))
	mean = sum / n
	sse = sumSq - sum*sum/n
	if sse < 0 {
		sse = 0 // numeric noise
	}
	return mean, sse
}

// sortByValue sorts the index slice ascending by the referenced values.
func sortByValue(order []int, vals []float64) {
	sort.Slice(order, func(a, b int) bool {
		return vals[order[a]] < vals[order[b]]
	})
}
