package analytics

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"MarketRadar/internal/domain/models"
)

const (
	// minFitRows is the cold-start floor: below this the model stays
	// untrained and Score returns neutral 0.0.
	minFitRows = 50

	defaultTrees         = 200
	defaultSubsample     = 256
	defaultContamination = 0.05
	defaultSeed          = 42

	eulerMascheroni = 0.5772156649
)

// IsoForest is an isolation forest anomaly scorer. Anomalies isolate
// in shallow trees, so short average path lengths map to scores near
// 1.0 and typical points map toward 0.0. Fit and Score are safe for
// concurrent use; scoring holds only a read lock.
type IsoForest struct {
	mu            sync.RWMutex
	numTrees      int
	subsample     int
	contamination float64
	seed          int64

	trees   []*isoNode
	psi     int
	offset  float64
	trained bool
}

type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// NewIsoForest creates an unfitted scorer with fixed hyperparameters
// and a fixed seed so refits on identical history are reproducible.
func NewIsoForest() *IsoForest {
	return &IsoForest{
		numTrees:      defaultTrees,
		subsample:     defaultSubsample,
		contamination: defaultContamination,
		seed:          defaultSeed,
	}
}

// Trained reports whether the model has been fitted.
func (f *IsoForest) Trained() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.trained
}

// Fit trains the forest on historical feature sets. Fewer than 50 rows
// leaves the model untrained rather than fitting on noise.
func (f *IsoForest) Fit(featureSets []models.FeatureVector) {
	rows := make([][]float64, len(featureSets))
	for i, fs := range featureSets {
		rows[i] = Vectorize(fs)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(rows) < minFitRows {
		f.trees = nil
		f.trained = false
		return
	}

	rng := rand.New(rand.NewSource(f.seed))
	psi := f.subsample
	if len(rows) < psi {
		psi = len(rows)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(psi))))

	trees := make([]*isoNode, f.numTrees)
	for t := range trees {
		sample := sampleWithoutReplacement(rng, rows, psi)
		trees[t] = buildTree(rng, sample, 0, heightLimit)
	}

	f.trees = trees
	f.psi = psi
	f.trained = true

	// The decision offset is the score quantile at the contamination
	// fraction: the assumed share of training points that should land
	// below zero after shifting.
	raw := make([]float64, len(rows))
	for i, row := range rows {
		raw[i] = f.rawScoreLocked(row)
	}
	f.offset = percentile(raw, f.contamination*100)
}

// Score returns an anomaly score in [0,1] for one feature set; higher
// means more anomalous. An untrained model returns exactly 0.0.
func (f *IsoForest) Score(features models.FeatureVector) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.trained {
		return 0.0
	}
	decision := f.rawScoreLocked(Vectorize(features)) - f.offset
	return 1.0 / (1.0 + math.Exp(5.0*decision))
}

// rawScoreLocked is the pre-offset normality score: near 0 for typical
// points, increasingly negative for anomalies.
func (f *IsoForest) rawScoreLocked(x []float64) float64 {
	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	avg := total / float64(len(f.trees))
	return -math.Pow(2.0, -avg/avgPathCorrection(f.psi))
}

func buildTree(rng *rand.Rand, rows [][]float64, depth, heightLimit int) *isoNode {
	if depth >= heightLimit || len(rows) <= 1 {
		return &isoNode{size: len(rows)}
	}

	// Pick among features that still have spread at this node; a node
	// with all-identical rows cannot be split further.
	splittable := splittableFeatures(rows)
	if len(splittable) == 0 {
		return &isoNode{size: len(rows)}
	}
	feature := splittable[rng.Intn(len(splittable))]

	lo, hi := featureRange(rows, feature)
	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range rows {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildTree(rng, left, depth+1, heightLimit),
		right:   buildTree(rng, right, depth+1, heightLimit),
	}
}

func pathLength(node *isoNode, x []float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathCorrection(node.size)
	}
	if x[node.feature] < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// avgPathCorrection is c(n), the expected path length of an
// unsuccessful BST search over n points, used to normalize depths.
func avgPathCorrection(n int) float64 {
	switch {
	case n > 2:
		fn := float64(n)
		return 2.0*(math.Log(fn-1)+eulerMascheroni) - 2.0*(fn-1)/fn
	case n == 2:
		return 1.0
	default:
		return 0.0
	}
}

func splittableFeatures(rows [][]float64) []int {
	var out []int
	for feat := range rows[0] {
		lo, hi := featureRange(rows, feat)
		if hi > lo {
			out = append(out, feat)
		}
	}
	return out
}

func featureRange(rows [][]float64, feature int) (lo, hi float64) {
	lo, hi = rows[0][feature], rows[0][feature]
	for _, row := range rows[1:] {
		v := row[feature]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func sampleWithoutReplacement(rng *rand.Rand, rows [][]float64, k int) [][]float64 {
	idx := rng.Perm(len(rows))[:k]
	out := make([][]float64, k)
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

// percentile computes the p-th percentile with linear interpolation
// between closest ranks.
func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
