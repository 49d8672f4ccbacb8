package forecast

import (
	"context"
	"sort"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"gonum.org/v1/gonum/stat"
)

// GradientBoosting is a squared-error gradient-boosted regression tree
// ensemble. The only feature is the zero-based time step.
type GradientBoosting struct {
	Trees        int
	LearningRate float64
	MaxDepth     int
	// Lambda is the L2 penalty on leaf weights
	Lambda float64
	// MinChildWeight is the minimum number of samples per leaf
	MinChildWeight float64
}

// NewGradientBoosting returns a 100-tree ensemble with the usual
// boosting defaults (eta 0.3, depth 6, lambda 1)
func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{
		Trees:          100,
		LearningRate:   0.3,
		MaxDepth:       6,
		Lambda:         1,
		MinChildWeight: 1,
	}
}

// Name returns the response key of the model
func (m *GradientBoosting) Name() string {
	return entity.ModelXGBoost
}

// Forecast fits on steps 0..n-1 and predicts steps n..n+horizon-1
func (m *GradientBoosting) Forecast(ctx context.Context, series entity.Series, horizon int) (*entity.ModelForecast, error) {
	if err := requireObservations(m.Name(), series, 2); err != nil {
		return nil, err
	}

	n := series.Len()
	x := make([][]float64, n)
	for i := range x {
		x[i] = []float64{float64(i)}
	}

	ensemble, err := m.Fit(ctx, x, series.Values)
	if err != nil {
		return nil, err
	}

	values := make([]float64, horizon)
	for i := range values {
		values[i] = ensemble.Predict([]float64{float64(n + i)})
	}

	return newForecast(m.Name(), series, values)
}

// Ensemble is a fitted boosting model
type Ensemble struct {
	base  float64
	eta   float64
	trees []*treeNode
}

// Predict evaluates the ensemble on one feature vector
func (e *Ensemble) Predict(x []float64) float64 {
	p := e.base
	for _, t := range e.trees {
		p += e.eta * t.predict(x)
	}
	return p
}

// Fit trains the ensemble on a feature matrix
func (m *GradientBoosting) Fit(ctx context.Context, x [][]float64, y []float64) (*Ensemble, error) {
	if len(x) != len(y) || len(y) == 0 {
		return nil, apperror.New(apperror.ModelFitFailure, "xgboost: features and targets must be non-empty and aligned")
	}

	ensemble := &Ensemble{
		base: stat.Mean(y, nil),
		eta:  m.LearningRate,
	}

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = ensemble.base
	}
	resid := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	for round := 0; round < m.Trees; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// negative gradient of the squared error
		for i := range y {
			resid[i] = y[i] - pred[i]
		}

		tree := m.grow(x, resid, idx, 0)
		ensemble.trees = append(ensemble.trees, tree)

		for i := range pred {
			pred[i] += m.LearningRate * tree.predict(x[i])
		}
	}

	return ensemble, nil
}

type treeNode struct {
	feature     int
	threshold   float64
	left, right *treeNode
	weight      float64
}

func (t *treeNode) predict(x []float64) float64 {
	for t.left != nil {
		if x[t.feature] < t.threshold {
			t = t.left
		} else {
			t = t.right
		}
	}
	return t.weight
}

func (m *GradientBoosting) leafWeight(sum float64, count int) float64 {
	return sum / (float64(count) + m.Lambda)
}

func (m *GradientBoosting) score(sum float64, count int) float64 {
	return sum * sum / (float64(count) + m.Lambda)
}

func (m *GradientBoosting) grow(x [][]float64, resid []float64, idx []int, depth int) *treeNode {
	total := 0.0
	for _, i := range idx {
		total += resid[i]
	}
	leaf := &treeNode{weight: m.leafWeight(total, len(idx))}
	if depth >= m.MaxDepth || float64(len(idx)) < 2*m.MinChildWeight {
		return leaf
	}

	parent := m.score(total, len(idx))
	bestGain := 0.0
	bestFeature, bestPos := -1, 0
	var bestOrder []int

	for f := range x[idx[0]] {
		order := append([]int(nil), idx...)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		left := 0.0
		for pos := 1; pos < len(order); pos++ {
			left += resid[order[pos-1]]
			if x[order[pos-1]][f] == x[order[pos]][f] {
				continue
			}
			if float64(pos) < m.MinChildWeight || float64(len(order)-pos) < m.MinChildWeight {
				continue
			}
			gain := m.score(left, pos) + m.score(total-left, len(order)-pos) - parent
			if gain > bestGain+1e-12 {
				bestGain, bestFeature, bestPos = gain, f, pos
				bestOrder = order
			}
		}
	}

	if bestFeature < 0 {
		return leaf
	}

	lo, hi := x[bestOrder[bestPos-1]][bestFeature], x[bestOrder[bestPos]][bestFeature]
	return &treeNode{
		feature:   bestFeature,
		threshold: (lo + hi) / 2,
		left:      m.grow(x, resid, bestOrder[:bestPos], depth+1),
		right:     m.grow(x, resid, bestOrder[bestPos:], depth+1),
	}
}
