package forecast

import (
	"context"
	"math"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const daysPerYear = 365.25

// NeuralProphet is an additive forecaster trained by gradient descent:
// a piecewise-linear trend with changepoints plus yearly Fourier
// seasonality, fitted on a (ds, y) frame of monthly observations.
type NeuralProphet struct {
	Changepoints     int
	ChangepointRange float64
	// YearlyOrder is the number of Fourier pairs; seasonality is only
	// enabled when the history spans at least two years
	YearlyOrder int
	Epochs      int
	// LearningRate is the Adam step size
	LearningRate float64
	// TrendReg is the L2 penalty on changepoint slope deltas
	TrendReg float64
}

// NewNeuralProphet returns the forecaster with 10 changepoints over the
// first 80% of history and yearly seasonality of order 3
func NewNeuralProphet() *NeuralProphet {
	return &NeuralProphet{
		Changepoints:     10,
		ChangepointRange: 0.8,
		YearlyOrder:      3,
		Epochs:           1500,
		LearningRate:     0.05,
		TrendReg:         0.01,
	}
}

// Name returns the response key of the model
func (m *NeuralProphet) Name() string {
	return entity.ModelNeuralProphet
}

// Forecast trains on the history, builds a future frame of horizon monthly
// periods and returns its predictions
func (m *NeuralProphet) Forecast(ctx context.Context, series entity.Series, horizon int) (*entity.ModelForecast, error) {
	if err := requireObservations(m.Name(), series, 2); err != nil {
		return nil, err
	}

	design := m.newDesign(series.Dates)

	mean := stat.Mean(series.Values, nil)
	scale := stat.StdDev(series.Values, nil)
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}
	target := make([]float64, series.Len())
	for i, v := range series.Values {
		target[i] = (v - mean) / scale
	}

	weights, err := m.train(ctx, design.matrix(series.Dates), target, design.changepointCols())
	if err != nil {
		return nil, err
	}

	future := design.matrix(MonthlyDates(series.Last(), horizon))
	var pred mat.VecDense
	pred.MulVec(future, weights)

	values := make([]float64, horizon)
	for i := range values {
		values[i] = pred.AtVec(i)*scale + mean
	}

	return newForecast(m.Name(), series, values)
}

// train minimises the mean squared error with Adam, starting from zero weights
func (m *NeuralProphet) train(ctx context.Context, x *mat.Dense, y []float64, regularised []int) (*mat.VecDense, error) {
	n, k := x.Dims()
	target := mat.NewVecDense(n, y)
	w := mat.NewVecDense(k, nil)

	const beta1, beta2, eps = 0.9, 0.999, 1e-8
	first := make([]float64, k)
	second := make([]float64, k)

	var pred, resid, grad mat.VecDense
	for epoch := 1; epoch <= m.Epochs; epoch++ {
		if epoch%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		pred.MulVec(x, w)
		resid.SubVec(&pred, target)
		grad.MulVec(x.T(), &resid)
		grad.ScaleVec(2/float64(n), &grad)
		for _, j := range regularised {
			grad.SetVec(j, grad.AtVec(j)+2*m.TrendReg*w.AtVec(j))
		}

		c1 := 1 - math.Pow(beta1, float64(epoch))
		c2 := 1 - math.Pow(beta2, float64(epoch))
		for j := 0; j < k; j++ {
			g := grad.AtVec(j)
			first[j] = beta1*first[j] + (1-beta1)*g
			second[j] = beta2*second[j] + (1-beta2)*g*g
			step := m.LearningRate * (first[j] / c1) / (math.Sqrt(second[j]/c2) + eps)
			w.SetVec(j, w.AtVec(j)-step)
		}
	}

	for j := 0; j < k; j++ {
		if v := w.AtVec(j); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperror.New(apperror.ModelFitFailure, "neural_prophet: training diverged")
		}
	}

	return w, nil
}

// design maps dates to model inputs. Time is scaled so the history spans [0, 1].
type design struct {
	start        time.Time
	span         float64
	changepoints []float64
	yearlyOrder  int
}

func (m *NeuralProphet) newDesign(dates []time.Time) *design {
	d := &design{start: dates[0]}
	d.span = dates[len(dates)-1].Sub(d.start).Hours() / 24
	if d.span <= 0 {
		d.span = 1
	}

	if d.span >= 2*daysPerYear {
		d.yearlyOrder = m.YearlyOrder
	}

	// changepoints sit on observations spread over the first part of history
	limit := int(math.Floor(float64(len(dates)) * m.ChangepointRange))
	count := m.Changepoints
	if count > limit-1 {
		count = limit - 1
	}
	for i := 1; i <= count; i++ {
		pos := int(math.Round(float64(i) * float64(limit) / float64(count+1)))
		d.changepoints = append(d.changepoints, d.scaled(dates[pos]))
	}

	return d
}

func (d *design) scaled(t time.Time) float64 {
	return t.Sub(d.start).Hours() / 24 / d.span
}

// columns: intercept, trend, changepoint hinges, sin/cos pairs
func (d *design) width() int {
	return 2 + len(d.changepoints) + 2*d.yearlyOrder
}

func (d *design) changepointCols() []int {
	cols := make([]int, len(d.changepoints))
	for i := range cols {
		cols[i] = 2 + i
	}
	return cols
}

func (d *design) matrix(dates []time.Time) *mat.Dense {
	x := mat.NewDense(len(dates), d.width(), nil)
	for r, date := range dates {
		t := d.scaled(date)
		x.Set(r, 0, 1)
		x.Set(r, 1, t)

		col := 2
		for _, c := range d.changepoints {
			x.Set(r, col, math.Max(0, t-c))
			col++
		}

		yearFrac := float64(date.YearDay()-1) / daysPerYear
		for k := 1; k <= d.yearlyOrder; k++ {
			angle := 2 * math.Pi * float64(k) * yearFrac
			x.Set(r, col, math.Sin(angle))
			x.Set(r, col+1, math.Cos(angle))
			col += 2
		}
	}
	return x
}
