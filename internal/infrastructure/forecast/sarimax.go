package forecast

import (
	"context"
	"fmt"
	"math"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"gonum.org/v1/gonum/optimize"
)

// Order holds the non-seasonal (p,d,q) and seasonal (P,D,Q,s) orders
type Order struct {
	P, D, Q int
	SP, SD  int
	SQ      int
	Period  int
}

// Seasonal reports whether the order has any seasonal component
func (o Order) Seasonal() bool {
	return o.Period > 1 && (o.SP > 0 || o.SD > 0 || o.SQ > 0)
}

// NonSeasonal drops the seasonal component
func (o Order) NonSeasonal() Order {
	return Order{P: o.P, D: o.D, Q: o.Q}
}

// minObservations is the smallest series that keeps two differenced points,
// plus one full season of differenced history for seasonal orders
func (o Order) minObservations() int {
	n := o.D + 2
	if o.Seasonal() {
		n += o.SD*o.Period + o.Period
	}
	return n
}

func (o Order) params() int {
	return o.P + o.Q + o.SP + o.SQ
}

// SARIMAX fits a seasonal ARIMA model by conditional sum of squares.
// When the series is too short for the seasonal terms the model falls
// back to its non-seasonal order.
type SARIMAX struct {
	Order Order
	// MaxEvaluations bounds the Nelder-Mead objective evaluations
	MaxEvaluations int
}

// NewSARIMAX returns the (1,1,1)x(1,1,1,12) model
func NewSARIMAX() *SARIMAX {
	return &SARIMAX{
		Order:          Order{P: 1, D: 1, Q: 1, SP: 1, SD: 1, SQ: 1, Period: 12},
		MaxEvaluations: 4000,
	}
}

// Name returns the response key of the model
func (m *SARIMAX) Name() string {
	return entity.ModelSARIMAX
}

// Forecast fits the model and predicts horizon steps past the last observation
func (m *SARIMAX) Forecast(ctx context.Context, series entity.Series, horizon int) (*entity.ModelForecast, error) {
	order := m.EffectiveOrder(series.Len())
	if err := requireObservations(m.Name(), series, order.minObservations()); err != nil {
		return nil, err
	}

	fit, err := fitSARIMA(ctx, series.Values, order, m.MaxEvaluations)
	if err != nil {
		return nil, err
	}

	return newForecast(m.Name(), series, fit.predict(horizon))
}

// EffectiveOrder returns the order fitted to a series of n observations
func (m *SARIMAX) EffectiveOrder(n int) Order {
	if m.Order.Seasonal() && n < m.Order.minObservations() {
		return m.Order.NonSeasonal()
	}
	return m.Order
}

// sarimaFit holds a fitted model expanded into lag polynomials
type sarimaFit struct {
	y     []float64
	w     []float64
	resid []float64
	ar    []float64 // w_t = sum ar[k]*w_{t-k} + e_t + sum ma[k]*e_{t-k}, index 0 unused
	ma    []float64
	diff  []float64 // differencing polynomial, diff[0] == 1
}

func fitSARIMA(ctx context.Context, y []float64, order Order, maxEvals int) (*sarimaFit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diff := differencingPoly(order)
	w := applyPoly(diff, y)
	if len(w) < 2 {
		return nil, apperror.New(apperror.ModelFitFailure, "sarimax: not enough observations after differencing")
	}

	objective := func(x []float64) float64 {
		ar, ma := lagPolys(order, x)
		resid := cssResiduals(w, ar, ma)
		sse := 0.0
		for _, e := range resid {
			sse += e * e
		}
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return math.MaxFloat64
		}
		return sse
	}

	x := make([]float64, order.params())
	if len(x) > 0 {
		result, err := optimize.Minimize(optimize.Problem{Func: objective}, x, &optimize.Settings{
			FuncEvaluations: maxEvals,
			Converger: &optimize.FunctionConverge{
				Absolute:   1e-10,
				Relative:   1e-10,
				Iterations: 200,
			},
		}, &optimize.NelderMead{})
		if result == nil {
			return nil, apperror.Wrap(apperror.ModelFitFailure, "sarimax: optimisation failed", err)
		}
		// evaluation limits report an error alongside a usable best point
		x = result.X
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ar, ma := lagPolys(order, x)
	return &sarimaFit{
		y:     y,
		w:     w,
		resid: cssResiduals(w, ar, ma),
		ar:    ar,
		ma:    ma,
		diff:  diff,
	}, nil
}

// predict produces h level forecasts with future shocks set to zero
func (f *sarimaFit) predict(h int) []float64 {
	n := len(f.w)
	w := append(append(make([]float64, 0, n+h), f.w...), make([]float64, h)...)
	e := append(append(make([]float64, 0, n+h), f.resid...), make([]float64, h)...)

	for t := n; t < n+h; t++ {
		w[t] = lagSum(f.ar, w, t) + lagSum(f.ma, e, t)
	}

	// integrate: y_t = w_t - sum_{k>=1} diff[k]*y_{t-k}
	m := len(f.y)
	y := append(append(make([]float64, 0, m+h), f.y...), make([]float64, h)...)
	for i := 0; i < h; i++ {
		t := m + i
		v := w[n+i]
		for k := 1; k < len(f.diff); k++ {
			v -= f.diff[k] * y[t-k]
		}
		y[t] = v
	}

	return y[m:]
}

// cssResiduals runs the ARMA recursion with zero pre-sample values
func cssResiduals(w, ar, ma []float64) []float64 {
	e := make([]float64, len(w))
	for t := range w {
		e[t] = w[t] - lagSum(ar, w, t) - lagSum(ma, e, t)
	}
	return e
}

func lagSum(coef, series []float64, t int) float64 {
	s := 0.0
	for k := 1; k < len(coef) && k <= t; k++ {
		if coef[k] != 0 {
			s += coef[k] * series[t-k]
		}
	}
	return s
}

// lagPolys maps unconstrained optimiser parameters to the multiplied
// AR and MA lag polynomials. tanh keeps every coefficient inside (-1, 1).
func lagPolys(order Order, x []float64) (ar, ma []float64) {
	next := 0
	take := func(n int) []float64 {
		c := make([]float64, n)
		for i := range c {
			c[i] = math.Tanh(x[next])
			next++
		}
		return c
	}
	phi, theta := take(order.P), take(order.Q)
	sphi, stheta := take(order.SP), take(order.SQ)

	// (1 - phi(B)) (1 - Phi(B^s)) expressed as 1 - sum ar[k] B^k
	arPoly := polyMul(characteristic(phi, 1, -1), characteristic(sphi, order.Period, -1))
	maPoly := polyMul(characteristic(theta, 1, 1), characteristic(stheta, order.Period, 1))

	ar = make([]float64, len(arPoly))
	for k := 1; k < len(arPoly); k++ {
		ar[k] = -arPoly[k]
	}
	ma = make([]float64, len(maPoly))
	copy(ma, maPoly)
	ma[0] = 0
	return ar, ma
}

// characteristic builds 1 + sign*sum c_i B^(i*step)
func characteristic(c []float64, step int, sign float64) []float64 {
	if step < 1 {
		step = 1
	}
	poly := make([]float64, len(c)*step+1)
	poly[0] = 1
	for i, v := range c {
		poly[(i+1)*step] = sign * v
	}
	return poly
}

func differencingPoly(order Order) []float64 {
	poly := []float64{1}
	for i := 0; i < order.D; i++ {
		poly = polyMul(poly, []float64{1, -1})
	}
	if order.Seasonal() {
		seasonal := make([]float64, order.Period+1)
		seasonal[0], seasonal[order.Period] = 1, -1
		for i := 0; i < order.SD; i++ {
			poly = polyMul(poly, seasonal)
		}
	}
	return poly
}

// applyPoly returns sum_k poly[k]*y_{t-k} for every t with full history
func applyPoly(poly, y []float64) []float64 {
	lag := len(poly) - 1
	if len(y) <= lag {
		return nil
	}
	out := make([]float64, len(y)-lag)
	for t := lag; t < len(y); t++ {
		v := 0.0
		for k, c := range poly {
			v += c * y[t-k]
		}
		out[t-lag] = v
	}
	return out
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func (o Order) String() string {
	if o.Seasonal() {
		return fmt.Sprintf("(%d,%d,%d)x(%d,%d,%d,%d)", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.Period)
	}
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}
