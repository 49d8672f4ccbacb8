package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/damon-houk/freight-forecast-service/internal/domain/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlySeries builds n monthly observations starting at start with value f(i)
func monthlySeries(start time.Time, n int, f func(i int) float64) entity.Series {
	s := entity.Series{}
	for i := 0; i < n; i++ {
		s.Dates = append(s.Dates, AddMonths(start, i))
		s.Values = append(s.Values, f(i))
	}
	return s
}

func linear(i int) float64 { return 100 + 2*float64(i) }

func allModels() []service.Forecaster {
	return []service.Forecaster{NewSARIMAX(), NewGradientBoosting(), NewNeuralProphet()}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Time
		months int
		want   time.Time
	}{
		{"first of month", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"clamped to february", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"clamped non leap year", time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"across years", time.Date(2023, 11, 15, 0, 0, 0, 0, time.UTC), 14, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"backwards", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), -1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.months))
		})
	}
}

func TestMonthlyDatesDoNotDrift(t *testing.T) {
	dates := MonthlyDates(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}, dates)
}

func TestModelsOnLinearTrend(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	series := monthlySeries(start, 36, linear)
	ctx := context.Background()

	for _, model := range allModels() {
		t.Run(model.Name(), func(t *testing.T) {
			result, err := model.Forecast(ctx, series, entity.ForecastHorizon)
			require.NoError(t, err)

			assert.Equal(t, model.Name(), result.Model)
			require.Len(t, result.Dates, 12)
			require.Len(t, result.Values, 12)

			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), result.Dates[0])
			for i := 1; i < len(result.Dates); i++ {
				assert.Equal(t, AddMonths(result.Dates[i-1], 1), result.Dates[i])
			}
			for _, v := range result.Values {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		})
	}
}

func TestSARIMAXContinuesExactTrend(t *testing.T) {
	series := monthlySeries(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 36, linear)

	result, err := NewSARIMAX().Forecast(context.Background(), series, 12)
	require.NoError(t, err)

	// differencing removes a linear trend entirely, so the forecast continues it
	for i, v := range result.Values {
		assert.InDelta(t, linear(36+i), v, 1e-6)
	}
}

func TestSARIMAXRepeatsSeasonalPattern(t *testing.T) {
	pattern := func(i int) float64 { return 200 + 10*math.Sin(2*math.Pi*float64(i)/12) }
	series := monthlySeries(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 48, pattern)

	result, err := NewSARIMAX().Forecast(context.Background(), series, 12)
	require.NoError(t, err)

	for i, v := range result.Values {
		assert.InDelta(t, pattern(48+i), v, 1e-6)
	}
}

func TestSARIMAXEffectiveOrder(t *testing.T) {
	m := NewSARIMAX()

	assert.True(t, m.EffectiveOrder(27).Seasonal())
	assert.False(t, m.EffectiveOrder(26).Seasonal())
	assert.Equal(t, "(1,1,1)x(1,1,1,12)", m.EffectiveOrder(36).String())
	assert.Equal(t, "(1,1,1)", m.EffectiveOrder(12).String())
}

func TestGradientBoostingFitsHistory(t *testing.T) {
	y := []float64{100, 102, 104, 150, 152, 154}
	x := make([][]float64, len(y))
	for i := range x {
		x[i] = []float64{float64(i)}
	}

	ensemble, err := NewGradientBoosting().Fit(context.Background(), x, y)
	require.NoError(t, err)

	for i := range y {
		assert.InDelta(t, y[i], ensemble.Predict(x[i]), 1.0)
	}
}

func TestGradientBoostingExtrapolatesFlat(t *testing.T) {
	series := monthlySeries(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 24, linear)

	result, err := NewGradientBoosting().Forecast(context.Background(), series, 12)
	require.NoError(t, err)

	// trees split on the time step only, so every future step lands in the last leaf
	for _, v := range result.Values {
		assert.InDelta(t, result.Values[0], v, 1e-9)
	}
	assert.InDelta(t, linear(23), result.Values[0], 2.0)
}

func TestNeuralProphetFollowsTrend(t *testing.T) {
	series := monthlySeries(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 36, linear)

	result, err := NewNeuralProphet().Forecast(context.Background(), series, 12)
	require.NoError(t, err)

	assert.Greater(t, result.Values[11], result.Values[0])
	assert.InDelta(t, linear(36), result.Values[0], 10)
}

func TestModelsRejectTooFewObservations(t *testing.T) {
	series := monthlySeries(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 1, linear)

	for _, model := range allModels() {
		t.Run(model.Name(), func(t *testing.T) {
			_, err := model.Forecast(context.Background(), series, 12)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.ModelFitFailure))
		})
	}
}

func TestModelsHonourCancelledContext(t *testing.T) {
	series := monthlySeries(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 36, linear)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, model := range allModels() {
		t.Run(model.Name(), func(t *testing.T) {
			_, err := model.Forecast(ctx, series, 12)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
