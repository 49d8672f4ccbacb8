// Package forecast implements the time-series models used for lane forecasts
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/damon-houk/freight-forecast-service/internal/domain/apperror"
	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
)

// AddMonths steps a date by whole calendar months, keeping the day of the
// month and clamping it to the last day of shorter months.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())

	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// MonthlyDates returns horizon dates one month apart, starting the month after last.
// Every date is derived from last so clamped days do not drift.
func MonthlyDates(last time.Time, horizon int) []time.Time {
	dates := make([]time.Time, horizon)
	for i := range dates {
		dates[i] = AddMonths(last, i+1)
	}
	return dates
}

func requireObservations(model string, series entity.Series, min int) error {
	if series.Len() < min {
		return apperror.New(apperror.ModelFitFailure,
			fmt.Sprintf("%s needs at least %d observations, got %d", model, min, series.Len()))
	}
	if len(series.Dates) != series.Len() {
		return apperror.New(apperror.ModelFitFailure,
			fmt.Sprintf("%s: %d dates for %d values", model, len(series.Dates), series.Len()))
	}
	return nil
}

func newForecast(model string, series entity.Series, values []float64) (*entity.ModelForecast, error) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, apperror.New(apperror.ModelFitFailure,
				fmt.Sprintf("%s produced a non-finite value at step %d", model, i+1))
		}
	}

	return &entity.ModelForecast{
		Model:  model,
		Dates:  MonthlyDates(series.Last(), len(values)),
		Values: values,
	}, nil
}
